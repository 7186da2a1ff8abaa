package charts

import (
	"encoding/json"
	"fmt"
	"math"

	"empleoformal/internal/models"
)

// WorldMapScript registers the "world" map used by geo charts
const WorldMapScript = "https://go-echarts.github.io/go-echarts-assets/assets/maps/world.js"

// EChartsScript is the ECharts build loaded by every page
const EChartsScript = "https://cdn.jsdelivr.net/npm/echarts@5.4.3/dist/echarts.min.js"

const gridLineColor = "#2a2d45"

// EChartsZoom converts a web-map zoom level to an ECharts geo zoom,
// where 1 shows the whole world
func EChartsZoom(zoom float64) float64 {
	return math.Pow(2, zoom-1)
}

// BuildOption converts a ChartSpec into an ECharts option
func BuildOption(spec *models.ChartSpec) (map[string]interface{}, error) {
	if spec == nil {
		return nil, fmt.Errorf("nil chart spec")
	}

	var option map[string]interface{}
	switch spec.Type {
	case models.ChartBar:
		option = barOption(spec)
	case models.ChartBox:
		option = boxOption(spec)
	case models.ChartScatterMap:
		option = mapOption(spec)
	default:
		return nil, fmt.Errorf("unsupported chart type %q", spec.Type)
	}

	option["backgroundColor"] = spec.Layout.PaperBackground
	option["textStyle"] = map[string]interface{}{"color": spec.Layout.FontColor}
	option["title"] = map[string]interface{}{
		"text":      spec.Title,
		"left":      "center",
		"textStyle": map[string]interface{}{"color": spec.Layout.FontColor},
	}
	return option, nil
}

// OptionJSON marshals the ECharts option of spec
func OptionJSON(spec *models.ChartSpec) ([]byte, error) {
	option, err := BuildOption(spec)
	if err != nil {
		return nil, err
	}
	return json.Marshal(option)
}

func axisStyle(spec *models.ChartSpec) map[string]interface{} {
	return map[string]interface{}{
		"axisLine":  map[string]interface{}{"lineStyle": map[string]interface{}{"color": spec.Layout.FontColor}},
		"axisLabel": map[string]interface{}{"color": spec.Layout.FontColor},
		"splitLine": map[string]interface{}{"lineStyle": map[string]interface{}{"color": gridLineColor}},
	}
}

func withAxisStyle(spec *models.ChartSpec, axis map[string]interface{}) map[string]interface{} {
	for k, v := range axisStyle(spec) {
		if _, set := axis[k]; !set {
			axis[k] = v
		}
	}
	return axis
}

func continuousVisualMap(spec *models.ChartSpec, dimension int) map[string]interface{} {
	return map[string]interface{}{
		"type":       "continuous",
		"min":        spec.Color.Min,
		"max":        spec.Color.Max,
		"dimension":  dimension,
		"calculable": true,
		"right":      10,
		"top":        "center",
		"text":       []string{spec.Bindings.Color, ""},
		"inRange":    map[string]interface{}{"color": spec.Color.Stops},
		"textStyle":  map[string]interface{}{"color": spec.Layout.FontColor},
	}
}

func barOption(spec *models.ChartSpec) map[string]interface{} {
	labels := make([]string, 0, len(spec.Bars))
	data := make([]map[string]interface{}, 0, len(spec.Bars))
	for _, b := range spec.Bars {
		labels = append(labels, b.Label)
		data = append(data, map[string]interface{}{
			"value":     b.Value,
			"itemStyle": map[string]interface{}{"color": b.Color},
		})
	}

	return map[string]interface{}{
		"tooltip": map[string]interface{}{"trigger": "axis", "axisPointer": map[string]interface{}{"type": "shadow"}},
		"grid":    map[string]interface{}{"left": "6%", "right": "12%", "bottom": "12%", "containLabel": true},
		"xAxis": withAxisStyle(spec, map[string]interface{}{
			"type":      "category",
			"name":      spec.Bindings.X,
			"data":      labels,
			"axisLabel": map[string]interface{}{"color": spec.Layout.FontColor, "rotate": 45, "interval": 0},
		}),
		"yAxis":     withAxisStyle(spec, map[string]interface{}{"type": "value", "name": spec.Bindings.Y}),
		"visualMap": continuousVisualMap(spec, 1),
		"series": []interface{}{map[string]interface{}{
			"type": "bar",
			"name": spec.Bindings.Y,
			"data": data,
		}},
	}
}

func boxOption(spec *models.ChartSpec) map[string]interface{} {
	labels := make([]string, 0, len(spec.Boxes))
	boxes := make([]map[string]interface{}, 0, len(spec.Boxes))
	outliers := make([]map[string]interface{}, 0)
	for i, b := range spec.Boxes {
		s := b.Stats
		labels = append(labels, b.Label)
		boxes = append(boxes, map[string]interface{}{
			"name":  b.Label,
			"value": []float64{s.LowerWhisker, s.Q1, s.Median, s.Q3, s.UpperWhisker},
			"itemStyle": map[string]interface{}{
				"color":       b.Color + "55",
				"borderColor": b.Color,
			},
		})
		for _, v := range s.Outliers {
			outliers = append(outliers, map[string]interface{}{
				"value":     []interface{}{i, v},
				"itemStyle": map[string]interface{}{"color": b.Color},
			})
		}
	}

	return map[string]interface{}{
		"tooltip": map[string]interface{}{"trigger": "item"},
		"grid":    map[string]interface{}{"left": "6%", "right": "4%", "bottom": "10%", "containLabel": true},
		"xAxis": withAxisStyle(spec, map[string]interface{}{
			"type":        "category",
			"name":        spec.Bindings.X,
			"data":        labels,
			"boundaryGap": true,
		}),
		"yAxis": withAxisStyle(spec, map[string]interface{}{"type": "value", "name": spec.Bindings.Y, "scale": true}),
		"series": []interface{}{
			map[string]interface{}{"type": "boxplot", "name": spec.Bindings.Y, "data": boxes},
			map[string]interface{}{"type": "scatter", "name": "outliers", "data": outliers},
		},
	}
}

func mapOption(spec *models.ChartSpec) map[string]interface{} {
	data := make([]map[string]interface{}, 0, len(spec.Markers))
	for _, m := range spec.Markers {
		data = append(data, map[string]interface{}{
			"name":       m.Label,
			"value":      []float64{m.Longitude, m.Latitude, m.Value},
			"symbolSize": m.Size,
			"itemStyle":  map[string]interface{}{"color": m.Color},
		})
	}

	geo := map[string]interface{}{
		"map":  "world",
		"roam": true,
		"itemStyle": map[string]interface{}{
			"areaColor":   "#1e2132",
			"borderColor": "#3b4060",
		},
		"emphasis": map[string]interface{}{
			"label":     map[string]interface{}{"show": false},
			"itemStyle": map[string]interface{}{"areaColor": "#2b2f47"},
		},
	}
	if spec.Geo != nil {
		geo["center"] = []float64{spec.Geo.Center.Lon, spec.Geo.Center.Lat}
		geo["zoom"] = EChartsZoom(spec.Geo.Zoom)
	}

	return map[string]interface{}{
		"tooltip":   map[string]interface{}{"trigger": "item", "formatter": "{b}"},
		"geo":       geo,
		"visualMap": continuousVisualMap(spec, 2),
		"series": []interface{}{map[string]interface{}{
			"type":             "scatter",
			"coordinateSystem": "geo",
			"name":             spec.Bindings.Size,
			"data":             data,
		}},
	}
}
