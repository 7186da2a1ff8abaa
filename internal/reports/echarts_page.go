package reports

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	viz "empleoformal/internal/charts"
	"empleoformal/internal/models"
)

// EChartsPage renders spec as a standalone go-echarts HTML page
func EChartsPage(spec *models.ChartSpec) ([]byte, error) {
	if spec == nil {
		return nil, fmt.Errorf("nil chart spec")
	}

	var buf bytes.Buffer
	var err error
	switch spec.Type {
	case models.ChartBar:
		err = barPage(spec).Render(&buf)
	case models.ChartBox:
		var page *charts.BoxPlot
		page, err = boxPage(spec)
		if err == nil {
			err = page.Render(&buf)
		}
	case models.ChartScatterMap:
		var page *charts.Geo
		page, err = mapPage(spec)
		if err == nil {
			err = page.Render(&buf)
		}
	default:
		return nil, fmt.Errorf("unsupported chart type %q", spec.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %s page: %w", spec.View, err)
	}
	return buf.Bytes(), nil
}

func pageID(spec *models.ChartSpec) string {
	return "page_" + string(spec.View)
}

func globalOptions(spec *models.ChartSpec) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       spec.Title,
			Theme:           types.ThemeChalk,
			BackgroundColor: spec.Layout.PaperBackground,
			Width:           "1200px",
			Height:          "640px",
			ChartID:         pageID(spec),
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      spec.Title,
			Left:       "center",
			TitleStyle: &opts.TextStyle{Color: spec.Layout.FontColor},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "item"}),
	}
}

func barPage(spec *models.ChartSpec) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(globalOptions(spec),
		charts.WithXAxisOpts(opts.XAxis{Name: spec.Bindings.X}),
		charts.WithYAxisOpts(opts.YAxis{Name: spec.Bindings.Y}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: true,
			Min:        float32(spec.Color.Min),
			Max:        float32(spec.Color.Max),
			InRange:    &opts.VisualMapInRange{Color: spec.Color.Stops},
		}),
	)...)

	labels := make([]string, 0, len(spec.Bars))
	data := make([]opts.BarData, 0, len(spec.Bars))
	for _, b := range spec.Bars {
		labels = append(labels, b.Label)
		data = append(data, opts.BarData{
			Name:      b.Label,
			Value:     b.Value,
			ItemStyle: &opts.ItemStyle{Color: b.Color},
		})
	}

	bar.SetXAxis(labels).AddSeries(spec.Bindings.Y, data)
	return bar
}

func boxPage(spec *models.ChartSpec) (*charts.BoxPlot, error) {
	box := charts.NewBoxPlot()
	box.SetGlobalOptions(append(globalOptions(spec),
		charts.WithXAxisOpts(opts.XAxis{Name: spec.Bindings.X}),
		charts.WithYAxisOpts(opts.YAxis{Name: spec.Bindings.Y, Scale: true}),
	)...)

	labels := make([]string, 0, len(spec.Boxes))
	data := make([]opts.BoxPlotData, 0, len(spec.Boxes))
	styled := make([]map[string]interface{}, 0, len(spec.Boxes))
	outliers := make([]opts.ScatterData, 0)
	for i, b := range spec.Boxes {
		s := b.Stats
		value := []float64{s.LowerWhisker, s.Q1, s.Median, s.Q3, s.UpperWhisker}
		labels = append(labels, b.Label)
		data = append(data, opts.BoxPlotData{Name: b.Label, Value: value})
		styled = append(styled, map[string]interface{}{
			"name":      b.Label,
			"value":     value,
			"itemStyle": map[string]interface{}{"color": b.Color + "55", "borderColor": b.Color},
		})
		for _, v := range s.Outliers {
			outliers = append(outliers, opts.ScatterData{Name: b.Label, Value: []interface{}{i, v}})
		}
	}
	box.SetXAxis(labels).AddSeries(spec.Bindings.Y, data)

	if len(outliers) > 0 {
		scatter := charts.NewScatter()
		scatter.AddSeries("outliers", outliers)
		box.Overlap(scatter)
	}

	// go-echarts has no per-item box colors; apply them after the first setOption
	js, err := setSeriesDataJS(pageID(spec), styled)
	if err != nil {
		return nil, err
	}
	box.AddJSFuncs(js)
	return box, nil
}

func mapPage(spec *models.ChartSpec) (*charts.Geo, error) {
	geo := charts.NewGeo()
	geo.SetGlobalOptions(append(globalOptions(spec),
		charts.WithGeoComponentOpts(opts.GeoComponent{
			Map: "world",
			ItemStyle: &opts.ItemStyle{
				Color:       "#1e2132",
				BorderColor: "#3b4060",
			},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: true,
			Min:        float32(spec.Color.Min),
			Max:        float32(spec.Color.Max),
			InRange:    &opts.VisualMapInRange{Color: spec.Color.Stops},
		}),
	)...)

	data := make([]opts.GeoData, 0, len(spec.Markers))
	styled := make([]map[string]interface{}, 0, len(spec.Markers))
	for _, m := range spec.Markers {
		value := []float64{m.Longitude, m.Latitude, m.Value}
		data = append(data, opts.GeoData{Name: m.Label, Value: value})
		styled = append(styled, map[string]interface{}{
			"name":       m.Label,
			"value":      value,
			"symbolSize": m.Size,
		})
	}
	geo.AddSeries(spec.Bindings.Size, types.ChartScatter, data)

	js, err := setSeriesDataJS(pageID(spec), styled)
	if err != nil {
		return nil, err
	}
	geo.AddJSFuncs(js)

	if spec.Geo != nil {
		viewport, err := json.Marshal(map[string]interface{}{
			"geo": map[string]interface{}{
				"roam":   true,
				"center": []float64{spec.Geo.Center.Lon, spec.Geo.Center.Lat},
				"zoom":   viz.EChartsZoom(spec.Geo.Zoom),
			},
		})
		if err != nil {
			return nil, err
		}
		geo.AddJSFuncs(fmt.Sprintf("goecharts_%s.setOption(%s);", pageID(spec), viewport))
	}
	return geo, nil
}

// setSeriesDataJS replaces the data of the first series with fully styled items
func setSeriesDataJS(chartID string, data []map[string]interface{}) (string, error) {
	raw, err := json.Marshal(map[string]interface{}{
		"series": []interface{}{map[string]interface{}{"data": data}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal series data: %w", err)
	}
	return fmt.Sprintf("goecharts_%s.setOption(%s);", chartID, raw), nil
}
