package charts

import (
	"errors"
	"fmt"
	"math"

	"empleoformal/internal/aggregate"
	"empleoformal/internal/models"
)

var (
	// ErrNoUpdate means no view was selected; the caller keeps the chart it already shows
	ErrNoUpdate = errors.New("no view selected")
	// ErrUnknownView is returned for a view outside barras, box and mapa
	ErrUnknownView = errors.New("unknown view")
)

// Chart titles
const (
	TitleDepartmentMean = "Promedio del Valor por Departamento"
	TitleCategoryBox    = "Distribución de Valor por Categoría"
)

// Dark theme applied to every chart
const (
	DarkBackground = "#141627"
	FontColor      = "white"
)

// Map viewport
const (
	MapCenterLat  = 4.5709
	MapCenterLon  = -74.2973
	MapZoom       = 4.5
	MapStyle      = "carto-darkmatter"
	MaxMarkerSize = 20.0
)

// Render builds the chart description of view over ds.
// It is pure: the same view and dataset always yield an equal ChartSpec.
func Render(view models.ViewSelection, ds *models.Dataset) (*models.ChartSpec, error) {
	var (
		spec *models.ChartSpec
		err  error
	)

	switch view {
	case models.ViewNone:
		return nil, ErrNoUpdate
	case models.ViewBars:
		spec, err = barChart(ds)
	case models.ViewBox:
		spec, err = boxChart(ds)
	case models.ViewMap:
		spec, err = mapChart(ds)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, string(view))
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", view, err)
	}

	applyTheme(spec)
	return spec, nil
}

func applyTheme(spec *models.ChartSpec) {
	spec.Layout = models.Layout{
		PaperBackground: DarkBackground,
		PlotBackground:  DarkBackground,
		FontColor:       FontColor,
	}
}

func barChart(ds *models.Dataset) (*models.ChartSpec, error) {
	departments, err := aggregate.ByDepartment(ds)
	if err != nil {
		return nil, err
	}
	lo, hi := aggregate.ValueRange(departments)

	bars := make([]models.BarPoint, 0, len(departments))
	for _, d := range departments {
		bars = append(bars, models.BarPoint{
			Label: d.Department,
			Value: d.Value,
			Color: ScaleColor(ViridisStops, d.Value, lo, hi),
		})
	}

	return &models.ChartSpec{
		View:  models.ViewBars,
		Type:  models.ChartBar,
		Title: TitleDepartmentMean,
		Bindings: models.Bindings{
			X:     models.ColumnDepartment,
			Y:     models.ColumnValue,
			Color: models.ColumnValue,
		},
		Color: models.ColorMode{
			Continuous: true,
			Scale:      ScaleViridis,
			Stops:      ViridisStops,
			Min:        lo,
			Max:        hi,
		},
		Bars: bars,
	}, nil
}

func boxChart(ds *models.Dataset) (*models.ChartSpec, error) {
	groups := aggregate.ByCategory(ds)

	boxes := make([]models.BoxGroup, 0, len(groups))
	palette := make([]string, 0, len(groups))
	for i, g := range groups {
		stats, err := aggregate.Box(g.Values)
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", g.Category, err)
		}
		color := PaletteColor(i)
		palette = append(palette, color)
		boxes = append(boxes, models.BoxGroup{
			Label: g.Category,
			Color: color,
			Stats: stats,
		})
	}

	return &models.ChartSpec{
		View:  models.ViewBox,
		Type:  models.ChartBox,
		Title: TitleCategoryBox,
		Bindings: models.Bindings{
			X:     models.ColumnCategory,
			Y:     models.ColumnValue,
			Color: models.ColumnCategory,
		},
		Color: models.ColorMode{
			Palette: palette,
		},
		Boxes: boxes,
	}, nil
}

func mapChart(ds *models.Dataset) (*models.ChartSpec, error) {
	departments, err := aggregate.ByDepartment(ds)
	if err != nil {
		return nil, err
	}
	lo, hi := aggregate.ValueRange(departments)

	markers := make([]models.MapMarker, 0, len(departments))
	for _, d := range departments {
		markers = append(markers, models.MapMarker{
			Label:     d.Department,
			Latitude:  d.Latitude,
			Longitude: d.Longitude,
			Value:     d.Value,
			Size:      MarkerSize(d.Value, hi),
			Color:     ScaleColor(PlasmaStops, d.Value, lo, hi),
		})
	}

	return &models.ChartSpec{
		View:  models.ViewMap,
		Type:  models.ChartScatterMap,
		Title: TitleDepartmentMean,
		Bindings: models.Bindings{
			Lat:   models.ColumnLatitude,
			Lon:   models.ColumnLongitude,
			Color: models.ColumnValue,
			Size:  models.ColumnValue,
			Hover: models.ColumnDepartment,
		},
		Color: models.ColorMode{
			Continuous: true,
			Scale:      ScalePlasma,
			Stops:      PlasmaStops,
			Min:        lo,
			Max:        hi,
		},
		Markers: markers,
		Geo: &models.GeoView{
			Center: models.LatLon{Lat: MapCenterLat, Lon: MapCenterLon},
			Zoom:   MapZoom,
			Style:  MapStyle,
		},
	}, nil
}

// MarkerSize scales marker area with the value: the largest value gets MaxMarkerSize.
// Non-positive values get no marker area.
func MarkerSize(v, max float64) float64 {
	if max <= 0 || v <= 0 {
		return 0
	}
	return MaxMarkerSize * math.Sqrt(v/max)
}
