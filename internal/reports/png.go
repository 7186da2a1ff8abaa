package reports

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	viz "empleoformal/internal/charts"
	"empleoformal/internal/models"
)

// Default size of exported images
const (
	DefaultImageWidth  = 1200
	DefaultImageHeight = 640
)

// ImageRenderer draws chart specs as static PNG images
type ImageRenderer struct {
	Width  int
	Height int
}

// NewImageRenderer creates an image renderer with the default size
func NewImageRenderer() *ImageRenderer {
	return &ImageRenderer{Width: DefaultImageWidth, Height: DefaultImageHeight}
}

// PNG renders spec with the default image size
func PNG(spec *models.ChartSpec, w io.Writer) error {
	return NewImageRenderer().Render(spec, w)
}

// Render writes spec to w as a PNG image
func (ir *ImageRenderer) Render(spec *models.ChartSpec, w io.Writer) error {
	if spec == nil {
		return fmt.Errorf("nil chart spec")
	}

	var err error
	switch spec.Type {
	case models.ChartBar:
		err = ir.renderBars(spec, w)
	case models.ChartBox:
		err = ir.renderBoxes(spec, w)
	case models.ChartScatterMap:
		err = ir.renderMarkers(spec, w)
	default:
		return fmt.Errorf("unsupported chart type %q", spec.Type)
	}
	if err != nil {
		return fmt.Errorf("failed to render %s image: %w", spec.View, err)
	}
	return nil
}

func themeColor(c string) drawing.Color {
	switch strings.ToLower(c) {
	case "", "white":
		return drawing.ColorWhite
	case "black":
		return drawing.ColorBlack
	}
	return viz.ParseHex(c)
}

func (ir *ImageRenderer) frame(spec *models.ChartSpec) (bg chart.Style, canvas chart.Style, title chart.Style, axis chart.Style) {
	paper := themeColor(spec.Layout.PaperBackground)
	plot := themeColor(spec.Layout.PlotBackground)
	font := themeColor(spec.Layout.FontColor)

	bg = chart.Style{
		FillColor: paper,
		Padding:   chart.Box{Top: 60, Left: 40, Right: 40, Bottom: 40},
	}
	canvas = chart.Style{FillColor: plot}
	title = chart.Style{FontSize: 18, FontColor: font}
	axis = chart.Style{FontSize: 11, FontColor: font, StrokeColor: font}
	return
}

func gridStyle() chart.Style {
	return chart.Style{StrokeColor: drawing.Color{R: 42, G: 45, B: 69, A: 255}, StrokeWidth: 1}
}

// paddedRange widens [lo, hi] by frac on both sides; an empty span gets a unit span
func paddedRange(lo, hi, frac float64) *chart.ContinuousRange {
	span := hi - lo
	if span <= 0 {
		span = math.Max(math.Abs(lo), 1)
		lo, hi = lo-span/2, hi+span/2
		span = hi - lo
	}
	return &chart.ContinuousRange{Min: lo - span*frac, Max: hi + span*frac}
}

func (ir *ImageRenderer) renderBars(spec *models.ChartSpec, w io.Writer) error {
	if len(spec.Bars) == 0 {
		return fmt.Errorf("no bars to draw")
	}
	bg, canvas, title, axis := ir.frame(spec)

	values := make([]chart.Value, 0, len(spec.Bars))
	lo, hi := 0.0, 0.0
	for _, b := range spec.Bars {
		color := viz.ParseHex(b.Color)
		values = append(values, chart.Value{
			Label: b.Label,
			Value: b.Value,
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
		lo = math.Min(lo, b.Value)
		hi = math.Max(hi, b.Value)
	}
	if hi == lo {
		hi = lo + 1
	}

	graph := chart.BarChart{
		Title:      spec.Title,
		TitleStyle: title,
		Background: bg,
		Canvas:     canvas,
		Width:      ir.Width,
		Height:     ir.Height,
		Bars:       values,
		BarSpacing: 8,
		XAxis:      axis,
		YAxis: chart.YAxis{
			Name:           spec.Bindings.Y,
			NameStyle:      axis,
			Style:          axis,
			Range:          &chart.ContinuousRange{Min: lo, Max: hi * 1.1},
			GridMajorStyle: gridStyle(),
		},
	}
	return graph.Render(chart.PNG, w)
}

// boxSeries draws one box with whiskers and outliers per category at x = index
type boxSeries struct {
	boxes []models.BoxGroup
}

func (bs boxSeries) GetName() string           { return "boxes" }
func (bs boxSeries) GetStyle() chart.Style     { return chart.Style{} }
func (bs boxSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (bs boxSeries) Len() int                  { return len(bs.boxes) }
func (bs boxSeries) Validate() error {
	if len(bs.boxes) == 0 {
		return fmt.Errorf("no boxes to draw")
	}
	return nil
}

func (bs boxSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	ypx := func(v float64) int { return canvasBox.Bottom - yrange.Translate(v) }
	for i, b := range bs.boxes {
		s := b.Stats
		color := viz.ParseHex(b.Color)
		cx := canvasBox.Left + xrange.Translate(float64(i))
		half := xrange.Translate(0.3) - xrange.Translate(0)
		if half < 4 {
			half = 4
		}

		// box
		r.SetFillColor(color.WithAlpha(90))
		r.SetStrokeColor(color)
		r.SetStrokeWidth(2)
		r.MoveTo(cx-half, ypx(s.Q1))
		r.LineTo(cx+half, ypx(s.Q1))
		r.LineTo(cx+half, ypx(s.Q3))
		r.LineTo(cx-half, ypx(s.Q3))
		r.Close()
		r.FillStroke()

		// median
		r.SetStrokeColor(color)
		r.MoveTo(cx-half, ypx(s.Median))
		r.LineTo(cx+half, ypx(s.Median))
		r.Stroke()

		// whiskers
		r.MoveTo(cx, ypx(s.Q3))
		r.LineTo(cx, ypx(s.UpperWhisker))
		r.MoveTo(cx-half/2, ypx(s.UpperWhisker))
		r.LineTo(cx+half/2, ypx(s.UpperWhisker))
		r.MoveTo(cx, ypx(s.Q1))
		r.LineTo(cx, ypx(s.LowerWhisker))
		r.MoveTo(cx-half/2, ypx(s.LowerWhisker))
		r.LineTo(cx+half/2, ypx(s.LowerWhisker))
		r.Stroke()

		r.SetFillColor(color)
		for _, v := range s.Outliers {
			r.Circle(3, cx, ypx(v))
			r.Fill()
		}
	}
}

func (ir *ImageRenderer) renderBoxes(spec *models.ChartSpec, w io.Writer) error {
	if len(spec.Boxes) == 0 {
		return fmt.Errorf("no boxes to draw")
	}
	bg, canvas, title, axis := ir.frame(spec)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, b := range spec.Boxes {
		lo = math.Min(lo, b.Stats.Min)
		hi = math.Max(hi, b.Stats.Max)
	}

	graph := chart.Chart{
		Title:      spec.Title,
		TitleStyle: title,
		Background: bg,
		Canvas:     canvas,
		Width:      ir.Width,
		Height:     ir.Height,
		XAxis: chart.XAxis{
			Name:      spec.Bindings.X,
			NameStyle: axis,
			Style:     axis,
			Ticks:     boxTicks(spec.Boxes),
		},
		YAxis: chart.YAxis{
			Name:           spec.Bindings.Y,
			NameStyle:      axis,
			Style:          axis,
			Range:          paddedRange(lo, hi, 0.05),
			GridMajorStyle: gridStyle(),
		},
		Series: []chart.Series{boxSeries{boxes: spec.Boxes}},
	}
	return graph.Render(chart.PNG, w)
}

// boxTicks labels one tick per box. go-chart derives the x-range from the ticks
// when present, so unlabeled ticks half a slot outside keep the outer boxes on canvas.
func boxTicks(boxes []models.BoxGroup) []chart.Tick {
	ticks := make([]chart.Tick, 0, len(boxes)+2)
	ticks = append(ticks, chart.Tick{Value: -0.5})
	for i, b := range boxes {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: b.Label})
	}
	return append(ticks, chart.Tick{Value: float64(len(boxes)) - 0.5})
}

// bubbleSeries draws map markers as filled circles in lon/lat space
type bubbleSeries struct {
	markers []models.MapMarker
}

func (bs bubbleSeries) GetName() string           { return "markers" }
func (bs bubbleSeries) GetStyle() chart.Style     { return chart.Style{} }
func (bs bubbleSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (bs bubbleSeries) Len() int                  { return len(bs.markers) }
func (bs bubbleSeries) Validate() error {
	if len(bs.markers) == 0 {
		return fmt.Errorf("no markers to draw")
	}
	return nil
}

func (bs bubbleSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	font := defaults.FontColor
	if font.IsZero() {
		font = drawing.ColorWhite
	}
	for _, m := range bs.markers {
		x := canvasBox.Left + xrange.Translate(m.Longitude)
		y := canvasBox.Bottom - yrange.Translate(m.Latitude)
		radius := math.Max(m.Size, 2)

		color := viz.ParseHex(m.Color)
		r.SetFillColor(color.WithAlpha(200))
		r.SetStrokeColor(drawing.Color{R: 255, G: 255, B: 255, A: 120})
		r.SetStrokeWidth(1)
		r.Circle(radius, x, y)
		r.FillStroke()

		r.SetFont(defaults.GetFont())
		r.SetFontColor(font)
		r.SetFontSize(9)
		r.Text(m.Label, x+int(radius)+3, y+3)
	}
}

func (ir *ImageRenderer) renderMarkers(spec *models.ChartSpec, w io.Writer) error {
	if len(spec.Markers) == 0 {
		return fmt.Errorf("no markers to draw")
	}
	bg, canvas, title, axis := ir.frame(spec)

	minLat, maxLat := math.Inf(1), math.Inf(-1)
	minLon, maxLon := math.Inf(1), math.Inf(-1)
	for _, m := range spec.Markers {
		minLat, maxLat = math.Min(minLat, m.Latitude), math.Max(maxLat, m.Latitude)
		minLon, maxLon = math.Min(minLon, m.Longitude), math.Max(maxLon, m.Longitude)
	}

	graph := chart.Chart{
		Title:      spec.Title,
		TitleStyle: title,
		Background: bg,
		Canvas:     canvas,
		Width:      ir.Width,
		Height:     ir.Height,
		XAxis: chart.XAxis{
			Name:           spec.Bindings.Lon,
			NameStyle:      axis,
			Style:          axis,
			Range:          paddedRange(minLon, maxLon, 0.1),
			GridMajorStyle: gridStyle(),
		},
		YAxis: chart.YAxis{
			Name:           spec.Bindings.Lat,
			NameStyle:      axis,
			Style:          axis,
			Range:          paddedRange(minLat, maxLat, 0.1),
			GridMajorStyle: gridStyle(),
		},
		Series: []chart.Series{bubbleSeries{markers: spec.Markers}},
	}
	return graph.Render(chart.PNG, w)
}
