package charts

import (
	"fmt"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Color scale names used by ChartSpec.Color.Scale
const (
	ScaleViridis = "viridis"
	ScalePlasma  = "plasma"
)

// ViridisStops are the ten stops of the viridis sequential scale
var ViridisStops = []string{
	"#440154", "#482878", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// PlasmaStops are the ten stops of the plasma sequential scale
var PlasmaStops = []string{
	"#0d0887", "#46039f", "#7201a8", "#9c179e", "#bd3786",
	"#d8576b", "#ed7953", "#fb9f3a", "#fdca26", "#f0f921",
}

// QualitativePalette colors discrete groups, cycled when there are more groups than colors
var QualitativePalette = []string{
	"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A",
	"#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// PaletteColor returns the i-th discrete color
func PaletteColor(i int) string {
	return QualitativePalette[i%len(QualitativePalette)]
}

// ScaleColor maps v within [min, max] onto stops. A degenerate range maps to the middle of the scale.
func ScaleColor(stops []string, v, min, max float64) string {
	t := 0.5
	if max > min {
		t = (v - min) / (max - min)
	}
	return Interpolate(stops, t)
}

// Interpolate returns the color at position t (clamped to [0, 1]) along stops, as #rrggbb
func Interpolate(stops []string, t float64) string {
	if len(stops) == 0 {
		return "#000000"
	}
	if len(stops) == 1 || math.IsNaN(t) {
		return strings.ToLower(stops[0])
	}
	t = math.Max(0, math.Min(1, t))

	pos := t * float64(len(stops)-1)
	i := int(math.Floor(pos))
	if i >= len(stops)-1 {
		return strings.ToLower(stops[len(stops)-1])
	}
	frac := pos - float64(i)

	a := ParseHex(stops[i])
	b := ParseHex(stops[i+1])
	return ToHex(drawing.Color{
		R: lerp(a.R, b.R, frac),
		G: lerp(a.G, b.G, frac),
		B: lerp(a.B, b.B, frac),
		A: 255,
	})
}

// ParseHex parses #rrggbb into an opaque color
func ParseHex(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

// ToHex formats a color as #rrggbb
func ToHex(c drawing.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}
