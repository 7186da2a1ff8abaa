package models

// ChartType is the kind of chart described by a ChartSpec
type ChartType string

const (
	ChartBar        ChartType = "bar"
	ChartBox        ChartType = "box"
	ChartScatterMap ChartType = "scatter_map"
)

// ChartSpec describes a chart independently of the library that draws it
type ChartSpec struct {
	View     ViewSelection `json:"view"`
	Type     ChartType     `json:"type"`
	Title    string        `json:"title"`
	Bindings Bindings      `json:"bindings"`
	Color    ColorMode     `json:"color"`

	Bars    []BarPoint  `json:"bars,omitempty"`
	Boxes   []BoxGroup  `json:"boxes,omitempty"`
	Markers []MapMarker `json:"markers,omitempty"`
	Geo     *GeoView    `json:"geo,omitempty"`

	Layout Layout `json:"layout"`
}

// Bindings maps visual channels to source columns
type Bindings struct {
	X     string `json:"x,omitempty"`
	Y     string `json:"y,omitempty"`
	Color string `json:"color,omitempty"`
	Size  string `json:"size,omitempty"`
	Hover string `json:"hover,omitempty"`
	Lat   string `json:"lat,omitempty"`
	Lon   string `json:"lon,omitempty"`
}

// ColorMode is either a continuous scale over [Min, Max] or a discrete palette
type ColorMode struct {
	Continuous bool     `json:"continuous"`
	Scale      string   `json:"scale,omitempty"`
	Stops      []string `json:"stops,omitempty"`
	Min        float64  `json:"min"`
	Max        float64  `json:"max"`
	Palette    []string `json:"palette,omitempty"`
}

// BarPoint is one bar: a department and its mean value
type BarPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// BoxStats are the standard boxplot statistics of one group
type BoxStats struct {
	Count        int       `json:"count"`
	Min          float64   `json:"min"`
	Max          float64   `json:"max"`
	Mean         float64   `json:"mean"`
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	LowerFence   float64   `json:"lower_fence"`
	UpperFence   float64   `json:"upper_fence"`
	LowerWhisker float64   `json:"lower_whisker"`
	UpperWhisker float64   `json:"upper_whisker"`
	Outliers     []float64 `json:"outliers,omitempty"`
}

// BoxGroup is one box of the boxplot: a category, its color and its statistics
type BoxGroup struct {
	Label string   `json:"label"`
	Color string   `json:"color"`
	Stats BoxStats `json:"stats"`
}

// MapMarker is one bubble on the map
type MapMarker struct {
	Label     string  `json:"label"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Value     float64 `json:"value"`
	Size      float64 `json:"size"`
	Color     string  `json:"color"`
}

// LatLon is a geographic coordinate in degrees
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GeoView is the initial viewport of a map chart
type GeoView struct {
	Center LatLon  `json:"center"`
	Zoom   float64 `json:"zoom"`
	Style  string  `json:"style"`
}

// Layout carries the theme applied to every chart
type Layout struct {
	PaperBackground string `json:"paper_bgcolor"`
	PlotBackground  string `json:"plot_bgcolor"`
	FontColor       string `json:"font_color"`
}
