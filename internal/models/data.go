package models

import (
	"strings"
	"time"
)

// Column names of the source table, exactly as they appear in the header
const (
	ColumnDepartment = "Departamento"
	ColumnCategory   = "Categoría"
	ColumnValue      = "Valor"
	ColumnLatitude   = "Latitud"
	ColumnLongitude  = "Longitud"
)

// RequiredColumns lists the header columns every data source must provide
var RequiredColumns = []string{
	ColumnDepartment,
	ColumnCategory,
	ColumnValue,
	ColumnLatitude,
	ColumnLongitude,
}

// Record is one row of the formal employment table
type Record struct {
	Department string  `json:"departamento"`
	Category   string  `json:"categoria"`
	Value      float64 `json:"valor"`
	Latitude   float64 `json:"latitud"`
	Longitude  float64 `json:"longitud"`
}

// Dataset is an immutable, ordered sequence of records.
// It is built once by the loader and shared read-only afterwards.
type Dataset struct {
	records  []Record
	source   string
	loadedAt time.Time
}

// NewDataset copies records into a new Dataset
func NewDataset(source string, records []Record) *Dataset {
	owned := make([]Record, len(records))
	copy(owned, records)
	return &Dataset{
		records:  owned,
		source:   source,
		loadedAt: time.Now().UTC(),
	}
}

// Len returns the number of records
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Records returns a copy of all records in source order
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// Each calls fn for every record in source order
func (d *Dataset) Each(fn func(Record)) {
	if d == nil {
		return
	}
	for _, r := range d.records {
		fn(r)
	}
}

// Source returns the location the dataset was loaded from
func (d *Dataset) Source() string {
	if d == nil {
		return ""
	}
	return d.source
}

// LoadedAt returns when the dataset was built
func (d *Dataset) LoadedAt() time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.loadedAt
}

// Departments returns the distinct department names in first-seen order
func (d *Dataset) Departments() []string {
	return d.distinct(func(r Record) string { return r.Department })
}

// Categories returns the distinct category labels in first-seen order
func (d *Dataset) Categories() []string {
	return d.distinct(func(r Record) string { return r.Category })
}

func (d *Dataset) distinct(key func(Record) string) []string {
	seen := make(map[string]struct{})
	var out []string
	d.Each(func(r Record) {
		k := key(r)
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		out = append(out, k)
	})
	return out
}

// AggregatedDepartment holds the per-department means used by the bar and map views
type AggregatedDepartment struct {
	Department string  `json:"departamento"`
	Value      float64 `json:"valor"`
	Latitude   float64 `json:"latitud"`
	Longitude  float64 `json:"longitud"`
	Rows       int     `json:"rows"`
}

// ViewSelection identifies which chart the user asked for
type ViewSelection string

const (
	ViewNone ViewSelection = ""
	ViewBars ViewSelection = "barras"
	ViewBox  ViewSelection = "box"
	ViewMap  ViewSelection = "mapa"
)

// Views lists the selectable views in display order
var Views = []ViewSelection{ViewBars, ViewBox, ViewMap}

// Label returns the selector label shown in the dashboard
func (v ViewSelection) Label() string {
	switch v {
	case ViewBars:
		return "Barras por Categoría"
	case ViewBox:
		return "Boxplot por Categoría"
	case ViewMap:
		return "Mapa Colombia"
	default:
		return ""
	}
}

// Valid reports whether v is one of the selectable views
func (v ViewSelection) Valid() bool {
	switch v {
	case ViewBars, ViewBox, ViewMap:
		return true
	}
	return false
}

// ParseView normalizes user input into a ViewSelection.
// Blank input yields ViewNone; unrecognized input is returned as-is so callers can reject it.
func ParseView(s string) ViewSelection {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ViewNone
	case "barras", "bars", "bar":
		return ViewBars
	case "box", "boxplot":
		return ViewBox
	case "mapa", "map":
		return ViewMap
	default:
		return ViewSelection(strings.TrimSpace(s))
	}
}

// Tab is the navigation dimension of the tabbed dashboard variants
type Tab string

const (
	TabCharts  Tab = "graficos"
	TabContext Tab = "contexto"
)

// ParseTab returns TabContext for "contexto" and TabCharts for anything else
func ParseTab(s string) Tab {
	if strings.EqualFold(strings.TrimSpace(s), string(TabContext)) {
		return TabContext
	}
	return TabCharts
}
