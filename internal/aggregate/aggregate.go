// Package aggregate reduces a Dataset to the summaries the charts draw:
// per-department means and per-category value distributions.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	"empleoformal/internal/models"
)

// CategoryGroup holds the raw values of one category in source order
type CategoryGroup struct {
	Category string
	Values   []float64
}

type departmentAccumulator struct {
	values    stats.Float64Data
	latitude  stats.Float64Data
	longitude stats.Float64Data
}

// ByDepartment groups records by department and averages value and coordinates.
// The result is sorted by department name.
func ByDepartment(ds *models.Dataset) ([]models.AggregatedDepartment, error) {
	groups := make(map[string]*departmentAccumulator)
	ds.Each(func(r models.Record) {
		acc, ok := groups[r.Department]
		if !ok {
			acc = &departmentAccumulator{}
			groups[r.Department] = acc
		}
		acc.values = append(acc.values, r.Value)
		acc.latitude = append(acc.latitude, r.Latitude)
		acc.longitude = append(acc.longitude, r.Longitude)
	})

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]models.AggregatedDepartment, 0, len(names))
	for _, name := range names {
		acc := groups[name]
		value, err := stats.Mean(acc.values)
		if err != nil {
			return nil, fmt.Errorf("mean of %s for %s: %w", models.ColumnValue, name, err)
		}
		lat, err := stats.Mean(acc.latitude)
		if err != nil {
			return nil, fmt.Errorf("mean of %s for %s: %w", models.ColumnLatitude, name, err)
		}
		lon, err := stats.Mean(acc.longitude)
		if err != nil {
			return nil, fmt.Errorf("mean of %s for %s: %w", models.ColumnLongitude, name, err)
		}
		out = append(out, models.AggregatedDepartment{
			Department: name,
			Value:      value,
			Latitude:   lat,
			Longitude:  lon,
			Rows:       len(acc.values),
		})
	}
	return out, nil
}

// ByCategory collects the values of each category, categories in first-seen order
func ByCategory(ds *models.Dataset) []CategoryGroup {
	index := make(map[string]int)
	var groups []CategoryGroup
	ds.Each(func(r models.Record) {
		i, ok := index[r.Category]
		if !ok {
			i = len(groups)
			index[r.Category] = i
			groups = append(groups, CategoryGroup{Category: r.Category})
		}
		groups[i].Values = append(groups[i].Values, r.Value)
	})
	return groups
}

// ValueRange returns the smallest and largest mean value
func ValueRange(departments []models.AggregatedDepartment) (float64, float64) {
	if len(departments) == 0 {
		return 0, 0
	}
	values := make(stats.Float64Data, len(departments))
	for i, d := range departments {
		values[i] = d.Value
	}
	lo, _ := stats.Min(values)
	hi, _ := stats.Max(values)
	return lo, hi
}
