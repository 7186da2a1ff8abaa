package aggregate

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"empleoformal/internal/models"
)

// WhiskerFactor is the IQR multiple beyond which points are outliers
const WhiskerFactor = 1.5

// Box computes boxplot statistics: linear-interpolated quartiles, whiskers at the
// furthest points inside the 1.5 IQR fences, and the points outside as outliers.
func Box(values []float64) (models.BoxStats, error) {
	if len(values) == 0 {
		return models.BoxStats{}, fmt.Errorf("box statistics: %w", stats.ErrEmptyInput)
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, err := stats.Mean(sorted)
	if err != nil {
		return models.BoxStats{}, fmt.Errorf("box statistics: %w", err)
	}

	q1 := Percentile(sorted, 25)
	q3 := Percentile(sorted, 75)
	iqr := q3 - q1

	b := models.BoxStats{
		Count:      len(sorted),
		Min:        sorted[0],
		Max:        sorted[len(sorted)-1],
		Mean:       mean,
		Q1:         q1,
		Median:     Percentile(sorted, 50),
		Q3:         q3,
		LowerFence: q1 - WhiskerFactor*iqr,
		UpperFence: q3 + WhiskerFactor*iqr,
	}

	b.LowerWhisker = b.Max
	b.UpperWhisker = b.Min
	for _, v := range sorted {
		if v < b.LowerFence || v > b.UpperFence {
			b.Outliers = append(b.Outliers, v)
			continue
		}
		b.LowerWhisker = math.Min(b.LowerWhisker, v)
		b.UpperWhisker = math.Max(b.UpperWhisker, v)
	}
	if b.LowerWhisker > b.UpperWhisker {
		b.LowerWhisker, b.UpperWhisker = q1, q3
	}
	return b, nil
}

// Percentile returns the p-th percentile (0-100) of sorted values using linear interpolation
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	return sorted[lower] + (idx-float64(lower))*(sorted[upper]-sorted[lower])
}
