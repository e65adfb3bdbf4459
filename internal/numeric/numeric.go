// Package numeric holds the shared numerical kit used by every analysis
// engine: display rounding, interpolated quantiles, adaptive histogramming
// and the normality tests that no upstream library ships ready-made.
package numeric

import (
	"math"
	"sort"
)

// Round rounds v to the given number of decimal places for display. Internal
// computations never feed on rounded values.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// RoundPtr rounds through a nullable statistic, passing nil through.
func RoundPtr(v *float64, places int) *float64 {
	if v == nil {
		return nil
	}
	r := Round(*v, places)
	return &r
}

// Quantile computes the q-th quantile (0..1) with linear interpolation
// between closest ranks, matching the convention the percentile outputs of
// this service are defined against.
func Quantile(data []float64, q float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Percentile is Quantile on a 0..100 scale.
func Percentile(data []float64, p float64) float64 {
	return Quantile(data, p/100)
}

// Linspace returns count evenly spaced points covering [start, stop]
// inclusive of both endpoints.
func Linspace(start, stop float64, count int) []float64 {
	if count == 1 {
		return []float64{start}
	}
	points := make([]float64, count)
	step := (stop - start) / float64(count-1)
	for i := range points {
		points[i] = start + float64(i)*step
	}
	points[count-1] = stop
	return points
}
