package numeric

import (
	"math"
)

// Histogram is an evenly binned count histogram. BinEdges has one more
// element than Counts; the final bin includes its upper edge.
type Histogram struct {
	BinEdges []float64 `json:"bin_edges"`
	Counts   []int     `json:"counts"`
}

// NewHistogram bins data with an adaptive bin count: the larger of the
// Sturges and Freedman-Diaconis estimates, the same rule numpy applies for
// bins="auto".
func NewHistogram(data []float64) Histogram {
	n := len(data)
	if n == 0 {
		return Histogram{BinEdges: []float64{0, 1}, Counts: []int{0}}
	}

	min, max := data[0], data[0]
	for _, v := range data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min == max {
		// Degenerate range; numpy widens to a unit interval around the value.
		min -= 0.5
		max += 0.5
	}

	bins := autoBinCount(data, min, max)
	edges := Linspace(min, max, bins+1)
	counts := make([]int, bins)
	width := (max - min) / float64(bins)
	for _, v := range data {
		idx := int((v - min) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		counts[idx]++
	}
	return Histogram{BinEdges: edges, Counts: counts}
}

// Total returns the sum of all bin counts.
func (h Histogram) Total() int {
	total := 0
	for _, c := range h.Counts {
		total += c
	}
	return total
}

// FirstBinWidth returns the width of the first bin, the scale factor used
// when overlaying density curves on count histograms.
func (h Histogram) FirstBinWidth() float64 {
	if len(h.BinEdges) < 2 {
		return 1
	}
	return h.BinEdges[1] - h.BinEdges[0]
}

func autoBinCount(data []float64, min, max float64) int {
	n := len(data)

	sturges := int(math.Ceil(math.Log2(float64(n)))) + 1

	fd := 0
	iqr := Quantile(data, 0.75) - Quantile(data, 0.25)
	if iqr > 0 {
		width := 2 * iqr / math.Cbrt(float64(n))
		if width > 0 {
			fd = int(math.Ceil((max - min) / width))
		}
	}

	bins := sturges
	if fd > bins {
		bins = fd
	}
	if bins < 1 {
		bins = 1
	}
	return bins
}
