package montecarlo

import (
	"context"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/quantify-ai/quantify-go/internal/numeric"
	"github.com/quantify-ai/quantify-go/internal/validation"
)

const maxChartPoints = 1000

type PiChart struct {
	PointsInside  [][2]float64 `json:"points_inside"`
	PointsOutside [][2]float64 `json:"points_outside"`
	CircleCenter  [2]float64   `json:"circle_center"`
	CircleRadius  float64      `json:"circle_radius"`
}

type PiResult struct {
	SimulationCount int     `json:"simulation_count"`
	PiEstimate      float64 `json:"pi_estimate"`
	Error           float64 `json:"error"`
	InsideCount     int     `json:"inside_count"`
	OutsideCount    int     `json:"outside_count"`
	ChartData       PiChart `json:"chart_data"`
}

// EstimatePi scatters points uniformly over [-1,1]^2 and estimates pi from
// the fraction landing inside the unit circle.
func (e *Engine) EstimatePi(ctx context.Context, count int, seed uint64) (*PiResult, error) {
	if count < PointMinCount || count > PointMaxCount {
		return nil, validation.Errorf("simulation count must be between %d and %d", PointMinCount, PointMaxCount)
	}

	src := newSource(seed)
	uniform := distuv.Uniform{Min: -1, Max: 1, Src: src}

	xs := make([]float64, count)
	ys := make([]float64, count)
	inside := make([]bool, count)
	insideCount := 0
	for i := 0; i < count; i++ {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		x := uniform.Rand()
		y := uniform.Rand()
		xs[i] = x
		ys[i] = y
		if x*x+y*y < 1 {
			inside[i] = true
			insideCount++
		}
	}

	estimate := 4 * float64(insideCount) / float64(count)

	chart := PiChart{
		PointsInside:  [][2]float64{},
		PointsOutside: [][2]float64{},
		CircleCenter:  [2]float64{0, 0},
		CircleRadius:  1,
	}
	for _, idx := range sampleIndices(src, count, maxChartPoints) {
		point := [2]float64{xs[idx], ys[idx]}
		if inside[idx] {
			chart.PointsInside = append(chart.PointsInside, point)
		} else {
			chart.PointsOutside = append(chart.PointsOutside, point)
		}
	}

	return &PiResult{
		SimulationCount: count,
		PiEstimate:      numeric.Round(estimate, 6),
		Error:           numeric.Round(math.Abs(estimate-math.Pi), 6),
		InsideCount:     insideCount,
		OutsideCount:    count - insideCount,
		ChartData:       chart,
	}, nil
}

// sampleIndices picks k distinct indices from 0..n-1 via a partial shuffle.
func sampleIndices(src rand.Source, n, k int) []int {
	if k > n {
		k = n
	}
	rng := rand.New(src)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + rng.Intn(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}
