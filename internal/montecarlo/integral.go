package montecarlo

import (
	"context"
	"errors"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/quantify-ai/quantify-go/internal/formula"
	"github.com/quantify-ai/quantify-go/internal/numeric"
	"github.com/quantify-ai/quantify-go/internal/validation"
)

const (
	gridPoints  = 1000
	curveSample = 200
)

type IntegralRequest struct {
	XMin            float64 `json:"x_min"`
	XMax            float64 `json:"x_max"`
	Function        string  `json:"function"`
	SimulationCount int     `json:"simulation_count"`
	Seed            uint64  `json:"seed"`
}

type IntegralChart struct {
	PointsBelow   [][2]float64 `json:"points_below"`
	PointsAbove   [][2]float64 `json:"points_above"`
	FunctionCurve [][2]float64 `json:"function_curve"`
	XMin          float64      `json:"x_min"`
	XMax          float64      `json:"x_max"`
	YMin          float64      `json:"y_min"`
	YMax          float64      `json:"y_max"`
}

type IntegralResult struct {
	SimulationCount  int           `json:"simulation_count"`
	IntegralEstimate float64       `json:"integral_estimate"`
	RealIntegral     *float64      `json:"real_integral"`
	Error            *float64      `json:"error"`
	BelowCount       int           `json:"below_count"`
	AboveCount       int           `json:"above_count"`
	ChartData        IntegralChart `json:"chart_data"`
}

// EstimateIntegral estimates a definite integral by uniform rejection
// sampling over a bounding rectangle, counting points under a positive curve
// as positive area and points above a negative curve as negative area.
func (e *Engine) EstimateIntegral(ctx context.Context, req IntegralRequest) (*IntegralResult, error) {
	if req.SimulationCount < PointMinCount || req.SimulationCount > PointMaxCount {
		return nil, validation.Errorf("simulation count must be between %d and %d", PointMinCount, PointMaxCount)
	}
	if req.XMax <= req.XMin {
		return nil, validation.Errorf("x_max must be greater than x_min")
	}

	program, err := formula.Compile(req.Function, []string{"x"})
	if err != nil {
		return nil, err
	}
	f := func(x float64) float64 { return program.Eval([]float64{x}) }

	// Probe the function over a grid to size the bounding rectangle.
	grid := numeric.Linspace(req.XMin, req.XMax, gridPoints)
	yMin, yMax := math.Inf(1), math.Inf(-1)
	for _, x := range grid {
		y := f(x)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return nil, validation.Errorf("function '%s' is not finite over the interval", req.Function)
		}
		yMin = math.Min(yMin, y)
		yMax = math.Max(yMax, y)
	}
	yMin = math.Min(yMin, 0)
	yMax = math.Max(yMax, 1)

	src := newSource(req.Seed)
	xDist := distuv.Uniform{Min: req.XMin, Max: req.XMax, Src: src}
	yDist := distuv.Uniform{Min: yMin, Max: yMax, Src: src}

	n := req.SimulationCount
	xs := make([]float64, n)
	ys := make([]float64, n)
	// 0 = invalid, 1 = counts positively, -1 = counts negatively.
	sign := make([]int8, n)
	below, above := 0, 0
	for i := 0; i < n; i++ {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		x := xDist.Rand()
		y := yDist.Rand()
		xs[i] = x
		ys[i] = y
		fx := f(x)
		switch {
		case y >= 0 && y <= fx:
			sign[i] = 1
			below++
		case y < 0 && y >= fx:
			sign[i] = -1
			above++
		}
	}

	area := (req.XMax - req.XMin) * (yMax - yMin)
	estimate := float64(below-above) / float64(n) * area

	result := &IntegralResult{
		SimulationCount:  n,
		IntegralEstimate: numeric.Round(estimate, 6),
		BelowCount:       below,
		AboveCount:       above,
	}

	// Cross-check against numerical quadrature where it converges.
	if reference, qerr := adaptiveSimpson(f, req.XMin, req.XMax); qerr == nil {
		ref := numeric.Round(reference, 6)
		diff := numeric.Round(math.Abs(estimate-reference), 6)
		result.RealIntegral = &ref
		result.Error = &diff
	}

	chart := IntegralChart{
		PointsBelow:   [][2]float64{},
		PointsAbove:   [][2]float64{},
		FunctionCurve: make([][2]float64, 0, curveSample),
		XMin:          req.XMin,
		XMax:          req.XMax,
		YMin:          yMin,
		YMax:          yMax,
	}
	for _, idx := range sampleIndices(src, n, maxChartPoints) {
		point := [2]float64{xs[idx], ys[idx]}
		switch sign[idx] {
		case 1:
			chart.PointsBelow = append(chart.PointsBelow, point)
		case -1:
			chart.PointsAbove = append(chart.PointsAbove, point)
		}
	}
	for _, x := range numeric.Linspace(req.XMin, req.XMax, curveSample) {
		// The curve grid does not share points with the probe grid; a pole
		// between probe points must not leak NaN or Inf into the chart.
		y := f(x)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		chart.FunctionCurve = append(chart.FunctionCurve, [2]float64{x, y})
	}
	result.ChartData = chart

	return result, nil
}

// adaptiveSimpson integrates f over [a, b] by recursive interval halving.
func adaptiveSimpson(f func(float64) float64, a, b float64) (float64, error) {
	fa, fb := f(a), f(b)
	m, fm, whole := simpsonStep(f, a, b, fa, fb)
	v, err := simpsonRecurse(f, a, b, fa, fb, m, fm, whole, 1e-10, 50)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("quadrature diverged")
	}
	return v, nil
}

func simpsonStep(f func(float64) float64, a, b, fa, fb float64) (m, fm, simpson float64) {
	m = (a + b) / 2
	fm = f(m)
	simpson = (b - a) / 6 * (fa + 4*fm + fb)
	return m, fm, simpson
}

func simpsonRecurse(f func(float64) float64, a, b, fa, fb, m, fm, whole, tol float64, depth int) (float64, error) {
	lm, flm, left := simpsonStep(f, a, m, fa, fm)
	rm, frm, right := simpsonStep(f, m, b, fm, fb)
	if math.IsNaN(left) || math.IsNaN(right) {
		return 0, errors.New("quadrature encountered a non-finite value")
	}
	delta := left + right - whole
	if depth <= 0 {
		return 0, errors.New("quadrature failed to converge")
	}
	if math.Abs(delta) <= 15*tol {
		return left + right + delta/15, nil
	}
	lv, err := simpsonRecurse(f, a, m, fa, fm, lm, flm, left, tol/2, depth-1)
	if err != nil {
		return 0, err
	}
	rv, err := simpsonRecurse(f, m, b, fm, fb, rm, frm, right, tol/2, depth-1)
	if err != nil {
		return 0, err
	}
	return lv + rv, nil
}
