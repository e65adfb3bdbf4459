// Package distfit fits candidate probability distributions to a series by
// maximum likelihood and ranks them by goodness of fit.
//
// Ranking is purely by the goodness-of-fit p-value with no correction for a
// family's parameter count, matching the established behavior of this
// service; note that this can favor more flexible families such as gamma.
package distfit

import (
	"sort"

	"github.com/quantify-ai/quantify-go/internal/numeric"
	"github.com/quantify-ai/quantify-go/internal/validation"
)

// GoodnessOfFit carries one test outcome. The JSON key stays "ks_test" for
// every family for response compatibility even though Poisson is scored with
// a chi-square test.
type GoodnessOfFit struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	FitGood   bool    `json:"fit_good"`
}

// FitResult is one candidate family's outcome: either fitted parameters plus
// a test, or an error message.
type FitResult struct {
	Distribution string             `json:"distribution"`
	Parameters   map[string]float64 `json:"parameters,omitempty"`
	KSTest       *GoodnessOfFit     `json:"ks_test,omitempty"`
	Error        string             `json:"error,omitempty"`

	pdf func(float64) float64
}

type Curve struct {
	Distribution string    `json:"distribution"`
	X            []float64 `json:"x"`
	Y            []float64 `json:"y"`
}

type ChartData struct {
	Histogram    numeric.Histogram `json:"histogram"`
	FittedCurves []Curve           `json:"fitted_curves"`
}

type Result struct {
	SampleSize int         `json:"sample_size"`
	BestFit    *FitResult  `json:"best_fit"`
	AllFits    []FitResult `json:"all_fits"`
	ChartData  ChartData   `json:"chart_data"`
}

const curvePoints = 200

// Analyze fits every requested family to the series. A family that fails to
// fit contributes an error entry without aborting the others.
func Analyze(series []float64, requested []string) (*Result, error) {
	if len(series) < 3 {
		return nil, validation.Errorf("at least 3 valid numeric values are required, got %d", len(series))
	}

	var fits []FitResult
	for _, key := range requested {
		f, ok := fitters[key]
		if !ok {
			return nil, validation.Errorf("unsupported distribution: %s", key)
		}
		fits = append(fits, runFit(f, series))
	}

	// Candidates with a valid test sort descending by p-value; ties keep
	// request order. Errored families trail the list.
	sort.SliceStable(fits, func(i, j int) bool {
		a, b := fits[i].KSTest, fits[j].KSTest
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.PValue > b.PValue
	})

	result := &Result{SampleSize: len(series), AllFits: fits}
	if len(fits) > 0 && fits[0].KSTest != nil {
		result.BestFit = &fits[0]
	}
	result.ChartData = buildChartData(series, fits)
	return result, nil
}

func runFit(f fitter, series []float64) FitResult {
	fit, err := f.fit(series)
	if err != nil {
		return FitResult{Distribution: f.name(), Error: err.Error()}
	}

	stat, p, err := fit.goodness(series)
	if err != nil {
		return FitResult{Distribution: f.name(), Error: err.Error()}
	}

	params := make(map[string]float64, len(fit.params))
	for k, v := range fit.params {
		params[k] = numeric.Round(v, 4)
	}
	return FitResult{
		Distribution: f.name(),
		Parameters:   params,
		KSTest: &GoodnessOfFit{
			Statistic: numeric.Round(stat, 4),
			PValue:    numeric.Round(p, 4),
			FitGood:   p > 0.05,
		},
		pdf: fit.pdf,
	}
}

// buildChartData bins the raw series and overlays each successfully fitted
// continuous density, scaled so it is comparable to the count histogram.
func buildChartData(series []float64, fits []FitResult) ChartData {
	hist := numeric.NewHistogram(series)
	chart := ChartData{Histogram: hist, FittedCurves: []Curve{}}

	xMin := hist.BinEdges[0]
	xMax := hist.BinEdges[len(hist.BinEdges)-1]
	x := numeric.Linspace(xMin, xMax, curvePoints)
	scale := float64(hist.Total()) * hist.FirstBinWidth()

	for _, fit := range fits {
		if fit.pdf == nil || fit.KSTest == nil {
			continue
		}
		y := make([]float64, len(x))
		for i, xv := range x {
			y[i] = fit.pdf(xv) * scale
		}
		chart.FittedCurves = append(chart.FittedCurves, Curve{
			Distribution: fit.Distribution,
			X:            x,
			Y:            y,
		})
	}
	return chart
}
