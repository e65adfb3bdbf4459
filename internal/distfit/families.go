package distfit

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/quantify-ai/quantify-go/internal/numeric"
)

// fitted is one family fitted to a concrete series.
type fitted struct {
	params   map[string]float64
	pdf      func(float64) float64 // nil for discrete families
	goodness func(series []float64) (statistic, pValue float64, err error)
}

// fitter is the capability interface every family implements. New families
// register here without touching call sites.
type fitter interface {
	name() string
	fit(series []float64) (*fitted, error)
}

var fitters = map[string]fitter{
	"norm":    normalFitter{},
	"expon":   exponentialFitter{},
	"gamma":   gammaFitter{},
	"lognorm": logNormalFitter{},
	"poisson": poissonFitter{},
}

// SupportedDistributions lists the request keys of all registered families.
func SupportedDistributions() []string {
	keys := make([]string, 0, len(fitters))
	for k := range fitters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func ksGoodness(cdf func(float64) float64) func([]float64) (float64, float64, error) {
	return func(series []float64) (float64, float64, error) {
		return numeric.KolmogorovSmirnov(series, cdf)
	}
}

func momentStats(series []float64) (mean, popStd float64) {
	n := float64(len(series))
	for _, v := range series {
		mean += v
	}
	mean /= n
	var ss float64
	for _, v := range series {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / n)
}

// ---- normal ----

type normalFitter struct{}

func (normalFitter) name() string { return "Normal" }

func (normalFitter) fit(series []float64) (*fitted, error) {
	mean, std := momentStats(series)
	if std == 0 {
		return nil, errors.New("normal fit requires non-zero variance")
	}
	dist := distuv.Normal{Mu: mean, Sigma: std}
	return &fitted{
		params:   map[string]float64{"mean": mean, "std": std},
		pdf:      dist.Prob,
		goodness: ksGoodness(dist.CDF),
	}, nil
}

// ---- exponential (location-scale, MLE: loc = min, scale = mean - min) ----

type exponentialFitter struct{}

func (exponentialFitter) name() string { return "Exponential" }

func (exponentialFitter) fit(series []float64) (*fitted, error) {
	min := series[0]
	mean := 0.0
	for _, v := range series {
		if v < min {
			min = v
		}
		mean += v
	}
	mean /= float64(len(series))

	scale := mean - min
	if scale <= 0 {
		return nil, errors.New("exponential fit requires non-degenerate data")
	}

	pdf := func(x float64) float64 {
		if x < min {
			return 0
		}
		return math.Exp(-(x-min)/scale) / scale
	}
	cdf := func(x float64) float64 {
		if x < min {
			return 0
		}
		return 1 - math.Exp(-(x-min)/scale)
	}
	return &fitted{
		params:   map[string]float64{"loc": min, "scale": scale},
		pdf:      pdf,
		goodness: ksGoodness(cdf),
	}, nil
}

// ---- gamma (shape-loc-scale; shape by Newton-refined MLE) ----

type gammaFitter struct{}

func (gammaFitter) name() string { return "Gamma" }

func (gammaFitter) fit(series []float64) (*fitted, error) {
	min, max := series[0], series[0]
	for _, v := range series {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max == min {
		return nil, errors.New("gamma fit requires non-degenerate data")
	}

	// Shift slightly below the minimum so every observation stays strictly
	// inside the support when taking logs.
	loc := min - 0.001*(max-min)

	var mean, meanLog float64
	for _, v := range series {
		s := v - loc
		mean += s
		meanLog += math.Log(s)
	}
	n := float64(len(series))
	mean /= n
	meanLog /= n

	s := math.Log(mean) - meanLog
	if s <= 0 {
		return nil, errors.New("gamma fit failed: non-positive log-moment gap")
	}

	// Closed-form start, then Newton on ln(k) - digamma(k) = s.
	k := (3 - s + math.Sqrt((s-3)*(s-3)+24*s)) / (12 * s)
	for i := 0; i < 30; i++ {
		f := math.Log(k) - mathext.Digamma(k) - s
		h := 1e-6 * k
		deriv := (mathext.Digamma(k+h) - mathext.Digamma(k-h)) / (2 * h)
		step := f / (1/k - deriv)
		next := k - step
		if next <= 0 {
			next = k / 2
		}
		if math.Abs(next-k) < 1e-10*k {
			k = next
			break
		}
		k = next
	}
	if !isFinitePositive(k) {
		return nil, errors.New("gamma fit failed to converge")
	}
	scale := mean / k

	dist := distuv.Gamma{Alpha: k, Beta: 1 / scale}
	pdf := func(x float64) float64 {
		if x <= loc {
			return 0
		}
		return dist.Prob(x - loc)
	}
	cdf := func(x float64) float64 {
		if x <= loc {
			return 0
		}
		return dist.CDF(x - loc)
	}
	return &fitted{
		params:   map[string]float64{"shape": k, "loc": loc, "scale": scale},
		pdf:      pdf,
		goodness: ksGoodness(cdf),
	}, nil
}

// ---- log-normal (loc fixed at 0; requires strictly positive data) ----

type logNormalFitter struct{}

func (logNormalFitter) name() string { return "Log-Normal" }

func (logNormalFitter) fit(series []float64) (*fitted, error) {
	logs := make([]float64, len(series))
	for i, v := range series {
		if v <= 0 {
			return nil, errors.New("log-normal fit requires strictly positive data")
		}
		logs[i] = math.Log(v)
	}
	mu, sigma := momentStats(logs)
	if sigma == 0 {
		return nil, errors.New("log-normal fit requires non-zero variance")
	}

	dist := distuv.LogNormal{Mu: mu, Sigma: sigma}
	return &fitted{
		params:   map[string]float64{"shape": sigma, "loc": 0, "scale": math.Exp(mu)},
		pdf:      dist.Prob,
		goodness: ksGoodness(dist.CDF),
	}, nil
}

// ---- Poisson (discrete; chi-square over value-count frequencies) ----

type poissonFitter struct{}

func (poissonFitter) name() string { return "Poisson" }

func (poissonFitter) fit(series []float64) (*fitted, error) {
	mean := 0.0
	for _, v := range series {
		if v != math.Trunc(v) {
			return nil, errors.New("Poisson distribution requires integer-valued data")
		}
		if v < 0 {
			return nil, errors.New("Poisson distribution requires non-negative data")
		}
		mean += v
	}
	mean /= float64(len(series))
	if mean <= 0 {
		return nil, errors.New("Poisson fit requires a positive mean")
	}

	mu := mean
	return &fitted{
		params: map[string]float64{"mu": mu},
		pdf:    nil, // discrete, excluded from curve overlay
		goodness: func(series []float64) (float64, float64, error) {
			return poissonChiSquare(series, mu)
		},
	}, nil
}

// poissonChiSquare compares observed value-count frequencies to expected
// Poisson probabilities scaled by the sample size.
func poissonChiSquare(series []float64, mu float64) (float64, float64, error) {
	counts := make(map[int]int)
	for _, v := range series {
		counts[int(v)]++
	}
	values := make([]int, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Ints(values)

	if len(values) < 2 {
		return 0, 0, errors.New("chi-square test requires at least 2 distinct values")
	}

	pois := distuv.Poisson{Lambda: mu}
	n := float64(len(series))
	stat := 0.0
	for _, v := range values {
		expected := pois.Prob(float64(v)) * n
		if expected <= 0 {
			return 0, 0, fmt.Errorf("expected frequency underflow at value %d", v)
		}
		observed := float64(counts[v])
		diff := observed - expected
		stat += diff * diff / expected
	}

	dof := float64(len(values) - 1)
	chi2 := distuv.ChiSquared{K: dof}
	return stat, 1 - chi2.CDF(stat), nil
}

func isFinitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
