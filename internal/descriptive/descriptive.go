// Package descriptive computes summary statistics, a confidence interval and
// normality tests for a single cleaned numeric series.
package descriptive

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/quantify-ai/quantify-go/internal/numeric"
	"github.com/quantify-ai/quantify-go/internal/validation"
)

const confidenceLevel = 0.95

type BasicStats struct {
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Std      float64 `json:"std"`
	Variance float64 `json:"variance"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Range    float64 `json:"range"`
}

type Quantiles struct {
	Q1  float64 `json:"q1"`
	Q3  float64 `json:"q3"`
	IQR float64 `json:"iqr"`
}

type ShapeStats struct {
	Skewness *float64 `json:"skewness"`
	Kurtosis *float64 `json:"kurtosis"`
	CV       *float64 `json:"cv"`
}

type ConfidenceInterval struct {
	Level float64 `json:"level"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// NormalityTest carries one best-effort test outcome. A test that could not
// run reports null fields rather than failing the whole analysis.
type NormalityTest struct {
	Statistic *float64 `json:"statistic"`
	PValue    *float64 `json:"p_value"`
	IsNormal  *bool    `json:"is_normal"`
}

type NormalityTests struct {
	ShapiroWilk       NormalityTest `json:"shapiro_wilk"`
	KolmogorovSmirnov NormalityTest `json:"kolmogorov_smirnov"`
	JarqueBera        NormalityTest `json:"jarque_bera"`
}

type Result struct {
	SampleSize         int                `json:"sample_size"`
	BasicStats         BasicStats         `json:"basic_stats"`
	Quantiles          Quantiles          `json:"quantiles"`
	ShapeStats         ShapeStats         `json:"shape_stats"`
	ConfidenceInterval ConfidenceInterval `json:"confidence_interval"`
	NormalityTests     NormalityTests     `json:"normality_tests"`
}

// Analyze runs the full descriptive sweep over series. maxShapiroN caps the
// sample size at which the Shapiro-Wilk test is attempted.
func Analyze(series []float64, maxShapiroN int) (*Result, error) {
	n := len(series)
	if n < 3 {
		return nil, validation.Errorf("at least 3 valid numeric values are required, got %d", n)
	}

	mean, _ := stats.Mean(series)
	median, _ := stats.Median(series)
	std, _ := stats.StandardDeviationSample(series)
	variance, _ := stats.SampleVariance(series)
	min, _ := stats.Min(series)
	max, _ := stats.Max(series)

	q1 := numeric.Quantile(series, 0.25)
	q3 := numeric.Quantile(series, 0.75)

	var cv *float64
	if mean != 0 {
		v := numeric.Round(std/mean, 4)
		cv = &v
	}

	// Two-sided t interval around the mean.
	se := std / math.Sqrt(float64(n))
	tCrit := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}.Quantile(1 - (1-confidenceLevel)/2)

	result := &Result{
		SampleSize: n,
		BasicStats: BasicStats{
			Mean:     numeric.Round(mean, 4),
			Median:   numeric.Round(median, 4),
			Std:      numeric.Round(std, 4),
			Variance: numeric.Round(variance, 4),
			Min:      numeric.Round(min, 4),
			Max:      numeric.Round(max, 4),
			Range:    numeric.Round(max-min, 4),
		},
		Quantiles: Quantiles{
			Q1:  numeric.Round(q1, 4),
			Q3:  numeric.Round(q3, 4),
			IQR: numeric.Round(q3-q1, 4),
		},
		ShapeStats: ShapeStats{
			Skewness: numeric.RoundPtr(sampleSkewness(series), 4),
			Kurtosis: numeric.RoundPtr(sampleExcessKurtosis(series), 4),
			CV:       cv,
		},
		ConfidenceInterval: ConfidenceInterval{
			Level: confidenceLevel,
			Lower: numeric.Round(mean-tCrit*se, 4),
			Upper: numeric.Round(mean+tCrit*se, 4),
		},
	}

	result.NormalityTests = runNormalityTests(series, mean, std, maxShapiroN)
	return result, nil
}

func runNormalityTests(series []float64, mean, std float64, maxShapiroN int) NormalityTests {
	tests := NormalityTests{}

	if len(series) <= maxShapiroN {
		if stat, p, err := numeric.ShapiroWilk(series); err == nil {
			tests.ShapiroWilk = newTestResult(stat, p)
		}
	}

	if std > 0 {
		norm := distuv.Normal{Mu: mean, Sigma: std}
		if stat, p, err := numeric.KolmogorovSmirnov(series, norm.CDF); err == nil {
			tests.KolmogorovSmirnov = newTestResult(stat, p)
		}
	}

	if stat, p, err := numeric.JarqueBera(series); err == nil {
		tests.JarqueBera = newTestResult(stat, p)
	}

	return tests
}

func newTestResult(stat, p float64) NormalityTest {
	rs := numeric.Round(stat, 4)
	rp := numeric.Round(p, 4)
	isNormal := p > 0.05
	return NormalityTest{Statistic: &rs, PValue: &rp, IsNormal: &isNormal}
}

// sampleSkewness returns the bias-adjusted skewness G1, nil when undefined.
func sampleSkewness(data []float64) *float64 {
	n := float64(len(data))
	if n < 3 {
		return nil
	}
	m2, m3, _ := centralMoments(data)
	if m2 == 0 {
		return nil
	}
	g1 := m3 / math.Pow(m2, 1.5)
	adj := g1 * math.Sqrt(n*(n-1)) / (n - 2)
	return &adj
}

// sampleExcessKurtosis returns the bias-adjusted excess kurtosis G2, nil when
// undefined (n < 4 or zero variance).
func sampleExcessKurtosis(data []float64) *float64 {
	n := float64(len(data))
	if n < 4 {
		return nil
	}
	m2, _, m4 := centralMoments(data)
	if m2 == 0 {
		return nil
	}
	g2 := m4/(m2*m2) - 3
	adj := ((n+1)*g2 + 6) * (n - 1) / ((n - 2) * (n - 3))
	return &adj
}

func centralMoments(data []float64) (m2, m3, m4 float64) {
	n := float64(len(data))
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= n
	for _, v := range data {
		d := v - mean
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
	}
	return m2 / n, m3 / n, m4 / n
}
