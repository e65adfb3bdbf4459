package numeric

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrDegenerate is returned when a test cannot run on the given sample,
// typically because it has zero variance or is too small.
var ErrDegenerate = errors.New("sample is degenerate for this test")

// KolmogorovSmirnov runs a one-sample KS test of data against the given
// cumulative distribution function. The p-value uses the asymptotic
// Kolmogorov distribution with the small-sample correction of Stephens.
func KolmogorovSmirnov(data []float64, cdf func(float64) float64) (statistic, pValue float64, err error) {
	n := len(data)
	if n < 1 {
		return 0, 0, ErrDegenerate
	}
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)

	d := 0.0
	for i, x := range sorted {
		f := cdf(x)
		if math.IsNaN(f) {
			return 0, 0, errors.New("cdf returned NaN")
		}
		upper := float64(i+1)/float64(n) - f
		lower := f - float64(i)/float64(n)
		if upper > d {
			d = upper
		}
		if lower > d {
			d = lower
		}
	}

	sqrtN := math.Sqrt(float64(n))
	lambda := (sqrtN + 0.12 + 0.11/sqrtN) * d
	return d, kolmogorovQ(lambda), nil
}

// kolmogorovQ evaluates the complementary CDF of the Kolmogorov distribution.
func kolmogorovQ(lambda float64) float64 {
	if lambda < 1e-10 {
		return 1
	}
	sum := 0.0
	sign := 1.0
	for k := 1; k <= 100; k++ {
		term := sign * math.Exp(-2*float64(k)*float64(k)*lambda*lambda)
		sum += term
		if math.Abs(term) < 1e-12 {
			break
		}
		sign = -sign
	}
	p := 2 * sum
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// JarqueBera computes the Jarque-Bera normality statistic and its
// chi-square(2) p-value. Skewness and kurtosis use the population moments.
func JarqueBera(data []float64) (statistic, pValue float64, err error) {
	n := float64(len(data))
	if n < 3 {
		return 0, 0, ErrDegenerate
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= n

	var m2, m3, m4 float64
	for _, v := range data {
		d := v - mean
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
	}
	m2 /= n
	m3 /= n
	m4 /= n
	if m2 == 0 {
		return 0, 0, ErrDegenerate
	}

	skew := m3 / math.Pow(m2, 1.5)
	kurt := m4/(m2*m2) - 3
	jb := n / 6 * (skew*skew + kurt*kurt/4)

	chi2 := distuv.ChiSquared{K: 2}
	return jb, 1 - chi2.CDF(jb), nil
}
