package numeric

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// ShapiroWilk computes the Shapiro-Wilk W statistic and approximate p-value
// following Royston's AS R94 algorithm. Callers cap n (the p-value
// approximation is calibrated for n up to a few thousand).
func ShapiroWilk(data []float64) (statistic, pValue float64, err error) {
	n := len(data)
	if n < 3 {
		return 0, 0, ErrDegenerate
	}

	x := append([]float64(nil), data...)
	sort.Float64s(x)
	if x[n-1]-x[0] <= 0 {
		return 0, 0, ErrDegenerate
	}

	a := swCoefficients(n)

	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)

	var num, den float64
	for i, v := range x {
		num += a[i] * v
		d := v - mean
		den += d * d
	}
	w := num * num / den
	if w > 1 {
		w = 1
	}

	return w, swPValue(w, n), nil
}

// swCoefficients returns the approximate normal order-statistic weights a_i.
func swCoefficients(n int) []float64 {
	norm := distuv.Normal{Mu: 0, Sigma: 1}

	m := make([]float64, n)
	ssq := 0.0
	for i := 0; i < n; i++ {
		m[i] = norm.Quantile((float64(i+1) - 0.375) / (float64(n) + 0.25))
		ssq += m[i] * m[i]
	}

	a := make([]float64, n)
	if n == 3 {
		a[0] = -math.Sqrt(0.5)
		a[2] = math.Sqrt(0.5)
		return a
	}

	rsn := 1 / math.Sqrt(float64(n))
	rootSsq := math.Sqrt(ssq)

	// Royston's polynomial corrections for the extreme weights.
	an := m[n-1]/rootSsq + polyval(rsn, 0, 0.221157, -0.147981, -2.071190, 4.434685, -2.706056)
	var phi float64
	if n > 5 {
		an1 := m[n-2]/rootSsq + polyval(rsn, 0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633)
		phi = (ssq - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) / (1 - 2*an*an - 2*an1*an1)
		a[n-1] = an
		a[n-2] = an1
		a[0] = -an
		a[1] = -an1
		for i := 2; i < n-2; i++ {
			a[i] = m[i] / math.Sqrt(phi)
		}
	} else {
		phi = (ssq - 2*m[n-1]*m[n-1]) / (1 - 2*an*an)
		a[n-1] = an
		a[0] = -an
		for i := 1; i < n-1; i++ {
			a[i] = m[i] / math.Sqrt(phi)
		}
	}
	return a
}

// swPValue maps W to an upper-tail p-value via Royston's normalizing
// transformations.
func swPValue(w float64, n int) float64 {
	if n == 3 {
		// Exact small-sample result.
		p := 6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Asin(math.Sqrt(0.75)))
		if p < 0 {
			return 0
		}
		if p > 1 {
			return 1
		}
		return p
	}

	fn := float64(n)
	var z float64
	if n <= 11 {
		gamma := -2.273 + 0.459*fn
		wt := -math.Log(gamma - math.Log(1-w))
		mu := 0.5440 - 0.39978*fn + 0.025054*fn*fn - 0.0006714*fn*fn*fn
		sigma := math.Exp(1.3822 - 0.77857*fn + 0.062767*fn*fn - 0.0020322*fn*fn*fn)
		z = (wt - mu) / sigma
	} else {
		lnN := math.Log(fn)
		wt := math.Log(1 - w)
		mu := -1.5861 - 0.31082*lnN - 0.083751*lnN*lnN + 0.0038915*lnN*lnN*lnN
		sigma := math.Exp(-0.4803 - 0.082676*lnN + 0.0030302*lnN*lnN)
		z = (wt - mu) / sigma
	}

	norm := distuv.Normal{Mu: 0, Sigma: 1}
	return 1 - norm.CDF(z)
}

// polyval evaluates c0 + c1*x + c2*x^2 + ... at x.
func polyval(x float64, coeffs ...float64) float64 {
	sum := 0.0
	pow := 1.0
	for _, c := range coeffs {
		sum += c * pow
		pow *= x
	}
	return sum
}
