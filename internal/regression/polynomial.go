package regression

import (
	"fmt"
	"strings"

	"github.com/quantify-ai/quantify-go/internal/numeric"
	"github.com/quantify-ai/quantify-go/internal/validation"
)

const defaultPolynomialDegree = 2

// fitPolynomial expands the independent variables to all feature
// combinations up to the requested total degree and fits ordinary least
// squares on the expanded set.
func fitPolynomial(req Request) (*Result, error) {
	degree := req.PolynomialDegree
	if degree == 0 {
		degree = defaultPolynomialDegree
	}
	if degree < 1 || degree > 10 {
		return nil, validation.Errorf("polynomial degree must be between 1 and 10, got %d", degree)
	}

	names, cols := expandFeatures(req.IndependentVars, req.X, degree)
	n := len(req.Y)
	if n <= len(cols)+1 {
		return nil, validation.Errorf("not enough rows for %d polynomial features", len(cols))
	}

	beta, predicted, err := olsSolve(cols, req.Y)
	if err != nil {
		return nil, err
	}
	r2, mse := rSquaredMSE(req.Y, predicted)

	return &Result{
		RegressionType:   fmt.Sprintf("Polynomial Regression (degree=%d)", degree),
		DependentVar:     req.DependentVar,
		IndependentVars:  req.IndependentVars,
		SampleSize:       n,
		Formula:          equation(req.DependentVar, beta[0], names, beta[1:]),
		Intercept:        numeric.Round(beta[0], 4),
		PolynomialDegree: degree,
		Coefficients:     roundCoefMap(names, beta[1:]),
		ModelStats: ModelStats{
			RSquared: numeric.Round(r2, 4),
			MSE:      numeric.Round(mse, 4),
		},
		ChartData: chartData(req.X[0], req.Y, predicted),
	}, nil
}

// expandFeatures builds all monomial combinations of the input variables
// with total degree 1..degree, ordered by degree then by combination order.
// Names follow the "x", "x^2", "x y" convention.
func expandFeatures(vars []string, cols [][]float64, degree int) ([]string, [][]float64) {
	n := len(cols[0])
	var names []string
	var features [][]float64

	for d := 1; d <= degree; d++ {
		for _, combo := range combinationsWithReplacement(len(vars), d) {
			col := make([]float64, n)
			for i := range col {
				col[i] = 1
			}
			counts := make([]int, len(vars))
			for _, idx := range combo {
				counts[idx]++
				for i := range col {
					col[i] *= cols[idx][i]
				}
			}
			names = append(names, featureName(vars, counts))
			features = append(features, col)
		}
	}
	return names, features
}

// combinationsWithReplacement enumerates non-decreasing index tuples of the
// given length drawn from 0..n-1.
func combinationsWithReplacement(n, length int) [][]int {
	var out [][]int
	combo := make([]int, length)
	var recurse func(pos, start int)
	recurse = func(pos, start int) {
		if pos == length {
			out = append(out, append([]int(nil), combo...))
			return
		}
		for i := start; i < n; i++ {
			combo[pos] = i
			recurse(pos+1, i)
		}
	}
	recurse(0, 0)
	return out
}

func featureName(vars []string, counts []int) string {
	var parts []string
	for i, c := range counts {
		switch {
		case c == 1:
			parts = append(parts, vars[i])
		case c > 1:
			parts = append(parts, fmt.Sprintf("%s^%d", vars[i], c))
		}
	}
	return strings.Join(parts, " ")
}
