package regression

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantify-ai/quantify-go/internal/validation"
)

// exactLine builds y = 2x + 3 with a dozen observations.
func exactLine() Request {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 2*v + 3
	}
	return Request{
		DependentVar:    "y",
		IndependentVars: []string{"x"},
		Y:               y,
		X:               [][]float64{x},
		Type:            TypeLinear,
	}
}

// noisyData is a fixed two-predictor sample with mild noise.
func noisyData() Request {
	x1 := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	x2 := []float64{2, 1, 4, 3, 6, 5, 8, 7, 10, 9, 12, 11, 14, 13, 16}
	y := []float64{5.1, 6.9, 11.2, 12.8, 17.1, 18.9, 23.2, 24.8, 29.1, 30.9, 35.2, 36.8, 41.1, 42.9, 47.2}
	return Request{
		DependentVar:    "y",
		IndependentVars: []string{"x1", "x2"},
		Y:               y,
		X:               [][]float64{x1, x2},
	}
}

func TestFitLinearExact(t *testing.T) {
	result, err := Fit(exactLine())
	require.NoError(t, err)

	assert.Equal(t, "Linear Regression", result.RegressionType)
	assert.InDelta(t, 3.0, result.Intercept, 1e-6)
	assert.InDelta(t, 2.0, result.Coefficients["x"], 1e-6)
	assert.InDelta(t, 1.0, result.ModelStats.RSquared, 1e-9)
	assert.InDelta(t, 0.0, result.ModelStats.MSE, 1e-9)
	assert.Equal(t, 12, result.SampleSize)
	assert.Contains(t, result.Formula, "y =")

	// The exact fit leaves the F statistic, information criteria and
	// t statistics undefined; they stay null instead of +/-Inf.
	assert.Nil(t, result.ModelStats.FStatistic)
	assert.Nil(t, result.ModelStats.FPValue)
	assert.Nil(t, result.ModelStats.AIC)
	assert.Nil(t, result.ModelStats.BIC)
	inf := result.Inference["x"]
	assert.Nil(t, inf.TValue)
	assert.Nil(t, inf.PValue)
	assert.True(t, inf.Significant)

	// The full result must survive JSON encoding.
	_, err = json.Marshal(result)
	require.NoError(t, err)
}

func TestFitLinearExactThroughOrigin(t *testing.T) {
	x := make([]float64, 16)
	y := make([]float64, 16)
	for i := range x {
		x[i] = float64(i + 1)
		y[i] = x[i]
	}
	result, err := Fit(Request{
		DependentVar:    "y",
		IndependentVars: []string{"x"},
		Y:               y,
		X:               [][]float64{x},
		Type:            TypeLinear,
	})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, result.ModelStats.RSquared, 1e-9)
	assert.Nil(t, result.ModelStats.FStatistic)
	_, err = json.Marshal(result)
	require.NoError(t, err)
}

func TestFitLinearInference(t *testing.T) {
	req := noisyData()
	req.Type = TypeLinear

	result, err := Fit(req)
	require.NoError(t, err)

	require.Contains(t, result.Inference, "x1")
	require.Contains(t, result.Inference, "x2")
	for name, inf := range result.Inference {
		require.NotNil(t, inf.PValue, name)
		require.NotNil(t, inf.TValue, name)
		assert.GreaterOrEqual(t, *inf.PValue, 0.0, name)
		assert.LessOrEqual(t, *inf.PValue, 1.0, name)
		assert.Greater(t, inf.StdError, 0.0, name)
	}

	stats := result.ModelStats
	assert.GreaterOrEqual(t, stats.RSquared, 0.0)
	assert.LessOrEqual(t, stats.RSquared, 1.0)
	require.NotNil(t, stats.AdjustedRSquared)
	assert.LessOrEqual(t, *stats.AdjustedRSquared, stats.RSquared)
	require.NotNil(t, stats.FStatistic)
	assert.Greater(t, *stats.FStatistic, 0.0)
	require.NotNil(t, stats.FPValue)
	assert.GreaterOrEqual(t, *stats.FPValue, 0.0)
	require.NotNil(t, stats.AIC)
	require.NotNil(t, stats.BIC)
	assert.GreaterOrEqual(t, *stats.BIC, *stats.AIC)

	require.NotNil(t, result.ResidualStats)
	assert.Greater(t, result.ResidualStats.DurbinWatson, 0.0)
	assert.Less(t, result.ResidualStats.DurbinWatson, 4.0)
}

func TestFitRidge(t *testing.T) {
	req := noisyData()
	req.Type = TypeRidge

	result, err := Fit(req)
	require.NoError(t, err)

	assert.Equal(t, "Ridge Regression", result.RegressionType)
	require.NotNil(t, result.ModelStats.Alpha)
	assert.Equal(t, RidgeAlpha, *result.ModelStats.Alpha)
	assert.Nil(t, result.Inference)
	assert.GreaterOrEqual(t, result.ModelStats.RSquared, 0.0)
	assert.LessOrEqual(t, result.ModelStats.RSquared, 1.0)
}

func TestFitLassoShrinksTowardSparsity(t *testing.T) {
	req := noisyData()
	req.Type = TypeLasso

	result, err := Fit(req)
	require.NoError(t, err)

	assert.Equal(t, "Lasso Regression", result.RegressionType)
	require.NotNil(t, result.ModelStats.Alpha)
	assert.Equal(t, LassoAlpha, *result.ModelStats.Alpha)
	assert.GreaterOrEqual(t, result.ModelStats.RSquared, 0.0)
	assert.LessOrEqual(t, result.ModelStats.RSquared, 1.0)
}

func TestFitPolynomial(t *testing.T) {
	// y = x^2 exactly
	x := []float64{-5, -4, -3, -2, -1, 0, 1, 2, 3, 4, 5}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = v * v
	}
	req := Request{
		DependentVar:     "y",
		IndependentVars:  []string{"x"},
		Y:                y,
		X:                [][]float64{x},
		Type:             TypePolynomial,
		PolynomialDegree: 2,
	}

	result, err := Fit(req)
	require.NoError(t, err)

	assert.Equal(t, "Polynomial Regression (degree=2)", result.RegressionType)
	assert.Equal(t, 2, result.PolynomialDegree)
	assert.InDelta(t, 1.0, result.ModelStats.RSquared, 1e-9)
	assert.InDelta(t, 0.0, result.Intercept, 1e-6)
	assert.InDelta(t, 1.0, result.Coefficients["x^2"], 1e-6)
	assert.InDelta(t, 0.0, result.Coefficients["x"], 1e-6)
}

func TestFitPolynomialDegreeBounds(t *testing.T) {
	req := exactLine()
	req.Type = TypePolynomial
	req.PolynomialDegree = 11

	_, err := Fit(req)
	require.Error(t, err)
	assert.True(t, validation.IsValidation(err))
}

func TestFitChartData(t *testing.T) {
	result, err := Fit(exactLine())
	require.NoError(t, err)

	assert.Len(t, result.ChartData.Actual, 12)
	assert.Len(t, result.ChartData.Predicted, 12)
	// chart pairs the first predictor with y
	assert.Equal(t, 1.0, result.ChartData.Actual[0][0])
	assert.Equal(t, 5.0, result.ChartData.Actual[0][1])
}

func TestFitValidation(t *testing.T) {
	t.Run("too few rows", func(t *testing.T) {
		req := Request{
			DependentVar:    "y",
			IndependentVars: []string{"x"},
			Y:               []float64{1, 2, 3},
			X:               [][]float64{{1, 2, 3}},
			Type:            TypeLinear,
		}
		_, err := Fit(req)
		require.Error(t, err)
		assert.True(t, validation.IsValidation(err))
	})

	t.Run("unknown type", func(t *testing.T) {
		req := exactLine()
		req.Type = "quantile"
		_, err := Fit(req)
		require.Error(t, err)
		assert.True(t, validation.IsValidation(err))
	})
}
