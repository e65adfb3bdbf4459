package descriptive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantify-ai/quantify-go/internal/validation"
)

func TestAnalyzeBasicStats(t *testing.T) {
	series := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	result, err := Analyze(series, 5000)
	require.NoError(t, err)

	assert.Equal(t, 8, result.SampleSize)
	assert.Equal(t, 5.0, result.BasicStats.Mean)
	assert.Equal(t, 4.5, result.BasicStats.Median)
	assert.Equal(t, 2.0, result.BasicStats.Min)
	assert.Equal(t, 9.0, result.BasicStats.Max)
	assert.Equal(t, 7.0, result.BasicStats.Range)
	// sample variance of this classic series is 32/7
	assert.InDelta(t, 4.5714, result.BasicStats.Variance, 1e-4)
	assert.InDelta(t, 2.1381, result.BasicStats.Std, 1e-4)

	assert.Equal(t, 4.0, result.Quantiles.Q1)
	assert.InDelta(t, 5.5, result.Quantiles.Q3, 1e-9)
	assert.InDelta(t, 1.5, result.Quantiles.IQR, 1e-9)
}

func TestAnalyzeConfidenceInterval(t *testing.T) {
	series := []float64{10, 12, 11, 13, 12, 11, 10, 14, 12, 11}

	result, err := Analyze(series, 5000)
	require.NoError(t, err)

	ci := result.ConfidenceInterval
	assert.Equal(t, 0.95, ci.Level)
	assert.Less(t, ci.Lower, result.BasicStats.Mean)
	assert.Greater(t, ci.Upper, result.BasicStats.Mean)
	// interval is symmetric around the mean
	assert.InDelta(t, result.BasicStats.Mean-ci.Lower, ci.Upper-result.BasicStats.Mean, 1e-3)
}

func TestAnalyzeShapeStats(t *testing.T) {
	symmetric := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	result, err := Analyze(symmetric, 5000)
	require.NoError(t, err)

	require.NotNil(t, result.ShapeStats.Skewness)
	assert.InDelta(t, 0, *result.ShapeStats.Skewness, 1e-9)
	require.NotNil(t, result.ShapeStats.Kurtosis)
	require.NotNil(t, result.ShapeStats.CV)

	skewed := []float64{1, 1, 1, 2, 2, 3, 10, 50}
	result, err = Analyze(skewed, 5000)
	require.NoError(t, err)
	require.NotNil(t, result.ShapeStats.Skewness)
	assert.Greater(t, *result.ShapeStats.Skewness, 1.0)
}

func TestAnalyzeCVUndefinedAtZeroMean(t *testing.T) {
	series := []float64{-2, -1, 0, 1, 2}
	result, err := Analyze(series, 5000)
	require.NoError(t, err)
	assert.Nil(t, result.ShapeStats.CV)
}

func TestAnalyzeNormalityTests(t *testing.T) {
	series := []float64{
		-1.8, -1.3, -1.0, -0.7, -0.5, -0.3, -0.1, 0.1,
		0.3, 0.5, 0.7, 1.0, 1.3, 1.8,
	}

	result, err := Analyze(series, 5000)
	require.NoError(t, err)

	for name, test := range map[string]NormalityTest{
		"shapiro_wilk":       result.NormalityTests.ShapiroWilk,
		"kolmogorov_smirnov": result.NormalityTests.KolmogorovSmirnov,
		"jarque_bera":        result.NormalityTests.JarqueBera,
	} {
		require.NotNil(t, test.Statistic, name)
		require.NotNil(t, test.PValue, name)
		require.NotNil(t, test.IsNormal, name)
		assert.GreaterOrEqual(t, *test.PValue, 0.0, name)
		assert.LessOrEqual(t, *test.PValue, 1.0, name)
	}
}

func TestAnalyzeShapiroSkippedAboveCap(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	result, err := Analyze(series, 5)
	require.NoError(t, err)

	assert.Nil(t, result.NormalityTests.ShapiroWilk.Statistic)
	assert.NotNil(t, result.NormalityTests.KolmogorovSmirnov.Statistic)
}

func TestAnalyzeConstantSeries(t *testing.T) {
	series := []float64{5, 5, 5, 5, 5}

	result, err := Analyze(series, 5000)
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.BasicStats.Std)
	assert.Nil(t, result.ShapeStats.Skewness)
	assert.Nil(t, result.NormalityTests.KolmogorovSmirnov.Statistic)
	assert.Nil(t, result.NormalityTests.JarqueBera.Statistic)
}

func TestAnalyzeTooFewValues(t *testing.T) {
	_, err := Analyze([]float64{1, 2}, 5000)
	require.Error(t, err)
	assert.True(t, validation.IsValidation(err))
}
