package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		places   int
		expected float64
	}{
		{"four places", 3.141592653, 4, 3.1416},
		{"six places", 3.141592653, 6, 3.141593},
		{"negative value", -2.71828, 2, -2.72},
		{"already exact", 1.5, 4, 1.5},
		{"zero", 0, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Round(tt.value, tt.places))
		})
	}
}

func TestRoundPtr(t *testing.T) {
	assert.Nil(t, RoundPtr(nil, 4))

	v := 1.23456
	rounded := RoundPtr(&v, 2)
	require.NotNil(t, rounded)
	assert.Equal(t, 1.23, *rounded)
}

func TestQuantile(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}

	assert.Equal(t, 1.0, Quantile(data, 0))
	assert.Equal(t, 3.0, Quantile(data, 0.5))
	assert.Equal(t, 5.0, Quantile(data, 1))
	// linear interpolation between order statistics
	assert.Equal(t, 2.0, Quantile(data, 0.25))
	assert.Equal(t, 4.0, Quantile(data, 0.75))
}

func TestQuantileInterpolates(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.75, Quantile(data, 0.25), 1e-12)
	assert.InDelta(t, 2.5, Quantile(data, 0.5), 1e-12)
}

func TestLinspace(t *testing.T) {
	points := Linspace(0, 1, 5)
	require.Len(t, points, 5)
	assert.Equal(t, 0.0, points[0])
	assert.Equal(t, 1.0, points[4])
	assert.InDelta(t, 0.25, points[1], 1e-12)
}

func TestNewHistogramCountsSumToSampleSize(t *testing.T) {
	data := []float64{1.2, 3.4, 2.2, 5.1, 4.4, 2.9, 3.3, 1.1, 0.5, 4.8, 2.1, 3.7}

	h := NewHistogram(data)

	require.NotEmpty(t, h.Counts)
	require.Len(t, h.BinEdges, len(h.Counts)+1)
	assert.Equal(t, len(data), h.Total())
	assert.Greater(t, h.FirstBinWidth(), 0.0)

	for i := 1; i < len(h.BinEdges); i++ {
		assert.Greater(t, h.BinEdges[i], h.BinEdges[i-1])
	}
}

func TestNewHistogramDegenerateData(t *testing.T) {
	h := NewHistogram([]float64{2, 2, 2, 2})
	assert.Equal(t, 4, h.Total())
}

func TestKolmogorovSmirnov(t *testing.T) {
	// standard normal CDF
	cdf := func(x float64) float64 {
		return 0.5 * (1 + math.Erf(x/math.Sqrt2))
	}

	t.Run("plausible normal sample", func(t *testing.T) {
		data := []float64{-1.2, -0.8, -0.4, -0.1, 0.0, 0.2, 0.5, 0.9, 1.3, 1.8}
		stat, p, err := KolmogorovSmirnov(data, cdf)
		require.NoError(t, err)
		assert.Greater(t, stat, 0.0)
		assert.LessOrEqual(t, stat, 1.0)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
		assert.Greater(t, p, 0.05, "a well-behaved normal sample should not be rejected")
	})

	t.Run("far from the reference distribution", func(t *testing.T) {
		data := []float64{100, 101, 102, 103, 104, 105, 106, 107, 108, 109}
		stat, p, err := KolmogorovSmirnov(data, cdf)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, stat, 1e-9)
		assert.Less(t, p, 0.01)
	})

	t.Run("empty sample", func(t *testing.T) {
		_, _, err := KolmogorovSmirnov(nil, cdf)
		assert.Error(t, err)
	})
}

func TestJarqueBera(t *testing.T) {
	t.Run("symmetric sample", func(t *testing.T) {
		data := []float64{-2, -1.5, -1, -0.5, 0, 0.5, 1, 1.5, 2}
		stat, p, err := JarqueBera(data)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, stat, 0.0)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	})

	t.Run("degenerate sample", func(t *testing.T) {
		_, _, err := JarqueBera([]float64{3, 3, 3, 3})
		assert.ErrorIs(t, err, ErrDegenerate)
	})
}

func TestShapiroWilk(t *testing.T) {
	t.Run("near normal sample", func(t *testing.T) {
		data := []float64{
			-1.86, -1.21, -0.92, -0.67, -0.45, -0.25, -0.08, 0.08,
			0.25, 0.45, 0.67, 0.92, 1.21, 1.86,
		}
		stat, p, err := ShapiroWilk(data)
		require.NoError(t, err)
		assert.Greater(t, stat, 0.9)
		assert.LessOrEqual(t, stat, 1.0)
		assert.Greater(t, p, 0.05)
	})

	t.Run("heavily skewed sample", func(t *testing.T) {
		data := []float64{1, 1, 1, 1, 1, 1, 1, 1, 2, 2, 2, 4, 8, 32, 128}
		stat, p, err := ShapiroWilk(data)
		require.NoError(t, err)
		assert.Less(t, stat, 0.8)
		assert.Less(t, p, 0.01)
	})

	t.Run("too small", func(t *testing.T) {
		_, _, err := ShapiroWilk([]float64{1, 2})
		assert.Error(t, err)
	})
}
