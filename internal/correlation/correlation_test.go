package correlation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantify-ai/quantify-go/internal/validation"
)

func allPresent(values []float64) Field {
	present := make([]bool, len(values))
	for i := range present {
		present[i] = true
	}
	return Field{Values: values, Present: present}
}

func TestMatrixSymmetricWithUnitDiagonal(t *testing.T) {
	a := allPresent([]float64{1, 2, 3, 4, 5, 6})
	b := allPresent([]float64{2.1, 3.9, 6.2, 7.8, 10.1, 11.9})
	c := allPresent([]float64{5, 1, 4, 2, 6, 3})
	a.Name, b.Name, c.Name = "a", "b", "c"

	matrix, n, err := Matrix([]Field{a, b, c}, MethodPearson)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	require.Len(t, matrix, 3)

	for i := range matrix {
		assert.Equal(t, 1.0, matrix[i][i])
		for j := range matrix {
			assert.Equal(t, matrix[i][j], matrix[j][i])
			assert.GreaterOrEqual(t, matrix[i][j], -1.0)
			assert.LessOrEqual(t, matrix[i][j], 1.0)
		}
	}

	// a and b are nearly proportional
	assert.Greater(t, matrix[0][1], 0.99)
}

func TestMatrixPerfectAntiCorrelation(t *testing.T) {
	x := allPresent([]float64{1, 2, 3, 4, 5})
	y := allPresent([]float64{10, 8, 6, 4, 2})
	x.Name, y.Name = "x", "y"

	matrix, _, err := Matrix([]Field{x, y}, MethodPearson)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, matrix[0][1], 1e-9)
}

func TestMatrixSpearmanMonotone(t *testing.T) {
	// monotone but non-linear relation has perfect rank correlation
	x := allPresent([]float64{1, 2, 3, 4, 5, 6})
	y := allPresent([]float64{1, 8, 27, 64, 125, 216})

	matrix, _, err := Matrix([]Field{x, y}, MethodSpearman)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, matrix[0][1], 1e-9)
}

func TestMatrixKendall(t *testing.T) {
	x := allPresent([]float64{1, 2, 3, 4, 5})
	y := allPresent([]float64{2, 4, 6, 8, 10})

	matrix, _, err := Matrix([]Field{x, y}, MethodKendall)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, matrix[0][1], 1e-9)
}

func TestMatrixPairwiseComplete(t *testing.T) {
	x := Field{
		Values:  []float64{1, 2, 3, 4, 5},
		Present: []bool{true, true, false, true, true},
	}
	y := allPresent([]float64{2, 4, 6, 8, 10})

	matrix, n, err := Matrix([]Field{x, y}, MethodPearson)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	// correlation over the 4 complete pairs is still exact
	assert.InDelta(t, 1.0, matrix[0][1], 1e-9)
}

func TestMatrixUnequalLengths(t *testing.T) {
	long := allPresent([]float64{1, 2, 3, 4, 5, 6})
	short := allPresent([]float64{2, 4, 6})

	matrix, _, err := Matrix([]Field{long, short}, MethodPearson)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, matrix[0][1], 1e-9)
}

func TestMatrixConstantFieldCoercesToZero(t *testing.T) {
	x := allPresent([]float64{1, 2, 3, 4, 5})
	flat := allPresent([]float64{7, 7, 7, 7, 7})

	matrix, _, err := Matrix([]Field{x, flat}, MethodPearson)
	require.NoError(t, err)
	assert.Equal(t, 0.0, matrix[0][1])
}

func TestMatrixValidation(t *testing.T) {
	x := allPresent([]float64{1, 2, 3})

	_, _, err := Matrix([]Field{x}, MethodPearson)
	assert.True(t, validation.IsValidation(err))

	y := allPresent([]float64{1, 2})
	_, _, err = Matrix([]Field{allPresent([]float64{1, 2}), y}, MethodPearson)
	assert.True(t, validation.IsValidation(err))

	_, _, err = Matrix([]Field{x, x}, "cosine")
	assert.True(t, validation.IsValidation(err))
}

func TestHighPairs(t *testing.T) {
	names := []string{"a", "b", "c"}
	matrix := [][]float64{
		{1, 0.95, -0.2},
		{0.95, 1, -0.99},
		{-0.2, -0.99, 1},
	}

	pairs, totalPairs := HighPairs(names, matrix, 0.8)
	assert.Equal(t, 3, totalPairs)
	require.Len(t, pairs, 2)

	// scan order over the upper triangle
	assert.Equal(t, "a", pairs[0].Field1)
	assert.Equal(t, "b", pairs[0].Field2)
	assert.Equal(t, 0.95, pairs[0].Correlation)
	assert.Equal(t, TypeStrongPositive, pairs[0].Type)

	assert.Equal(t, "b", pairs[1].Field1)
	assert.Equal(t, "c", pairs[1].Field2)
	assert.Equal(t, TypeStrongNegative, pairs[1].Type)

	// strongest-first ordering for the discovery listing
	SortByStrength(pairs)
	assert.Equal(t, -0.99, pairs[0].Correlation)
	assert.Equal(t, 0.95, pairs[1].Correlation)
}

func TestHighPairsThresholdIsExclusive(t *testing.T) {
	names := []string{"a", "b"}
	matrix := [][]float64{{1, 0.8}, {0.8, 1}}

	pairs, _ := HighPairs(names, matrix, 0.8)
	assert.Empty(t, pairs)
}
