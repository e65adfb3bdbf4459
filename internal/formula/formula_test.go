package formula

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantify-ai/quantify-go/internal/validation"
)

func TestCompileAndEval(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		vars     []string
		values   []float64
		expected float64
	}{
		{"addition", "a + b", []string{"a", "b"}, []float64{2, 3}, 5},
		{"precedence", "2 + 3 * 4", nil, nil, 14},
		{"parentheses", "(2 + 3) * 4", nil, nil, 20},
		{"power", "x ** 2", []string{"x"}, []float64{3}, 9},
		{"power right associative", "2 ** 3 ** 2", nil, nil, 512},
		{"unary minus", "-x + 1", []string{"x"}, []float64{4}, -3},
		{"scientific notation", "1.5e2 + 1", nil, nil, 151},
		{"sqrt", "sqrt(x)", []string{"x"}, []float64{16}, 4},
		{"nested calls", "max(min(a, b), 2)", []string{"a", "b"}, []float64{1, 5}, 2},
		{"pi constant", "2 * pi", nil, nil, 2 * math.Pi},
		{"modulo via mixed ops", "a * b - a / b", []string{"a", "b"}, []float64{6, 2}, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.src, tt.vars)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, p.Eval(tt.values), 1e-9)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		vars []string
	}{
		{"unknown variable", "a + z", []string{"a"}},
		{"unknown function", "frobnicate(x)", []string{"x"}},
		{"wrong arity", "sqrt(a, b)", []string{"a", "b"}},
		{"dangling operator", "a +", []string{"a"}},
		{"unbalanced parens", "(a + 1", []string{"a"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.src, tt.vars)
			require.Error(t, err)
			assert.True(t, validation.IsValidation(err))
		})
	}
}

func TestEvalNonFinite(t *testing.T) {
	p, err := Compile("a / b", []string{"a", "b"})
	require.NoError(t, err)

	assert.True(t, math.IsInf(p.Eval([]float64{1, 0}), 1))
	assert.True(t, math.IsNaN(p.Eval([]float64{0, 0})))
}

func TestVars(t *testing.T) {
	p, err := Compile("a + b * c", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, p.Vars())
}
