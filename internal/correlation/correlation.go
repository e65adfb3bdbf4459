// Package correlation computes pairwise correlation matrices over one or
// many datasets and extracts high-correlation pairs.
package correlation

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/quantify-ai/quantify-go/internal/numeric"
	"github.com/quantify-ai/quantify-go/internal/validation"
)

// Correlation methods accepted in requests.
const (
	MethodPearson  = "pearson"
	MethodSpearman = "spearman"
	MethodKendall  = "kendall"
)

const (
	TypeStrongPositive = "strong positive"
	TypeStrongNegative = "strong negative"
)

// Field is one column participating in a correlation, with its missing mask.
// Fields from different datasets may have different lengths; shorter fields
// are treated as missing beyond their end.
type Field struct {
	Name    string
	Values  []float64
	Present []bool
}

// Pair is a field pair whose absolute correlation exceeded a threshold.
type Pair struct {
	Field1      string  `json:"field1"`
	Field2      string  `json:"field2"`
	Correlation float64 `json:"correlation"`
	Type        string  `json:"type"`
}

// Matrix builds the correlation matrix for the given fields. Rows missing in
// every field are dropped first; at least 3 rows must remain. Each pair is
// computed over its pairwise-complete observations. The result is symmetric
// with a unit diagonal; undefined entries (fewer than 2 complete pairs or
// zero variance) coerce to 0.
func Matrix(fields []Field, method string) ([][]float64, int, error) {
	if len(fields) < 2 {
		return nil, 0, validation.Errorf("at least 2 fields are required, got %d", len(fields))
	}
	if method != MethodPearson && method != MethodSpearman && method != MethodKendall {
		return nil, 0, validation.Errorf("unsupported correlation method: %s (use pearson, spearman or kendall)", method)
	}

	values, present := alignFields(fields)
	values, present, n := dropAllMissing(values, present)
	if n < 3 {
		return nil, 0, validation.Errorf("at least 3 valid rows are required, got %d", n)
	}

	k := len(fields)
	matrix := make([][]float64, k)
	for i := range matrix {
		matrix[i] = make([]float64, k)
		matrix[i][i] = 1
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			x, y := completePairs(values[i], values[j], present[i], present[j])
			r := correlate(x, y, method)
			if math.IsNaN(r) || math.IsInf(r, 0) {
				r = 0
			}
			matrix[i][j] = numeric.Round(r, 4)
			matrix[j][i] = matrix[i][j]
		}
	}
	return matrix, n, nil
}

// HighPairs scans the upper triangle for pairs whose absolute correlation
// exceeds threshold and tags them by sign. Pairs come back in scan order;
// callers wanting the strongest first use SortByStrength. totalPairs reports
// how many pairs were considered.
func HighPairs(names []string, matrix [][]float64, threshold float64) (pairs []Pair, totalPairs int) {
	k := len(names)
	totalPairs = k * (k - 1) / 2
	pairs = []Pair{}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			r := matrix[i][j]
			if math.Abs(r) <= threshold {
				continue
			}
			tag := TypeStrongPositive
			if r < 0 {
				tag = TypeStrongNegative
			}
			pairs = append(pairs, Pair{
				Field1:      names[i],
				Field2:      names[j],
				Correlation: r,
				Type:        tag,
			})
		}
	}
	return pairs, totalPairs
}

// SortByStrength orders pairs by absolute correlation descending, ties
// keeping scan order.
func SortByStrength(pairs []Pair) {
	sort.SliceStable(pairs, func(a, b int) bool {
		return math.Abs(pairs[a].Correlation) > math.Abs(pairs[b].Correlation)
	})
}

// alignFields pads all fields to a common row count.
func alignFields(fields []Field) (values [][]float64, present [][]bool) {
	maxLen := 0
	for _, f := range fields {
		if len(f.Values) > maxLen {
			maxLen = len(f.Values)
		}
	}
	values = make([][]float64, len(fields))
	present = make([][]bool, len(fields))
	for i, f := range fields {
		v := make([]float64, maxLen)
		p := make([]bool, maxLen)
		copy(v, f.Values)
		copy(p, f.Present)
		for r := len(f.Values); r < maxLen; r++ {
			v[r] = math.NaN()
		}
		values[i] = v
		present[i] = p
	}
	return values, present
}

// dropAllMissing removes rows that are missing in every field.
func dropAllMissing(values [][]float64, present [][]bool) ([][]float64, [][]bool, int) {
	if len(values) == 0 {
		return values, present, 0
	}
	rows := len(values[0])
	outV := make([][]float64, len(values))
	outP := make([][]bool, len(values))
	for i := range values {
		outV[i] = make([]float64, 0, rows)
		outP[i] = make([]bool, 0, rows)
	}
	kept := 0
	for r := 0; r < rows; r++ {
		any := false
		for i := range present {
			if present[i][r] {
				any = true
				break
			}
		}
		if !any {
			continue
		}
		for i := range values {
			outV[i] = append(outV[i], values[i][r])
			outP[i] = append(outP[i], present[i][r])
		}
		kept++
	}
	return outV, outP, kept
}

func completePairs(xs, ys []float64, px, py []bool) (x, y []float64) {
	for r := range xs {
		if px[r] && py[r] {
			x = append(x, xs[r])
			y = append(y, ys[r])
		}
	}
	return x, y
}

func correlate(x, y []float64, method string) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	switch method {
	case MethodSpearman:
		return pearson(rank(x), rank(y))
	case MethodKendall:
		return stat.Kendall(x, y, nil)
	default:
		return pearson(x, y)
	}
}

func pearson(x, y []float64) float64 {
	r, err := stats.Pearson(x, y)
	if err != nil {
		return math.NaN()
	}
	return r
}

// rank assigns average ranks, ties sharing the mean of their positions.
func rank(data []float64) []float64 {
	n := len(data)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return data[idx[a]] < data[idx[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && data[idx[j+1]] == data[idx[i]] {
			j++
		}
		avg := (float64(i) + float64(j)) / 2
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg + 1
		}
		i = j + 1
	}
	return ranks
}
