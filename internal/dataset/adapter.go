package dataset

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/quantify-ai/quantify-go/internal/validation"
)

// Column coerces one column to numeric, row-aligned with the dataset. The
// returned mask marks which rows held a usable finite value; values at masked
// positions are NaN.
func Column(ds *Dataset, field string) ([]float64, []bool, error) {
	if !ds.HasField(field) {
		return nil, nil, validation.Errorf("field '%s' not found", field)
	}

	values := make([]float64, len(ds.Rows))
	present := make([]bool, len(ds.Rows))
	for i, row := range ds.Rows {
		v, ok := coerce(row[field])
		if ok && isFinite(v) {
			values[i] = v
			present[i] = true
		} else {
			values[i] = math.NaN()
		}
	}
	return values, present, nil
}

// NumericSeries extracts one column with the drop-missing policy: every cell
// that fails numeric coercion, plus any residual non-finite value, is removed.
func NumericSeries(ds *Dataset, field string) ([]float64, error) {
	values, present, err := Column(ds, field)
	if err != nil {
		return nil, err
	}
	series := make([]float64, 0, len(values))
	for i, v := range values {
		if present[i] {
			series = append(series, v)
		}
	}
	return series, nil
}

// AlignRows extracts the named columns under the row-wise-complete policy: a
// row survives only if every requested column is non-missing there. Column
// order in the result slices matches the fields argument.
func AlignRows(ds *Dataset, fields []string) ([][]float64, int, error) {
	cols := make([][]float64, len(fields))
	masks := make([][]bool, len(fields))
	for i, f := range fields {
		values, present, err := Column(ds, f)
		if err != nil {
			return nil, 0, err
		}
		cols[i] = values
		masks[i] = present
	}

	aligned := make([][]float64, len(fields))
	for i := range aligned {
		aligned[i] = make([]float64, 0, len(ds.Rows))
	}
	n := 0
	for r := 0; r < len(ds.Rows); r++ {
		complete := true
		for _, mask := range masks {
			if !mask[r] {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		for i := range fields {
			aligned[i] = append(aligned[i], cols[i][r])
		}
		n++
	}
	return aligned, n, nil
}

// coerce attempts to interpret a raw cell as a float64.
func coerce(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
