package dataset

import (
	"fmt"
	"strings"

	"github.com/quantify-ai/quantify-go/internal/validation"
)

// Aggregate types supported by Combine.
const (
	AggregateUnionAll = "union_all"
	AggregateUnion    = "union"
	AggregateJoin     = "join"
	AggregateLeftJoin = "left_join"
)

// Combine merges two or more datasets into a new in-memory dataset. Join
// variants merge pairwise left to right on the columns the operands share.
func Combine(datasets []*Dataset, aggregateType string) (*Dataset, error) {
	if len(datasets) < 2 {
		return nil, validation.Errorf("at least 2 datasets are required, got %d", len(datasets))
	}

	switch aggregateType {
	case AggregateUnionAll:
		return unionAll(datasets, false), nil
	case AggregateUnion:
		return unionAll(datasets, true), nil
	case AggregateJoin, AggregateLeftJoin:
		result := datasets[0]
		for i := 1; i < len(datasets); i++ {
			joined, err := join(result, datasets[i], aggregateType == AggregateLeftJoin)
			if err != nil {
				return nil, err
			}
			result = joined
		}
		return result, nil
	default:
		return nil, validation.Errorf("unsupported aggregate type: %s", aggregateType)
	}
}

func unionAll(datasets []*Dataset, dedupe bool) *Dataset {
	out := &Dataset{Name: "aggregated"}
	seenField := make(map[string]bool)
	for _, ds := range datasets {
		for _, f := range ds.Fields {
			if !seenField[f] {
				seenField[f] = true
				out.Fields = append(out.Fields, f)
			}
		}
	}

	seenRow := make(map[string]bool)
	for _, ds := range datasets {
		for _, row := range ds.Rows {
			if dedupe {
				key := rowKey(row, out.Fields)
				if seenRow[key] {
					continue
				}
				seenRow[key] = true
			}
			out.Rows = append(out.Rows, copyRow(row))
		}
	}
	return out
}

func join(left, right *Dataset, leftJoin bool) (*Dataset, error) {
	common := commonFields(left, right)
	if len(common) == 0 {
		return nil, validation.Errorf("datasets '%s' and '%s' share no columns to join on", left.Name, right.Name)
	}

	out := &Dataset{Name: "aggregated", Fields: append([]string(nil), left.Fields...)}
	for _, f := range right.Fields {
		if !out.HasField(f) {
			out.Fields = append(out.Fields, f)
		}
	}

	index := make(map[string][]map[string]any)
	for _, row := range right.Rows {
		key := rowKey(row, common)
		index[key] = append(index[key], row)
	}

	for _, lrow := range left.Rows {
		key := rowKey(lrow, common)
		matches := index[key]
		if len(matches) == 0 {
			if leftJoin {
				out.Rows = append(out.Rows, copyRow(lrow))
			}
			continue
		}
		for _, rrow := range matches {
			merged := copyRow(lrow)
			for k, v := range rrow {
				if _, exists := merged[k]; !exists {
					merged[k] = v
				}
			}
			out.Rows = append(out.Rows, merged)
		}
	}
	return out, nil
}

func commonFields(a, b *Dataset) []string {
	var common []string
	for _, f := range a.Fields {
		if b.HasField(f) {
			common = append(common, f)
		}
	}
	return common
}

func rowKey(row map[string]any, fields []string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%v", row[f])
	}
	return strings.Join(parts, "\x1f")
}

func copyRow(row map[string]any) map[string]any {
	dup := make(map[string]any, len(row))
	for k, v := range row {
		dup[k] = v
	}
	return dup
}
