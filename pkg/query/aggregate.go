package query

import (
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/errors"
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/format"
)

// AggFunc is a scalar aggregation function.
type AggFunc int

const (
	AggCount AggFunc = iota
	AggSum
	AggMin
	AggMax
)

// String returns the CLI spelling of the function.
func (f AggFunc) String() string {
	switch f {
	case AggCount:
		return "count"
	case AggSum:
		return "sum"
	case AggMin:
		return "min"
	case AggMax:
		return "max"
	default:
		return "unknown"
	}
}

// ParseAggFunc parses the CLI spelling of an aggregation function.
func ParseAggFunc(s string) (AggFunc, error) {
	switch s {
	case "count":
		return AggCount, nil
	case "sum":
		return AggSum, nil
	case "min":
		return AggMin, nil
	case "max":
		return AggMax, nil
	default:
		return 0, errors.Newf(errors.ErrorTypeQuery, "invalid aggregation function %q", s)
	}
}

// AggResult accumulates COUNT, SUM, MIN and MAX over int64 values.
type AggResult struct {
	Count  int64
	Sum    int64
	HasMin bool
	Min    int64
	HasMax bool
	Max    int64
}

// addChecked adds b into *a, failing on int64 overflow instead of wrapping
// silently.
func addChecked(a *int64, b int64) error {
	sum := *a + b
	if (b > 0 && sum < *a) || (b < 0 && sum > *a) {
		return errors.New(errors.ErrorTypeOverflow, "sum accumulator overflow")
	}
	*a = sum
	return nil
}

// fold accumulates one batch into the result. For COUNT no column data is
// touched; for the other functions colIdx must point at an integer column
// of the batch.
func (r *AggResult) fold(fn AggFunc, batch *Batch, colIdx int) error {
	r.Count += int64(batch.NumRows)
	if fn == AggCount {
		return nil
	}

	col := &batch.Columns[colIdx]
	if !col.Type.IsInteger() {
		return errors.New(errors.ErrorTypeQuery, "aggregation over non-integer column")
	}

	for row := 0; row < batch.NumRows; row++ {
		v := col.Int64At(row)
		switch fn {
		case AggSum:
			if err := addChecked(&r.Sum, v); err != nil {
				return err
			}
		case AggMin:
			if !r.HasMin || v < r.Min {
				r.HasMin = true
				r.Min = v
			}
		case AggMax:
			if !r.HasMax || v > r.Max {
				r.HasMax = true
				r.Max = v
			}
		}
	}
	return nil
}

// aggregation pairs a function with its target column.
type aggregation struct {
	fn     AggFunc
	column string
}

// checkAggregation enforces the strict typing rule: SUM, MIN and MAX are
// only defined over integer columns, and the column must exist. COUNT
// accepts any existing column or the empty string (count rows).
func checkAggregation(schema *format.Schema, fn AggFunc, column string) error {
	if fn == AggCount && column == "" {
		return nil
	}
	idx, ok := schema.ColumnIndex(column)
	if !ok {
		return errors.Newf(errors.ErrorTypeQuery, "unknown aggregation column %q", column)
	}
	if fn != AggCount && !schema.Columns[idx].Type.IsInteger() {
		return errors.Newf(errors.ErrorTypeQuery,
			"%s over STRING column %q is not supported", fn, column)
	}
	return nil
}
