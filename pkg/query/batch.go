// Package query implements the vectorized execution engine: the Batch
// record carrier, predicates with page-skip pushdown, the Scanner, and the
// aggregation/group-by executor facade.
package query

import (
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/format"
)

// ColumnData is a tagged variant over the three element kinds. Exactly one
// of the slices is populated, selected by Type; consumers dispatch on the
// tag before access.
type ColumnData struct {
	Type    format.ColumnType
	Int32s  []int32
	Int64s  []int64
	Strings []string
}

// Len returns the number of values in the populated slice.
func (c *ColumnData) Len() int {
	switch c.Type {
	case format.TypeInt32:
		return len(c.Int32s)
	case format.TypeInt64:
		return len(c.Int64s)
	default:
		return len(c.Strings)
	}
}

// Int64At returns the value at row i widened to int64. It must only be
// called on integer columns.
func (c *ColumnData) Int64At(i int) int64 {
	if c.Type == format.TypeInt32 {
		return int64(c.Int32s[i])
	}
	return c.Int64s[i]
}

// Batch is a vectorized slice of rows: parallel columns, their names, and
// a shared row count. Batches own their data by value; once yielded they
// are not referenced by the producer again.
type Batch struct {
	Columns []ColumnData
	Names   []string
	NumRows int
}

// ColumnIndex resolves a column name to its position, or -1 if absent.
func (b *Batch) ColumnIndex(name string) int {
	for i, n := range b.Names {
		if n == name {
			return i
		}
	}
	return -1
}
