package query

import (
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/errors"
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/format"
)

// CompareOp is a comparison operator for filters.
type CompareOp int

const (
	OpEQ CompareOp = iota
	OpNE
	OpLT
	OpLE
	OpGT
	OpGE
)

// String returns the CLI spelling of the operator.
func (op CompareOp) String() string {
	switch op {
	case OpEQ:
		return "eq"
	case OpNE:
		return "ne"
	case OpLT:
		return "lt"
	case OpLE:
		return "le"
	case OpGT:
		return "gt"
	case OpGE:
		return "ge"
	default:
		return "unknown"
	}
}

// ParseCompareOp parses the CLI spelling of an operator.
func ParseCompareOp(s string) (CompareOp, error) {
	switch s {
	case "eq":
		return OpEQ, nil
	case "ne":
		return OpNE, nil
	case "lt":
		return OpLT, nil
	case "le":
		return OpLE, nil
	case "gt":
		return OpGT, nil
	case "ge":
		return OpGE, nil
	default:
		return 0, errors.Newf(errors.ErrorTypeQuery, "invalid comparison operator %q", s)
	}
}

// Predicate filters integer columns against a constant.
type Predicate struct {
	Column string
	Op     CompareOp
	Value  int64
}

// Match evaluates the predicate against one value.
func (p Predicate) Match(v int64) bool {
	switch p.Op {
	case OpEQ:
		return v == p.Value
	case OpNE:
		return v != p.Value
	case OpLT:
		return v < p.Value
	case OpLE:
		return v <= p.Value
	case OpGT:
		return v > p.Value
	case OpGE:
		return v >= p.Value
	default:
		return false
	}
}

// CanSkipPage reports whether page statistics prove that no value in the
// page can satisfy the predicate. It is pure so both the scanner and
// planner-style callers can invoke it. Pages without min/max (string
// pages) are never skipped.
func CanSkipPage(p Predicate, stats format.PageStats) bool {
	if !stats.HasMin || !stats.HasMax {
		return false
	}
	switch p.Op {
	case OpGT:
		return stats.Max <= p.Value
	case OpGE:
		return stats.Max < p.Value
	case OpLT:
		return stats.Min >= p.Value
	case OpLE:
		return stats.Min > p.Value
	case OpEQ:
		return p.Value < stats.Min || p.Value > stats.Max
	case OpNE:
		return stats.Min == p.Value && stats.Max == p.Value
	default:
		return false
	}
}
