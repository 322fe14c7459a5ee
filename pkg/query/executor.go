package query

import (
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/errors"
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/format"
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/logger"
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/metrics"
)

// GroupResult is one group's key and aggregate.
type GroupResult struct {
	Key string
	Agg AggResult
}

// Executor assembles projection, filters, aggregation and group-by into
// one of three execution shapes over a borrowed reader.
type Executor struct {
	reader     *format.Reader
	projection []string
	filters    []Predicate
	agg        *aggregation
	groupBy    string
	batchSize  int
	log        *zap.Logger
}

// NewExecutor creates an executor over the reader. The default projection
// is every column.
func NewExecutor(reader *format.Reader) *Executor {
	return &Executor{
		reader:    reader,
		batchSize: DefaultBatchSize,
		log:       logger.Get(),
	}
}

// SetBatchSize overrides the advisory batch size of underlying scans.
func (e *Executor) SetBatchSize(n int) {
	if n > 0 {
		e.batchSize = n
	}
}

// SetProjection replaces the selected column list. An empty list restores
// the all-columns default.
func (e *Executor) SetProjection(columns []string) {
	e.projection = columns
}

// AddFilter appends a conjunctive predicate.
func (e *Executor) AddFilter(pred Predicate) {
	e.filters = append(e.filters, pred)
}

// SetAggregation configures the aggregate shape. SUM, MIN and MAX over
// STRING columns are rejected here, before any I/O.
func (e *Executor) SetAggregation(fn AggFunc, column string) error {
	if err := checkAggregation(e.reader.Schema(), fn, column); err != nil {
		return err
	}
	e.agg = &aggregation{fn: fn, column: column}
	return nil
}

// SetGroupBy configures the group-by shape.
func (e *Executor) SetGroupBy(column string) error {
	if !e.reader.Schema().HasColumn(column) {
		return errors.Newf(errors.ErrorTypeQuery, "unknown group-by column %q", column)
	}
	e.groupBy = column
	return nil
}

// newScanner builds a scanner over the given columns with the executor's
// filters attached.
func (e *Executor) newScanner(columns []string) (*Scanner, error) {
	scanner, err := NewScanner(e.reader, columns, WithBatchSize(e.batchSize))
	if err != nil {
		return nil, err
	}
	for _, pred := range e.filters {
		scanner.AddFilter(pred)
	}
	return scanner, nil
}

// neededColumns returns the minimal column set for an aggregate scan:
// every filtered column plus extras. Empty means no pruning is possible
// and the scan selects all columns.
func (e *Executor) neededColumns(extras ...string) []string {
	seen := make(map[string]struct{})
	var columns []string
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		columns = append(columns, name)
	}
	for _, extra := range extras {
		add(extra)
	}
	for _, pred := range e.filters {
		add(pred.Column)
	}
	return columns
}

// ExecuteQuery runs the plain scan shape and returns the surviving
// batches with the projection applied.
func (e *Executor) ExecuteQuery() ([]*Batch, error) {
	start := time.Now()
	scanner, err := e.newScanner(e.projection)
	if err != nil {
		return nil, err
	}

	var batches []*Batch
	for scanner.HasNext() {
		batch, err := scanner.Next()
		if err != nil {
			return nil, err
		}
		if batch.NumRows > 0 {
			batches = append(batches, batch)
		}
	}

	metrics.ScanDuration.WithLabelValues("query").Observe(time.Since(start).Seconds())
	e.log.Debug("query executed",
		zap.Int("batches", len(batches)),
		zap.Duration("elapsed", time.Since(start)))
	return batches, nil
}

// ExecuteAggregate runs the scalar aggregation shape.
func (e *Executor) ExecuteAggregate() (AggResult, error) {
	var result AggResult
	if e.agg == nil {
		return result, errors.New(errors.ErrorTypeQuery, "no aggregation configured")
	}

	start := time.Now()
	scanner, err := e.newScanner(e.neededColumns(e.agg.column))
	if err != nil {
		return result, err
	}

	for scanner.HasNext() {
		batch, err := scanner.Next()
		if err != nil {
			return result, err
		}
		colIdx := -1
		if e.agg.fn != AggCount {
			colIdx = batch.ColumnIndex(e.agg.column)
		}
		if err := result.fold(e.agg.fn, batch, colIdx); err != nil {
			return result, err
		}
	}

	metrics.ScanDuration.WithLabelValues("aggregate").Observe(time.Since(start).Seconds())
	return result, nil
}

// ExecuteGroupBy runs the group-by shape: a hash map from group key to
// aggregate, keyed by the group column's value (integer keys are rendered
// base-10). Result order is unspecified.
func (e *Executor) ExecuteGroupBy() ([]GroupResult, error) {
	if e.groupBy == "" {
		return nil, errors.New(errors.ErrorTypeQuery, "no group-by column configured")
	}
	if e.agg == nil {
		return nil, errors.New(errors.ErrorTypeQuery, "no aggregation configured")
	}

	start := time.Now()
	scanner, err := e.newScanner(e.neededColumns(e.groupBy, e.agg.column))
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*AggResult)
	for scanner.HasNext() {
		batch, err := scanner.Next()
		if err != nil {
			return nil, err
		}
		if batch.NumRows == 0 {
			continue
		}

		keyIdx := batch.ColumnIndex(e.groupBy)
		if keyIdx < 0 {
			return nil, errors.Newf(errors.ErrorTypeQuery, "group-by column %q not in batch", e.groupBy)
		}
		keyCol := &batch.Columns[keyIdx]

		aggIdx := -1
		if e.agg.fn != AggCount {
			aggIdx = batch.ColumnIndex(e.agg.column)
		}

		for row := 0; row < batch.NumRows; row++ {
			var key string
			if keyCol.Type == format.TypeString {
				key = keyCol.Strings[row]
			} else {
				key = strconv.FormatInt(keyCol.Int64At(row), 10)
			}

			res, ok := groups[key]
			if !ok {
				res = &AggResult{}
				groups[key] = res
			}
			res.Count++
			if e.agg.fn == AggCount {
				continue
			}

			v := batch.Columns[aggIdx].Int64At(row)
			switch e.agg.fn {
			case AggSum:
				if err := addChecked(&res.Sum, v); err != nil {
					return nil, err
				}
			case AggMin:
				if !res.HasMin || v < res.Min {
					res.HasMin = true
					res.Min = v
				}
			case AggMax:
				if !res.HasMax || v > res.Max {
					res.HasMax = true
					res.Max = v
				}
			}
		}
	}

	results := make([]GroupResult, 0, len(groups))
	for key, res := range groups {
		results = append(results, GroupResult{Key: key, Agg: *res})
	}

	metrics.ScanDuration.WithLabelValues("groupby").Observe(time.Since(start).Seconds())
	e.log.Debug("group-by executed",
		zap.Int("groups", len(results)),
		zap.Duration("elapsed", time.Since(start)))
	return results, nil
}
