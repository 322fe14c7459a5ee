package query

import (
	"go.uber.org/zap"

	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/errors"
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/format"
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/logger"
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/metrics"
)

// DefaultBatchSize is the advisory row count per yielded batch.
const DefaultBatchSize = 4096

// Scanner streams batches out of a reader, one row group at a time. It
// borrows the reader for its lifetime and keeps its own cursor, so several
// scanners may share one reader. Scans are single-pass; to re-scan,
// construct a new scanner.
type Scanner struct {
	reader    *format.Reader
	columns   []string
	colIdxs   []int
	filters   []Predicate
	batchSize int
	rowGroup  int
	pending   []*Batch
	log       *zap.Logger
}

// ScannerOption customizes a Scanner.
type ScannerOption func(*Scanner)

// WithBatchSize overrides the advisory batch size.
func WithBatchSize(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithScannerLogger sets the scanner's logger.
func WithScannerLogger(log *zap.Logger) ScannerOption {
	return func(s *Scanner) { s.log = log }
}

// NewScanner creates a scanner over the reader. An empty column list
// selects every schema column, in schema order.
func NewScanner(reader *format.Reader, columns []string, opts ...ScannerOption) (*Scanner, error) {
	schema := reader.Schema()
	if len(columns) == 0 {
		columns = make([]string, 0, len(schema.Columns))
		for _, col := range schema.Columns {
			columns = append(columns, col.Name)
		}
	}

	colIdxs := make([]int, 0, len(columns))
	for _, name := range columns {
		idx, ok := schema.ColumnIndex(name)
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeSchema, "unknown column %q", name)
		}
		colIdxs = append(colIdxs, idx)
	}

	s := &Scanner{
		reader:    reader,
		columns:   columns,
		colIdxs:   colIdxs,
		batchSize: DefaultBatchSize,
		log:       logger.Get(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AddFilter appends a predicate. Filters are AND-folded in the order they
// were added; a filter on a column outside the selected set is ignored.
func (s *Scanner) AddFilter(pred Predicate) {
	s.filters = append(s.filters, pred)
}

// HasNext reports whether another batch can be produced.
func (s *Scanner) HasNext() bool {
	return len(s.pending) > 0 || s.rowGroup < len(s.reader.Metadata().RowGroups)
}

// canSkipRowGroup consults the first page's statistics of every filtered
// column; sound overapproximation means a skip can never drop a matching
// row.
func (s *Scanner) canSkipRowGroup(rowGroup int) bool {
	rg := &s.reader.Metadata().RowGroups[rowGroup]
	for _, pred := range s.filters {
		idx := s.selectedSchemaIndex(pred.Column)
		if idx < 0 {
			continue
		}
		pages := rg.Chunks[idx].Pages
		if len(pages) > 0 && CanSkipPage(pred, pages[0].Stats) {
			return true
		}
	}
	return false
}

// selectedSchemaIndex returns the schema index of name if it is among the
// selected columns, else -1.
func (s *Scanner) selectedSchemaIndex(name string) int {
	for i, col := range s.columns {
		if col == name {
			return s.colIdxs[i]
		}
	}
	return -1
}

// emptyBatch returns a zero-row batch carrying the selected column layout.
func (s *Scanner) emptyBatch() *Batch {
	schema := s.reader.Schema()
	batch := &Batch{Names: append([]string(nil), s.columns...)}
	for _, idx := range s.colIdxs {
		batch.Columns = append(batch.Columns, ColumnData{Type: schema.Columns[idx].Type})
	}
	return batch
}

// readRowGroup decodes every selected column of one row group.
func (s *Scanner) readRowGroup(rowGroup int) (*Batch, error) {
	schema := s.reader.Schema()
	batch := &Batch{Names: append([]string(nil), s.columns...)}

	for _, idx := range s.colIdxs {
		col := ColumnData{Type: schema.Columns[idx].Type}
		var err error
		switch col.Type {
		case format.TypeInt32:
			col.Int32s, err = s.reader.ReadInt32Column(rowGroup, idx)
		case format.TypeInt64:
			col.Int64s, err = s.reader.ReadInt64Column(rowGroup, idx)
		case format.TypeString:
			col.Strings, err = s.reader.ReadStringColumn(rowGroup, idx)
		}
		if err != nil {
			return nil, err
		}
		batch.Columns = append(batch.Columns, col)
	}

	batch.NumRows = int(s.reader.Metadata().RowGroups[rowGroup].NumRows)
	return batch, nil
}

// applyFilters AND-folds the predicates into a surviving-rows mask.
func (s *Scanner) applyFilters(batch *Batch) ([]bool, error) {
	mask := make([]bool, batch.NumRows)
	for i := range mask {
		mask[i] = true
	}

	for _, pred := range s.filters {
		idx := batch.ColumnIndex(pred.Column)
		if idx < 0 {
			continue
		}
		col := &batch.Columns[idx]
		if !col.Type.IsInteger() {
			return nil, errors.Newf(errors.ErrorTypeQuery,
				"predicate on non-integer column %q", pred.Column)
		}
		for row := 0; row < batch.NumRows; row++ {
			if mask[row] && !pred.Match(col.Int64At(row)) {
				mask[row] = false
			}
		}
	}
	return mask, nil
}

// gather materializes the surviving rows into a fresh batch.
func gather(batch *Batch, mask []bool) *Batch {
	survivors := 0
	for _, keep := range mask {
		if keep {
			survivors++
		}
	}

	out := &Batch{Names: batch.Names, NumRows: survivors}
	for _, col := range batch.Columns {
		filtered := ColumnData{Type: col.Type}
		switch col.Type {
		case format.TypeInt32:
			filtered.Int32s = make([]int32, 0, survivors)
			for row, keep := range mask {
				if keep {
					filtered.Int32s = append(filtered.Int32s, col.Int32s[row])
				}
			}
		case format.TypeInt64:
			filtered.Int64s = make([]int64, 0, survivors)
			for row, keep := range mask {
				if keep {
					filtered.Int64s = append(filtered.Int64s, col.Int64s[row])
				}
			}
		case format.TypeString:
			filtered.Strings = make([]string, 0, survivors)
			for row, keep := range mask {
				if keep {
					filtered.Strings = append(filtered.Strings, col.Strings[row])
				}
			}
		}
		out.Columns = append(out.Columns, filtered)
	}
	return out
}

// slice cuts a batch into sub-batches of at most batchSize rows. The
// batch size is advisory; row order is preserved.
func (s *Scanner) slice(batch *Batch) []*Batch {
	if batch.NumRows <= s.batchSize {
		return []*Batch{batch}
	}

	var out []*Batch
	for start := 0; start < batch.NumRows; start += s.batchSize {
		end := start + s.batchSize
		if end > batch.NumRows {
			end = batch.NumRows
		}
		sub := &Batch{Names: batch.Names, NumRows: end - start}
		for _, col := range batch.Columns {
			part := ColumnData{Type: col.Type}
			switch col.Type {
			case format.TypeInt32:
				part.Int32s = append([]int32(nil), col.Int32s[start:end]...)
			case format.TypeInt64:
				part.Int64s = append([]int64(nil), col.Int64s[start:end]...)
			case format.TypeString:
				part.Strings = append([]string(nil), col.Strings[start:end]...)
			}
			sub.Columns = append(sub.Columns, part)
		}
		out = append(out, sub)
	}
	return out
}

// Next produces the next batch. Row groups that page statistics prove
// unsatisfiable are dropped without decoding; a decoded row group whose
// rows are all filtered out yields an empty batch.
func (s *Scanner) Next() (*Batch, error) {
	if len(s.pending) > 0 {
		batch := s.pending[0]
		s.pending = s.pending[1:]
		return batch, nil
	}

	numRowGroups := len(s.reader.Metadata().RowGroups)
	for s.rowGroup < numRowGroups {
		rowGroup := s.rowGroup
		s.rowGroup++

		if s.canSkipRowGroup(rowGroup) {
			metrics.PagesSkipped.Inc()
			s.log.Debug("row group skipped by page stats", zap.Int("row_group", rowGroup))
			continue
		}

		batch, err := s.readRowGroup(rowGroup)
		if err != nil {
			return nil, err
		}
		mask, err := s.applyFilters(batch)
		if err != nil {
			return nil, err
		}

		out := gather(batch, mask)
		metrics.RowsScanned.Add(float64(out.NumRows))
		if out.NumRows == 0 {
			metrics.BatchesProduced.Inc()
			return out, nil
		}

		batches := s.slice(out)
		metrics.BatchesProduced.Add(float64(len(batches)))
		s.pending = batches[1:]
		return batches[0], nil
	}

	// Every remaining row group was skipped.
	metrics.BatchesProduced.Inc()
	return s.emptyBatch(), nil
}
