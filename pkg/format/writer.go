package format

import (
	"encoding/binary"
	"os"

	"go.uber.org/zap"

	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/encoding"
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/errors"
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/logger"
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/metrics"
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/pool"
)

// DefaultMaxRowGroupRows caps how many rows a row group buffers before the
// writer flushes it on its own.
const DefaultMaxRowGroupRows = 10000

// columnBuffer holds the pending values of one column for the current row
// group. Exactly one slice is used, dictated by the schema type.
type columnBuffer struct {
	int32s  []int32
	int64s  []int64
	strings []string
}

func (b *columnBuffer) clear() {
	b.int32s = b.int32s[:0]
	b.int64s = b.int64s[:0]
	b.strings = b.strings[:0]
}

// Writer produces a .col file. It owns its output handle from construction
// until Close and buffers the current row group in memory, flushing on
// request, when the row cap is reached, or at Close.
type Writer struct {
	file            *os.File
	schema          *Schema
	log             *zap.Logger
	offset          uint64
	buffers         []columnBuffer
	rowGroups       []RowGroupMeta
	totalRows       uint32
	maxRowGroupRows int
	closed          bool
}

// WriterOption customizes a Writer.
type WriterOption func(*Writer)

// WithWriterLogger sets the writer's logger.
func WithWriterLogger(log *zap.Logger) WriterOption {
	return func(w *Writer) { w.log = log }
}

// WithMaxRowGroupRows overrides the automatic flush threshold.
func WithMaxRowGroupRows(n int) WriterOption {
	return func(w *Writer) { w.maxRowGroupRows = n }
}

// NewWriter creates the file at path and writes the format header.
func NewWriter(path string, schema *Schema, opts ...WriterOption) (*Writer, error) {
	if schema == nil || len(schema.Columns) == 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "schema must have at least one column")
	}

	file, err := os.Create(path) //nolint:gosec // G304: output path is caller-controlled
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to create file")
	}

	w := &Writer{
		file:            file,
		schema:          schema,
		log:             logger.Get(),
		buffers:         make([]columnBuffer, len(schema.Columns)),
		maxRowGroupRows: DefaultMaxRowGroupRows,
	}
	for _, opt := range opts {
		opt(w)
	}

	header := make([]byte, 0, headerSize)
	header = binary.LittleEndian.AppendUint32(header, FileMagic)
	header = binary.LittleEndian.AppendUint16(header, VersionMajor)
	header = binary.LittleEndian.AppendUint16(header, VersionMinor)
	if err := w.writeAll(header); err != nil {
		file.Close()
		return nil, err
	}

	w.log.Debug("writer opened",
		zap.String("path", path),
		zap.Int("columns", len(schema.Columns)))
	return w, nil
}

func (w *Writer) writeAll(data []byte) error {
	n, err := w.file.Write(data)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "write failed")
	}
	w.offset += uint64(n)
	return nil
}

func (w *Writer) checkColumn(colIdx int, want ColumnType) error {
	if w.closed {
		return errors.New(errors.ErrorTypeValidation, "writer is closed")
	}
	if colIdx < 0 || colIdx >= len(w.schema.Columns) {
		return errors.Newf(errors.ErrorTypeSchema, "column index %d out of range", colIdx)
	}
	if got := w.schema.Columns[colIdx].Type; got != want {
		return errors.Newf(errors.ErrorTypeSchema,
			"column %q has type %s, not %s", w.schema.Columns[colIdx].Name, got, want)
	}
	return nil
}

// WriteInt32Column appends values to the buffer of an INT32 column.
func (w *Writer) WriteInt32Column(colIdx int, values []int32) error {
	if err := w.checkColumn(colIdx, TypeInt32); err != nil {
		return err
	}
	w.buffers[colIdx].int32s = append(w.buffers[colIdx].int32s, values...)
	metrics.RowsWritten.WithLabelValues("int32").Add(float64(len(values)))
	return w.maybeAutoFlush()
}

// WriteInt64Column appends values to the buffer of an INT64 column.
func (w *Writer) WriteInt64Column(colIdx int, values []int64) error {
	if err := w.checkColumn(colIdx, TypeInt64); err != nil {
		return err
	}
	w.buffers[colIdx].int64s = append(w.buffers[colIdx].int64s, values...)
	metrics.RowsWritten.WithLabelValues("int64").Add(float64(len(values)))
	return w.maybeAutoFlush()
}

// WriteStringColumn appends values to the buffer of a STRING column.
func (w *Writer) WriteStringColumn(colIdx int, values []string) error {
	if err := w.checkColumn(colIdx, TypeString); err != nil {
		return err
	}
	w.buffers[colIdx].strings = append(w.buffers[colIdx].strings, values...)
	metrics.RowsWritten.WithLabelValues("string").Add(float64(len(values)))
	return w.maybeAutoFlush()
}

func (w *Writer) bufferLen(colIdx int) int {
	switch w.schema.Columns[colIdx].Type {
	case TypeInt32:
		return len(w.buffers[colIdx].int32s)
	case TypeInt64:
		return len(w.buffers[colIdx].int64s)
	default:
		return len(w.buffers[colIdx].strings)
	}
}

// maybeAutoFlush flushes once every column buffer is level at or beyond the
// row cap. Ragged buffers mid-append are left alone until they line up.
func (w *Writer) maybeAutoFlush() error {
	rows := w.bufferLen(0)
	if rows < w.maxRowGroupRows {
		return nil
	}
	for i := 1; i < len(w.buffers); i++ {
		if w.bufferLen(i) != rows {
			return nil
		}
	}
	return w.FlushRowGroup()
}

// encodePage encodes one column buffer as a single page, returning the
// header and payload. The payload is appended to dst.
func (w *Writer) encodePage(colIdx int, dst []byte) (PageHeader, []byte, error) {
	col := w.schema.Columns[colIdx]
	buf := &w.buffers[colIdx]

	var header PageHeader
	header.Encoding = col.Encoding
	start := len(dst)

	switch col.Type {
	case TypeInt32:
		values := buf.int32s
		header.NumValues = uint32(len(values))
		header.UncompressedSize = uint32(len(values) * 4)
		header.Stats = statsInt32(values)
		switch col.Encoding {
		case EncodingPlain:
			dst = encoding.EncodePlainInt32(dst, values)
		case EncodingRLE:
			header.Stats.DistinctCount = encoding.RLERunCount32(values)
			dst = encoding.EncodeRLEInt32(dst, values)
		case EncodingDelta:
			dst = encoding.EncodeDeltaInt32(dst, values)
		}

	case TypeInt64:
		values := buf.int64s
		header.NumValues = uint32(len(values))
		header.UncompressedSize = uint32(len(values) * 8)
		header.Stats = statsInt64(values)
		switch col.Encoding {
		case EncodingPlain:
			dst = encoding.EncodePlainInt64(dst, values)
		case EncodingRLE:
			header.Stats.DistinctCount = encoding.RLERunCount64(values)
			dst = encoding.EncodeRLEInt64(dst, values)
		case EncodingDelta:
			dst = encoding.EncodeDeltaInt64(dst, values)
		}

	case TypeString:
		values := buf.strings
		header.NumValues = uint32(len(values))
		raw := 0
		for _, s := range values {
			raw += 4 + len(s)
		}
		header.UncompressedSize = uint32(raw)
		switch col.Encoding {
		case EncodingPlain:
			dst = encoding.EncodePlainString(dst, values)
		case EncodingDictionary:
			header.Stats.DistinctCount = encoding.DictionarySize(values)
			dst = encoding.EncodeDictionary(dst, values)
		}
	}

	header.CompressedSize = uint32(len(dst) - start)
	return header, dst, nil
}

// FlushRowGroup materializes the buffered rows as one row group, one page
// per column. Flushing with empty buffers is a no-op; ragged buffers are a
// schema violation.
func (w *Writer) FlushRowGroup() error {
	if w.closed {
		return errors.New(errors.ErrorTypeValidation, "writer is closed")
	}

	rows := w.bufferLen(0)
	empty := rows == 0
	for i := 1; i < len(w.buffers); i++ {
		if w.bufferLen(i) != rows {
			return errors.Newf(errors.ErrorTypeSchema,
				"column %q has %d buffered rows, column %q has %d",
				w.schema.Columns[i].Name, w.bufferLen(i), w.schema.Columns[0].Name, rows)
		}
		if w.bufferLen(i) != 0 {
			empty = false
		}
	}
	if empty {
		return nil
	}

	rg := RowGroupMeta{NumRows: uint32(rows)}
	page := pool.GetBuffer()
	defer pool.PutBuffer(page)

	for colIdx := range w.schema.Columns {
		page.B = page.B[:0]
		header, payload, err := w.encodePage(colIdx, page.B)
		if err != nil {
			return err
		}
		page.B = payload

		headerBytes := appendPageHeader(make([]byte, 0, pageHeaderSize), header)
		chunk := ColumnChunkMeta{
			FileOffset: w.offset,
			TotalSize:  uint64(len(headerBytes) + len(page.B)),
			Pages:      []PageHeader{header},
		}
		if err := w.writeAll(headerBytes); err != nil {
			return err
		}
		if err := w.writeAll(page.B); err != nil {
			return err
		}
		rg.Chunks = append(rg.Chunks, chunk)
	}

	for i := range w.buffers {
		w.buffers[i].clear()
	}
	w.rowGroups = append(w.rowGroups, rg)
	w.totalRows += uint32(rows)
	metrics.RowGroupsFlushed.Inc()

	w.log.Debug("row group flushed",
		zap.Int("rows", rows),
		zap.Int("row_groups", len(w.rowGroups)))
	return nil
}

// Close flushes any buffered rows, writes the metadata block and footer,
// and releases the file handle. Closing twice is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	if err := w.FlushRowGroup(); err != nil {
		return err
	}
	w.closed = true

	meta := &FileMetadata{
		Schema:    w.schema,
		RowGroups: w.rowGroups,
		TotalRows: w.totalRows,
	}
	metadataOffset := w.offset
	if err := w.writeAll(appendMetadata(nil, meta)); err != nil {
		return err
	}

	footer := make([]byte, 0, footerSize)
	footer = binary.LittleEndian.AppendUint32(footer, FooterMagic)
	footer = binary.LittleEndian.AppendUint64(footer, metadataOffset)
	if err := w.writeAll(footer); err != nil {
		return err
	}

	if err := w.file.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "close failed")
	}

	w.log.Info("file finalized",
		zap.Uint32("total_rows", w.totalRows),
		zap.Int("row_groups", len(w.rowGroups)),
		zap.Uint64("metadata_offset", metadataOffset))
	return nil
}
