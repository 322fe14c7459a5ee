package format

import (
	"encoding/binary"
	"os"

	"go.uber.org/zap"

	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/encoding"
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/errors"
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/logger"
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/metrics"
)

// Reader validates and reads a finalized .col file. The metadata is parsed
// once at construction and kept resident; column chunks are decoded lazily
// on demand through ReadAt, so a constructed Reader is safe for concurrent
// column reads.
type Reader struct {
	file   *os.File
	size   int64
	meta   *FileMetadata
	log    *zap.Logger
	major  uint16
	minor  uint16
	closed bool
}

// NewReader opens and validates the file at path.
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path) //nolint:gosec // G304: input path is caller-controlled
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to open file")
	}

	r := &Reader{file: file, log: logger.Get()}
	if err := r.validate(); err != nil {
		file.Close()
		return nil, err
	}

	r.log.Debug("reader opened",
		zap.String("path", path),
		zap.Uint32("total_rows", r.meta.TotalRows),
		zap.Int("row_groups", len(r.meta.RowGroups)))
	return r, nil
}

func (r *Reader) validate() error {
	info, err := r.file.Stat()
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "stat failed")
	}
	r.size = info.Size()

	if r.size < minFileSize {
		return errors.Newf(errors.ErrorTypeTooSmall,
			"file too small: %d bytes, minimum %d", r.size, minFileSize)
	}

	header := make([]byte, headerSize)
	if _, err := r.file.ReadAt(header, 0); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "failed to read header")
	}
	if binary.LittleEndian.Uint32(header) != FileMagic {
		return errors.New(errors.ErrorTypeBadMagic, "invalid file magic")
	}
	r.major = binary.LittleEndian.Uint16(header[4:])
	r.minor = binary.LittleEndian.Uint16(header[6:])

	footer := make([]byte, footerSize)
	if _, err := r.file.ReadAt(footer, r.size-footerSize); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "failed to read footer")
	}
	if binary.LittleEndian.Uint32(footer) != FooterMagic {
		return errors.New(errors.ErrorTypeBadMagic, "invalid footer magic")
	}

	metadataOffset := binary.LittleEndian.Uint64(footer[4:])
	if metadataOffset < headerSize || metadataOffset >= uint64(r.size-footerSize) {
		return errors.Newf(errors.ErrorTypeBadOffset,
			"metadata offset %d beyond end of file (size %d)", metadataOffset, r.size)
	}

	metaBytes := make([]byte, uint64(r.size-footerSize)-metadataOffset)
	if _, err := r.file.ReadAt(metaBytes, int64(metadataOffset)); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "failed to read metadata")
	}

	meta, err := decodeMetadata(metaBytes)
	if err != nil {
		return err
	}
	r.meta = meta
	return nil
}

// Schema returns the file's schema.
func (r *Reader) Schema() *Schema {
	return r.meta.Schema
}

// Metadata returns the resident file metadata.
func (r *Reader) Metadata() *FileMetadata {
	return r.meta
}

// Version returns the file's format version.
func (r *Reader) Version() (major, minor uint16) {
	return r.major, r.minor
}

// Close releases the file handle. It is idempotent.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if err := r.file.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "close failed")
	}
	return nil
}

func (r *Reader) checkChunk(rowGroupIdx, colIdx int, want ColumnType) (*ColumnChunkMeta, error) {
	if rowGroupIdx < 0 || rowGroupIdx >= len(r.meta.RowGroups) {
		return nil, errors.Newf(errors.ErrorTypeSchema,
			"row group index %d out of range", rowGroupIdx)
	}
	if colIdx < 0 || colIdx >= len(r.meta.Schema.Columns) {
		return nil, errors.Newf(errors.ErrorTypeSchema,
			"column index %d out of range", colIdx)
	}
	if got := r.meta.Schema.Columns[colIdx].Type; got != want {
		return nil, errors.Newf(errors.ErrorTypeSchema,
			"column %q has type %s, not %s", r.meta.Schema.Columns[colIdx].Name, got, want)
	}
	return &r.meta.RowGroups[rowGroupIdx].Chunks[colIdx], nil
}

// readChunk loads a column chunk and yields each page's inline header and
// payload to decode. Multi-page chunks are walked in order even though the
// writer currently emits a single page per chunk.
func (r *Reader) readChunk(chunk *ColumnChunkMeta, decode func(PageHeader, []byte) error) error {
	data := make([]byte, chunk.TotalSize)
	if _, err := r.file.ReadAt(data, int64(chunk.FileOffset)); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "failed to read column chunk")
	}

	c := &cursor{data: data}
	for range chunk.Pages {
		header, err := c.pageHeader()
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeCorrupt, "corrupt page header")
		}
		payload, err := c.bytes(int(header.CompressedSize))
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeTruncated, "page data out of bounds")
		}
		if err := decode(header, payload); err != nil {
			return err
		}
		metrics.PagesRead.WithLabelValues(header.Encoding.String()).Inc()
	}
	return nil
}

// ReadInt32Column decodes one INT32 column chunk of a row group.
func (r *Reader) ReadInt32Column(rowGroupIdx, colIdx int) ([]int32, error) {
	chunk, err := r.checkChunk(rowGroupIdx, colIdx, TypeInt32)
	if err != nil {
		return nil, err
	}

	var result []int32
	err = r.readChunk(chunk, func(h PageHeader, payload []byte) error {
		var values []int32
		var err error
		switch h.Encoding {
		case EncodingPlain:
			values, err = encoding.DecodePlainInt32(payload, int(h.NumValues))
		case EncodingRLE:
			values, err = encoding.DecodeRLEInt32(payload, int(h.NumValues))
		case EncodingDelta:
			values, err = encoding.DecodeDeltaInt32(payload, int(h.NumValues))
		default:
			return errors.Newf(errors.ErrorTypeUnsupportedEncoding,
				"encoding %s not supported for INT32 page", h.Encoding)
		}
		if err != nil {
			return err
		}
		result = append(result, values...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReadInt64Column decodes one INT64 column chunk of a row group.
func (r *Reader) ReadInt64Column(rowGroupIdx, colIdx int) ([]int64, error) {
	chunk, err := r.checkChunk(rowGroupIdx, colIdx, TypeInt64)
	if err != nil {
		return nil, err
	}

	var result []int64
	err = r.readChunk(chunk, func(h PageHeader, payload []byte) error {
		var values []int64
		var err error
		switch h.Encoding {
		case EncodingPlain:
			values, err = encoding.DecodePlainInt64(payload, int(h.NumValues))
		case EncodingRLE:
			values, err = encoding.DecodeRLEInt64(payload, int(h.NumValues))
		case EncodingDelta:
			values, err = encoding.DecodeDeltaInt64(payload, int(h.NumValues))
		default:
			return errors.Newf(errors.ErrorTypeUnsupportedEncoding,
				"encoding %s not supported for INT64 page", h.Encoding)
		}
		if err != nil {
			return err
		}
		result = append(result, values...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReadStringColumn decodes one STRING column chunk of a row group.
func (r *Reader) ReadStringColumn(rowGroupIdx, colIdx int) ([]string, error) {
	chunk, err := r.checkChunk(rowGroupIdx, colIdx, TypeString)
	if err != nil {
		return nil, err
	}

	var result []string
	err = r.readChunk(chunk, func(h PageHeader, payload []byte) error {
		var values []string
		var err error
		switch h.Encoding {
		case EncodingPlain:
			values, err = encoding.DecodePlainString(payload, int(h.NumValues))
		case EncodingDictionary:
			values, err = encoding.DecodeDictionary(payload, int(h.NumValues))
		default:
			return errors.Newf(errors.ErrorTypeUnsupportedEncoding,
				"encoding %s not supported for STRING page", h.Encoding)
		}
		if err != nil {
			return err
		}
		result = append(result, values...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
