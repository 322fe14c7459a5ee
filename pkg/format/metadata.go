package format

import (
	"encoding/binary"

	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/errors"
)

// File format constants.
const (
	// FileMagic is "COLE" in little-endian
	FileMagic uint32 = 0x454C4F43
	// FooterMagic is "FOOT" in little-endian
	FooterMagic uint32 = 0x464F4F54

	VersionMajor uint16 = 1
	VersionMinor uint16 = 0

	headerSize = 8  // magic + major + minor
	footerSize = 12 // magic + metadata offset
	// minFileSize is the smallest conceivable valid file: header, empty
	// metadata (num_cols, num_row_groups, total_rows would add more, but
	// the reader rejects on parse), footer.
	minFileSize = headerSize + footerSize

	// pageHeaderSize is the fixed serialized size of a PageHeader
	pageHeaderSize = 4 + 4 + 4 + 1 + pageStatsSize
	pageStatsSize  = 1 + 8 + 1 + 8 + 4 + 4
)

// PageHeader precedes every page's data on disk.
type PageHeader struct {
	UncompressedSize uint32
	CompressedSize   uint32
	NumValues        uint32
	Encoding         EncodingType
	Stats            PageStats
}

// ColumnChunkMeta locates one column's pages within a row group.
type ColumnChunkMeta struct {
	FileOffset uint64
	TotalSize  uint64
	Pages      []PageHeader
}

// RowGroupMeta describes one horizontal partition of the file.
type RowGroupMeta struct {
	NumRows uint32
	Chunks  []ColumnChunkMeta
}

// FileMetadata is the resident description of a file: schema, row groups
// and total row count. It is written once at finalization.
type FileMetadata struct {
	Schema    *Schema
	RowGroups []RowGroupMeta
	TotalRows uint32
}

func appendPageStats(dst []byte, s PageStats) []byte {
	if s.HasMin {
		dst = append(dst, 1)
	} else {
		dst = append(dst, 0)
	}
	dst = binary.LittleEndian.AppendUint64(dst, uint64(s.Min))
	if s.HasMax {
		dst = append(dst, 1)
	} else {
		dst = append(dst, 0)
	}
	dst = binary.LittleEndian.AppendUint64(dst, uint64(s.Max))
	dst = binary.LittleEndian.AppendUint32(dst, s.NullCount)
	dst = binary.LittleEndian.AppendUint32(dst, s.DistinctCount)
	return dst
}

func appendPageHeader(dst []byte, h PageHeader) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, h.UncompressedSize)
	dst = binary.LittleEndian.AppendUint32(dst, h.CompressedSize)
	dst = binary.LittleEndian.AppendUint32(dst, h.NumValues)
	dst = append(dst, byte(h.Encoding))
	return appendPageStats(dst, h.Stats)
}

// appendMetadata serializes the metadata block:
// num_cols, column entries, num_row_groups, row group entries, total_rows.
func appendMetadata(dst []byte, meta *FileMetadata) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(meta.Schema.Columns)))
	for _, col := range meta.Schema.Columns {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(len(col.Name)))
		dst = append(dst, col.Name...)
		dst = append(dst, byte(col.Type), byte(col.Encoding))
	}

	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(meta.RowGroups)))
	for _, rg := range meta.RowGroups {
		dst = binary.LittleEndian.AppendUint32(dst, rg.NumRows)
		for _, chunk := range rg.Chunks {
			dst = binary.LittleEndian.AppendUint64(dst, chunk.FileOffset)
			dst = binary.LittleEndian.AppendUint64(dst, chunk.TotalSize)
			dst = binary.LittleEndian.AppendUint32(dst, uint32(len(chunk.Pages)))
			for _, page := range chunk.Pages {
				dst = appendPageHeader(dst, page)
			}
		}
	}

	return binary.LittleEndian.AppendUint32(dst, meta.TotalRows)
}

// cursor is a bounds-checked reader over the metadata region. Any read
// past the end reports corrupt metadata.
type cursor struct {
	data []byte
	pos  int
}

func (c *cursor) remaining() int { return len(c.data) - c.pos }

func (c *cursor) u8() (byte, error) {
	if c.remaining() < 1 {
		return 0, errors.New(errors.ErrorTypeCorrupt, "corrupt metadata: truncated")
	}
	b := c.data[c.pos]
	c.pos++
	return b, nil
}

func (c *cursor) u32() (uint32, error) {
	if c.remaining() < 4 {
		return 0, errors.New(errors.ErrorTypeCorrupt, "corrupt metadata: truncated")
	}
	v := binary.LittleEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

func (c *cursor) u64() (uint64, error) {
	if c.remaining() < 8 {
		return 0, errors.New(errors.ErrorTypeCorrupt, "corrupt metadata: truncated")
	}
	v := binary.LittleEndian.Uint64(c.data[c.pos:])
	c.pos += 8
	return v, nil
}

func (c *cursor) bytes(n int) ([]byte, error) {
	if n < 0 || c.remaining() < n {
		return nil, errors.New(errors.ErrorTypeCorrupt, "corrupt metadata: truncated")
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) pageStats() (PageStats, error) {
	var s PageStats
	hasMin, err := c.u8()
	if err != nil {
		return s, err
	}
	min, err := c.u64()
	if err != nil {
		return s, err
	}
	hasMax, err := c.u8()
	if err != nil {
		return s, err
	}
	max, err := c.u64()
	if err != nil {
		return s, err
	}
	if s.NullCount, err = c.u32(); err != nil {
		return s, err
	}
	if s.DistinctCount, err = c.u32(); err != nil {
		return s, err
	}
	s.HasMin = hasMin != 0
	s.Min = int64(min)
	s.HasMax = hasMax != 0
	s.Max = int64(max)
	return s, nil
}

func (c *cursor) pageHeader() (PageHeader, error) {
	var h PageHeader
	var err error
	if h.UncompressedSize, err = c.u32(); err != nil {
		return h, err
	}
	if h.CompressedSize, err = c.u32(); err != nil {
		return h, err
	}
	if h.NumValues, err = c.u32(); err != nil {
		return h, err
	}
	enc, err := c.u8()
	if err != nil {
		return h, err
	}
	h.Encoding = EncodingType(enc)
	if h.Stats, err = c.pageStats(); err != nil {
		return h, err
	}
	return h, nil
}

// decodeMetadata parses the metadata region. The schema is re-validated so
// that a tampered file cannot smuggle in an illegal type/encoding pair.
func decodeMetadata(data []byte) (*FileMetadata, error) {
	c := &cursor{data: data}

	numCols, err := c.u32()
	if err != nil {
		return nil, err
	}
	columns := make([]ColumnSchema, 0, numCols)
	for i := uint32(0); i < numCols; i++ {
		nameLen, err := c.u32()
		if err != nil {
			return nil, err
		}
		name, err := c.bytes(int(nameLen))
		if err != nil {
			return nil, err
		}
		typ, err := c.u8()
		if err != nil {
			return nil, err
		}
		enc, err := c.u8()
		if err != nil {
			return nil, err
		}
		columns = append(columns, ColumnSchema{
			Name:     string(name),
			Type:     ColumnType(typ),
			Encoding: EncodingType(enc),
		})
	}

	schema, err := NewSchema(columns...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeCorrupt, "corrupt metadata: invalid schema")
	}

	numRowGroups, err := c.u32()
	if err != nil {
		return nil, err
	}
	rowGroups := make([]RowGroupMeta, 0, numRowGroups)
	for i := uint32(0); i < numRowGroups; i++ {
		var rg RowGroupMeta
		if rg.NumRows, err = c.u32(); err != nil {
			return nil, err
		}
		rg.Chunks = make([]ColumnChunkMeta, 0, numCols)
		for j := uint32(0); j < numCols; j++ {
			var chunk ColumnChunkMeta
			if chunk.FileOffset, err = c.u64(); err != nil {
				return nil, err
			}
			if chunk.TotalSize, err = c.u64(); err != nil {
				return nil, err
			}
			numPages, err := c.u32()
			if err != nil {
				return nil, err
			}
			chunk.Pages = make([]PageHeader, 0, numPages)
			for k := uint32(0); k < numPages; k++ {
				page, err := c.pageHeader()
				if err != nil {
					return nil, err
				}
				chunk.Pages = append(chunk.Pages, page)
			}
			rg.Chunks = append(rg.Chunks, chunk)
		}
		rowGroups = append(rowGroups, rg)
	}

	totalRows, err := c.u32()
	if err != nil {
		return nil, err
	}

	return &FileMetadata{
		Schema:    schema,
		RowGroups: rowGroups,
		TotalRows: totalRows,
	}, nil
}
