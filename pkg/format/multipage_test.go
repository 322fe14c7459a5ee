package format

import (
	"encoding/binary"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/encoding"
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/testutil"
)

// The writer emits one page per chunk, but the format allows more; build a
// two-page chunk by hand and check the reader concatenates the pages.
func TestReaderSupportsMultiPageChunks(t *testing.T) {
	firstPage := encoding.EncodePlainInt32(nil, []int32{1, 2})
	secondPage := encoding.EncodePlainInt32(nil, []int32{3, 4, 5})

	h1 := PageHeader{
		UncompressedSize: 8,
		CompressedSize:   uint32(len(firstPage)),
		NumValues:        2,
		Encoding:         EncodingPlain,
		Stats:            statsInt32([]int32{1, 2}),
	}
	h2 := PageHeader{
		UncompressedSize: 12,
		CompressedSize:   uint32(len(secondPage)),
		NumValues:        3,
		Encoding:         EncodingPlain,
		Stats:            statsInt32([]int32{3, 4, 5}),
	}

	var file []byte
	file = binary.LittleEndian.AppendUint32(file, FileMagic)
	file = binary.LittleEndian.AppendUint16(file, VersionMajor)
	file = binary.LittleEndian.AppendUint16(file, VersionMinor)

	chunkOffset := uint64(len(file))
	file = appendPageHeader(file, h1)
	file = append(file, firstPage...)
	file = appendPageHeader(file, h2)
	file = append(file, secondPage...)
	chunkSize := uint64(len(file)) - chunkOffset

	schema, err := NewSchema(
		ColumnSchema{Name: "n", Type: TypeInt32, Encoding: EncodingPlain},
	)
	require.NoError(t, err)

	meta := &FileMetadata{
		Schema: schema,
		RowGroups: []RowGroupMeta{{
			NumRows: 5,
			Chunks: []ColumnChunkMeta{{
				FileOffset: chunkOffset,
				TotalSize:  chunkSize,
				Pages:      []PageHeader{h1, h2},
			}},
		}},
		TotalRows: 5,
	}
	metadataOffset := uint64(len(file))
	file = appendMetadata(file, meta)
	file = binary.LittleEndian.AppendUint32(file, FooterMagic)
	file = binary.LittleEndian.AppendUint64(file, metadataOffset)

	path := testutil.TempFile(t, "multipage.col")
	require.NoError(t, os.WriteFile(path, file, 0o644))

	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	require.Len(t, reader.Metadata().RowGroups[0].Chunks[0].Pages, 2)
	values, err := reader.ReadInt32Column(0, 0)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 3, 4, 5}, values)
}

func TestMetadataRoundTrip(t *testing.T) {
	schema, err := NewSchema(
		ColumnSchema{Name: "id", Type: TypeInt64, Encoding: EncodingDelta},
		ColumnSchema{Name: "city", Type: TypeString, Encoding: EncodingDictionary},
	)
	require.NoError(t, err)

	meta := &FileMetadata{
		Schema: schema,
		RowGroups: []RowGroupMeta{{
			NumRows: 7,
			Chunks: []ColumnChunkMeta{
				{FileOffset: 8, TotalSize: 120, Pages: []PageHeader{{
					UncompressedSize: 56,
					CompressedSize:   81,
					NumValues:        7,
					Encoding:         EncodingDelta,
					Stats:            PageStats{HasMin: true, Min: -3, HasMax: true, Max: 900, DistinctCount: 7},
				}}},
				{FileOffset: 128, TotalSize: 64, Pages: []PageHeader{{
					UncompressedSize: 40,
					CompressedSize:   25,
					NumValues:        7,
					Encoding:         EncodingDictionary,
					Stats:            PageStats{DistinctCount: 3},
				}}},
			},
		}},
		TotalRows: 7,
	}

	decoded, err := decodeMetadata(appendMetadata(nil, meta))
	require.NoError(t, err)
	assert.Equal(t, meta.TotalRows, decoded.TotalRows)
	assert.Equal(t, meta.Schema.Columns, decoded.Schema.Columns)
	assert.Equal(t, meta.RowGroups, decoded.RowGroups)
}

func TestDecodeMetadataTruncated(t *testing.T) {
	schema, err := NewSchema(
		ColumnSchema{Name: "n", Type: TypeInt32, Encoding: EncodingPlain},
	)
	require.NoError(t, err)
	full := appendMetadata(nil, &FileMetadata{Schema: schema, TotalRows: 0})

	for cut := 1; cut < len(full); cut++ {
		_, err := decodeMetadata(full[:len(full)-cut])
		assert.Error(t, err, "cut %d bytes", cut)
	}
}
