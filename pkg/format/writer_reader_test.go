package format

import (
	"encoding/binary"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/errors"
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/testutil"
)

func citySchema(t *testing.T) *Schema {
	t.Helper()
	schema, err := NewSchema(
		ColumnSchema{Name: "id", Type: TypeInt64, Encoding: EncodingPlain},
		ColumnSchema{Name: "age", Type: TypeInt32, Encoding: EncodingPlain},
		ColumnSchema{Name: "city", Type: TypeString, Encoding: EncodingDictionary},
	)
	require.NoError(t, err)
	return schema
}

func writeCityFile(t *testing.T) string {
	t.Helper()
	path := testutil.TempFile(t, "city.col")

	writer, err := NewWriter(path, citySchema(t), WithWriterLogger(testutil.TestLogger(t)))
	require.NoError(t, err)
	require.NoError(t, writer.WriteInt64Column(0, []int64{1, 2, 3, 4, 5}))
	require.NoError(t, writer.WriteInt32Column(1, []int32{25, 30, 25, 35, 30}))
	require.NoError(t, writer.WriteStringColumn(2, []string{"Paris", "Lyon", "Paris", "Nice", "Lyon"}))
	require.NoError(t, writer.Close())
	return path
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := writeCityFile(t)

	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	meta := reader.Metadata()
	assert.Equal(t, uint32(5), meta.TotalRows)
	require.Len(t, meta.RowGroups, 1)
	assert.Equal(t, uint32(5), meta.RowGroups[0].NumRows)

	ids, err := reader.ReadInt64Column(0, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids)

	ages, err := reader.ReadInt32Column(0, 1)
	require.NoError(t, err)
	assert.Equal(t, []int32{25, 30, 25, 35, 30}, ages)

	cities, err := reader.ReadStringColumn(0, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Paris", "Lyon", "Paris", "Nice", "Lyon"}, cities)

	major, minor := reader.Version()
	assert.Equal(t, VersionMajor, major)
	assert.Equal(t, VersionMinor, minor)
}

func TestMultipleRowGroups(t *testing.T) {
	path := testutil.TempFile(t, "groups.col")
	schema, err := NewSchema(
		ColumnSchema{Name: "value", Type: TypeInt32, Encoding: EncodingPlain},
	)
	require.NoError(t, err)

	writer, err := NewWriter(path, schema)
	require.NoError(t, err)
	require.NoError(t, writer.WriteInt32Column(0, []int32{1, 2, 3}))
	require.NoError(t, writer.FlushRowGroup())
	require.NoError(t, writer.WriteInt32Column(0, []int32{4, 5, 6}))
	require.NoError(t, writer.Close())

	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	meta := reader.Metadata()
	require.Len(t, meta.RowGroups, 2)
	assert.Equal(t, uint32(6), meta.TotalRows)
	assert.Equal(t, uint32(3), meta.RowGroups[0].NumRows)
	assert.Equal(t, uint32(3), meta.RowGroups[1].NumRows)

	first, err := reader.ReadInt32Column(0, 0)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 3}, first)

	second, err := reader.ReadInt32Column(1, 0)
	require.NoError(t, err)
	assert.Equal(t, []int32{4, 5, 6}, second)
}

func TestDeltaAndRLEColumns(t *testing.T) {
	path := testutil.TempFile(t, "encodings.col")
	schema, err := NewSchema(
		ColumnSchema{Name: "timestamp", Type: TypeInt64, Encoding: EncodingDelta},
		ColumnSchema{Name: "category", Type: TypeInt32, Encoding: EncodingRLE},
	)
	require.NoError(t, err)

	timestamps := []int64{1000, 1100, 1200, 1300, 1400}
	categories := []int32{1, 1, 1, 2, 2}

	writer, err := NewWriter(path, schema)
	require.NoError(t, err)
	require.NoError(t, writer.WriteInt64Column(0, timestamps))
	require.NoError(t, writer.WriteInt32Column(1, categories))
	require.NoError(t, writer.Close())

	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	gotTs, err := reader.ReadInt64Column(0, 0)
	require.NoError(t, err)
	assert.Equal(t, timestamps, gotTs)

	gotCat, err := reader.ReadInt32Column(0, 1)
	require.NoError(t, err)
	assert.Equal(t, categories, gotCat)

	// The delta page stays compact: 100-wide deltas fit in 2 varint bytes.
	tsPage := reader.Metadata().RowGroups[0].Chunks[0].Pages[0]
	assert.Less(t, int(tsPage.CompressedSize), 40)
}

func TestPageStatsOnDisk(t *testing.T) {
	path := testutil.TempFile(t, "stats.col")
	schema, err := NewSchema(
		ColumnSchema{Name: "category", Type: TypeInt32, Encoding: EncodingRLE},
	)
	require.NoError(t, err)

	writer, err := NewWriter(path, schema)
	require.NoError(t, err)
	require.NoError(t, writer.WriteInt32Column(0, []int32{1, 1, 1, 2, 2, 3, 3, 3, 3}))
	require.NoError(t, writer.Close())

	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	page := reader.Metadata().RowGroups[0].Chunks[0].Pages[0]
	require.True(t, page.Stats.HasMin)
	require.True(t, page.Stats.HasMax)
	assert.Equal(t, int64(1), page.Stats.Min)
	assert.Equal(t, int64(3), page.Stats.Max)
	assert.Equal(t, uint32(0), page.Stats.NullCount)
	// RLE records the run count as its distinct estimate.
	assert.Equal(t, uint32(3), page.Stats.DistinctCount)
}

func TestDictionaryDistinctCount(t *testing.T) {
	path := writeCityFile(t)

	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	cityPage := reader.Metadata().RowGroups[0].Chunks[2].Pages[0]
	assert.False(t, cityPage.Stats.HasMin)
	assert.False(t, cityPage.Stats.HasMax)
	assert.Equal(t, uint32(3), cityPage.Stats.DistinctCount)
}

func TestWriterSchemaViolations(t *testing.T) {
	path := testutil.TempFile(t, "violations.col")
	writer, err := NewWriter(path, citySchema(t))
	require.NoError(t, err)
	defer writer.Close()

	err = writer.WriteInt32Column(0, []int32{1}) // id is INT64
	assert.True(t, errors.IsType(err, errors.ErrorTypeSchema))

	err = writer.WriteInt64Column(7, []int64{1})
	assert.True(t, errors.IsType(err, errors.ErrorTypeSchema))

	err = writer.WriteStringColumn(1, []string{"x"}) // age is INT32
	assert.True(t, errors.IsType(err, errors.ErrorTypeSchema))
}

func TestFlushRejectsRaggedBuffers(t *testing.T) {
	path := testutil.TempFile(t, "ragged.col")
	writer, err := NewWriter(path, citySchema(t))
	require.NoError(t, err)

	require.NoError(t, writer.WriteInt64Column(0, []int64{1, 2}))
	require.NoError(t, writer.WriteInt32Column(1, []int32{25}))
	require.NoError(t, writer.WriteStringColumn(2, []string{"Paris", "Lyon"}))

	err = writer.FlushRowGroup()
	assert.True(t, errors.IsType(err, errors.ErrorTypeSchema))
}

func TestFlushEmptyIsNoop(t *testing.T) {
	path := testutil.TempFile(t, "empty_flush.col")
	writer, err := NewWriter(path, citySchema(t))
	require.NoError(t, err)

	require.NoError(t, writer.FlushRowGroup())
	require.NoError(t, writer.Close())

	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()
	assert.Empty(t, reader.Metadata().RowGroups)
	assert.Equal(t, uint32(0), reader.Metadata().TotalRows)
}

func TestDoubleCloseIsNoop(t *testing.T) {
	path := testutil.TempFile(t, "double.col")
	writer, err := NewWriter(path, citySchema(t))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	require.NoError(t, writer.Close())

	reader, err := NewReader(path)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	require.NoError(t, reader.Close())
}

func TestAutoFlushAtRowCap(t *testing.T) {
	path := testutil.TempFile(t, "autoflush.col")
	schema, err := NewSchema(
		ColumnSchema{Name: "n", Type: TypeInt32, Encoding: EncodingPlain},
	)
	require.NoError(t, err)

	writer, err := NewWriter(path, schema, WithMaxRowGroupRows(4))
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		require.NoError(t, writer.WriteInt32Column(0, []int32{int32(i)}))
	}
	require.NoError(t, writer.Close())

	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	meta := reader.Metadata()
	assert.Equal(t, uint32(10), meta.TotalRows)
	require.Len(t, meta.RowGroups, 3)
	assert.Equal(t, uint32(4), meta.RowGroups[0].NumRows)
	assert.Equal(t, uint32(4), meta.RowGroups[1].NumRows)
	assert.Equal(t, uint32(2), meta.RowGroups[2].NumRows)
}

func TestRowGroupAccounting(t *testing.T) {
	path := testutil.TempFile(t, "accounting.col")
	schema, err := NewSchema(
		ColumnSchema{Name: "n", Type: TypeInt64, Encoding: EncodingPlain},
	)
	require.NoError(t, err)

	sizes := []int{3, 1, 7, 2}
	writer, err := NewWriter(path, schema)
	require.NoError(t, err)
	next := int64(0)
	for _, size := range sizes {
		values := make([]int64, size)
		for i := range values {
			values[i] = next
			next++
		}
		require.NoError(t, writer.WriteInt64Column(0, values))
		require.NoError(t, writer.FlushRowGroup())
	}
	require.NoError(t, writer.Close())

	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	meta := reader.Metadata()
	require.Len(t, meta.RowGroups, len(sizes))
	var sum uint32
	for i, rg := range meta.RowGroups {
		assert.Equal(t, uint32(sizes[i]), rg.NumRows)
		sum += rg.NumRows
	}
	assert.Equal(t, meta.TotalRows, sum)
}

func TestReaderRejectsTooSmall(t *testing.T) {
	path := testutil.TempFile(t, "tiny.col")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3, 4}, 0o644))

	_, err := NewReader(path)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTooSmall))
	assert.Contains(t, err.Error(), "too small")
}

func TestReaderRejectsBadHeaderMagic(t *testing.T) {
	path := testutil.TempFile(t, "badmagic.col")
	data := binary.LittleEndian.AppendUint32(nil, 0xDEADBEEF)
	data = append(data, make([]byte, 24)...)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err := NewReader(path)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeBadMagic))
	assert.Contains(t, err.Error(), "invalid file magic")
}

func TestReaderRejectsBadFooterMagic(t *testing.T) {
	path := writeCityFile(t)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(data[len(data)-footerSize:], 0xBADF00D0)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = NewReader(path)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeBadMagic))
	assert.Contains(t, err.Error(), "invalid footer magic")
}

func TestReaderRejectsBadMetadataOffset(t *testing.T) {
	path := writeCityFile(t)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	binary.LittleEndian.PutUint64(data[len(data)-8:], 999_999_999)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = NewReader(path)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeBadOffset))
	assert.Contains(t, err.Error(), "metadata offset")
}

func TestReaderRejectsCorruptMetadata(t *testing.T) {
	path := writeCityFile(t)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// Point the footer at the header: parsing it as metadata cannot succeed.
	binary.LittleEndian.PutUint64(data[len(data)-8:], 8)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = NewReader(path)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeCorrupt))
}

func TestReaderIndexValidation(t *testing.T) {
	path := writeCityFile(t)
	reader, err := NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	_, err = reader.ReadInt64Column(5, 0)
	assert.True(t, errors.IsType(err, errors.ErrorTypeSchema))

	_, err = reader.ReadInt64Column(0, 9)
	assert.True(t, errors.IsType(err, errors.ErrorTypeSchema))

	// Reading with the wrong typed accessor is a schema violation.
	_, err = reader.ReadInt32Column(0, 0)
	assert.True(t, errors.IsType(err, errors.ErrorTypeSchema))
}
