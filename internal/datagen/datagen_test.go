package datagen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/format"
	"github.com/Veezogri/Columnar-Analytics-Engine/pkg/testutil"
)

func TestGenerateSmallDataset(t *testing.T) {
	path := testutil.TempFile(t, "synthetic.col")
	require.NoError(t, Generate(path, 100, DefaultSeed))

	reader, err := format.NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	meta := reader.Metadata()
	assert.Equal(t, uint32(100), meta.TotalRows)
	require.Len(t, meta.RowGroups, 1)
	require.Len(t, meta.Schema.Columns, 5)

	ids, err := reader.ReadInt64Column(0, 0)
	require.NoError(t, err)
	require.Len(t, ids, 100)
	for i, id := range ids {
		assert.Equal(t, int64(i), id)
	}

	categories, err := reader.ReadInt32Column(0, 2)
	require.NoError(t, err)
	for _, c := range categories {
		assert.GreaterOrEqual(t, c, int32(1))
		assert.LessOrEqual(t, c, int32(5))
	}

	regions, err := reader.ReadStringColumn(0, 3)
	require.NoError(t, err)
	valid := map[string]bool{"north": true, "south": true, "east": true, "west": true}
	for _, r := range regions {
		assert.True(t, valid[r], "unexpected region %q", r)
	}
}

func TestGenerateSplitsRowGroups(t *testing.T) {
	path := testutil.TempFile(t, "big.col")
	require.NoError(t, Generate(path, 25000, 7))

	reader, err := format.NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	meta := reader.Metadata()
	assert.Equal(t, uint32(25000), meta.TotalRows)
	require.Len(t, meta.RowGroups, 3)
	assert.Equal(t, uint32(10000), meta.RowGroups[0].NumRows)
	assert.Equal(t, uint32(5000), meta.RowGroups[2].NumRows)
}

func TestGenerateDeterministicForSeed(t *testing.T) {
	first := testutil.TempFile(t, "a.col")
	second := testutil.TempFile(t, "b.col")
	require.NoError(t, Generate(first, 50, 123))
	require.NoError(t, Generate(second, 50, 123))

	r1, err := format.NewReader(first)
	require.NoError(t, err)
	defer r1.Close()
	r2, err := format.NewReader(second)
	require.NoError(t, err)
	defer r2.Close()

	v1, err := r1.ReadInt64Column(0, 1)
	require.NoError(t, err)
	v2, err := r2.ReadInt64Column(0, 1)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
}

func TestGenerateZeroRows(t *testing.T) {
	path := testutil.TempFile(t, "zero.col")
	require.NoError(t, Generate(path, 0, DefaultSeed))

	reader, err := format.NewReader(path)
	require.NoError(t, err)
	defer reader.Close()
	assert.Equal(t, uint32(0), reader.Metadata().TotalRows)
}
