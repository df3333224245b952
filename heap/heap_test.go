package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flatbase/flatbase/coltype"
	"github.com/flatbase/flatbase/row"
)

func TestWriteRowsThenScanRoundTrip(t *testing.T) {
	schema := []coltype.CT{coltype.Str, coltype.Int, coltype.Str}
	store := NewMemoryStorage()

	rows := []row.Row{
		{"Rex", int32(3), "Paris"},
		{"Bob", int32(40), "Paris"},
		{"Ada", int32(29), "London"},
	}
	require.NoError(t, WriteRows(store, schema, rows))

	it, err := Scan(store, schema)
	require.NoError(t, err)

	var got []row.Row
	for {
		r, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, r)
	}
	require.NoError(t, it.Close())
	assert.Equal(t, rows, got)
}

func TestWriteRowsAcrossSections(t *testing.T) {
	schema := []coltype.CT{coltype.Int}
	store := NewMemoryStorage()

	// Force several section passes: MaxModifiedPagesPerSectionPass caps how
	// many pages one writeSection call fills, so a write this large must
	// advance across more than one section.
	orig := MaxModifiedPagesPerSectionPass
	MaxModifiedPagesPerSectionPass = 1
	defer func() { MaxModifiedPagesPerSectionPass = orig }()

	rows := make([]row.Row, 0, 5000)
	for i := 0; i < 5000; i++ {
		rows = append(rows, row.Row{int32(i)})
	}
	require.NoError(t, WriteRows(store, schema, rows))

	it, err := Scan(store, schema)
	require.NoError(t, err)
	count := 0
	for {
		_, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		count++
	}
	require.NoError(t, it.Close())
	assert.Equal(t, len(rows), count)
}

func TestScanIsIdempotentClose(t *testing.T) {
	schema := []coltype.CT{coltype.Int}
	store := NewMemoryStorage()
	require.NoError(t, WriteRows(store, schema, []row.Row{{int32(1)}}))

	it, err := Scan(store, schema)
	require.NoError(t, err)
	_, _, err = it.Next()
	require.NoError(t, err)
	require.NoError(t, it.Close())
	require.NoError(t, it.Close())
}

func TestRowTooLargeRejected(t *testing.T) {
	schema := []coltype.CT{coltype.Str}
	store := NewMemoryStorage()
	huge := make([]byte, PageSize)
	err := WriteRows(store, schema, []row.Row{{string(huge)}})
	assert.Error(t, err)
}

func TestPageFooterRoundTrip(t *testing.T) {
	page := make([]byte, PageSize)
	writeFooter(page, footer{rowCount: 3, freeOffset: 100})
	f, err := readFooter(page)
	require.NoError(t, err)
	assert.Equal(t, uint16(3), f.rowCount)
	assert.Equal(t, uint16(100), f.freeOffset)
}

func TestReadFooterWrongSize(t *testing.T) {
	_, err := readFooter(make([]byte, 10))
	assert.Error(t, err)
}

func TestEncodeDecodeRow(t *testing.T) {
	schema := []coltype.CT{coltype.Int, coltype.Float, coltype.Str}
	page := make([]byte, PageSize)
	r := row.Row{int32(7), float32(1.5), "hi"}
	n, err := encodeRowInto(page, 0, schema, r)
	require.NoError(t, err)

	got, n2, err := decodeRowAt(page, 0, schema)
	require.NoError(t, err)
	assert.Equal(t, r, got)
	assert.Equal(t, n, n2)
}

func TestWriteRowsMaintainsPageDirectory(t *testing.T) {
	schema := []coltype.CT{coltype.Int}
	store := NewMemoryStorage()

	rows := []row.Row{{int32(1)}, {int32(2)}, {int32(3)}}
	require.NoError(t, WriteRows(store, schema, rows))

	dirBuf := make([]byte, PageSize)
	_, err := store.ReadAt(dirBuf, 0)
	require.NoError(t, err)
	dir, err := decodeDirectory(dirBuf)
	require.NoError(t, err)

	sz, err := rowEncodedSize(schema, rows[0])
	require.NoError(t, err)
	wantFree := uint16(PageSize - footerSize - len(rows)*(sz+slotSize))
	assert.Equal(t, wantFree, dir[0])
	assert.Equal(t, uint16(PageSize-footerSize), dir[1])
}

func TestEmptyDirectoryIsAllFree(t *testing.T) {
	dir := emptyDirectory()
	assert.Len(t, dir, pageDirectoryEntriesNum)
	for _, v := range dir {
		assert.Equal(t, uint16(PageSize-footerSize), v)
	}
}

func TestScanSkipsDirectoryPages(t *testing.T) {
	schema := []coltype.CT{coltype.Int}
	store := NewMemoryStorage()
	rows := make([]row.Row, 0, pageDirectoryEntriesNum*2+10)
	for i := 0; i < pageDirectoryEntriesNum*2+10; i++ {
		rows = append(rows, row.Row{int32(i)})
	}
	require.NoError(t, WriteRows(store, schema, rows))

	it, err := Scan(store, schema)
	require.NoError(t, err)
	count := 0
	for {
		_, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		count++
	}
	require.NoError(t, it.Close())
	assert.Equal(t, len(rows), count)
}
