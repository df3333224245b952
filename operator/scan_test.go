package operator

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flatbase/flatbase/catalog"
	"github.com/flatbase/flatbase/coltype"
	"github.com/flatbase/flatbase/csvsource"
	"github.com/flatbase/flatbase/heap"
	"github.com/flatbase/flatbase/row"
)

type fakeCatalogStore struct {
	cats map[string]*catalog.Catalog
}

func (f fakeCatalogStore) Catalog(table string) (*catalog.Catalog, error) {
	c, ok := f.cats[table]
	if !ok {
		return nil, assert.AnError
	}
	return c, nil
}

type fakeFileOpener struct {
	stores map[string]heap.Storage
}

func (f fakeFileOpener) Open(table string) (heap.Storage, error) {
	s, ok := f.stores[table]
	if !ok {
		return nil, assert.AnError
	}
	return s, nil
}

func TestScanHeap(t *testing.T) {
	cat, err := catalog.NewCatalog([]string{"name", "age"}, []coltype.CT{coltype.Str, coltype.Int})
	require.NoError(t, err)

	store := heap.NewMemoryStorage()
	require.NoError(t, heap.WriteRows(store, cat.Schema, []row.Row{{"Rex", int32(3)}}))

	scan := ScanHeap{
		Table:        "dog",
		CatalogStore: fakeCatalogStore{cats: map[string]*catalog.Catalog{"dog": cat}},
		FileOpener:   fakeFileOpener{stores: map[string]heap.Storage{"dog": store}},
	}
	out, err := scan.Apply(IntermediateResult{})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age"}, out.Columns.Names())
	assert.Equal(t, []row.Row{{"Rex", int32(3)}}, drainAll(t, out.Rows))
}

func TestScanCSVParsesAgainstSchema(t *testing.T) {
	cat, err := catalog.NewCatalog([]string{"name", "age"}, []coltype.CT{coltype.Str, coltype.Int})
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(cwd) })

	w, err := csvsource.Create(csvsource.Path("person"))
	require.NoError(t, err)
	require.NoError(t, w.WriteRecord([]string{"name", "age"}))
	require.NoError(t, w.WriteRecord([]string{"Bob", "40"}))
	require.NoError(t, w.Close())

	scan := ScanCSV{
		Table:        "person",
		CatalogStore: fakeCatalogStore{cats: map[string]*catalog.Catalog{"person": cat}},
	}
	out, err := scan.Apply(IntermediateResult{})
	require.NoError(t, err)
	assert.Equal(t, []row.Row{{"Bob", int32(40)}}, drainAll(t, out.Rows))
}
