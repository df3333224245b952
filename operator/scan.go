package operator

import (
	pkgerrors "github.com/pkg/errors"

	"github.com/flatbase/flatbase/catalog"
	"github.com/flatbase/flatbase/coltype"
	"github.com/flatbase/flatbase/csvsource"
	"github.com/flatbase/flatbase/errs"
	"github.com/flatbase/flatbase/heap"
	"github.com/flatbase/flatbase/row"
)

// ScanCSV opens table's catalog and CSV file, parses the CSV header into a
// ColumnIndex (which must match the catalog's column order), and lazily
// coerces each subsequent record against the catalog's schema.
type ScanCSV struct {
	Table        string
	CatalogStore CatalogStore
}

// CatalogStore resolves a table name to its Catalog, decoupling operator
// construction from a single on-disk convention (tests use an in-memory
// store; cmd/flatbase and engine use catalog.ReadFile).
type CatalogStore interface {
	Catalog(table string) (*catalog.Catalog, error)
}

func (s ScanCSV) Apply(_ IntermediateResult) (IntermediateResult, error) {
	cat, err := s.CatalogStore.Catalog(s.Table)
	if err != nil {
		return IntermediateResult{}, err
	}
	r, err := csvsource.Open(csvsource.Path(s.Table))
	if err != nil {
		return IntermediateResult{}, err
	}
	header, err := r.Header()
	if err != nil {
		r.Close()
		return IntermediateResult{}, err
	}
	if len(header) != len(cat.Columns) {
		r.Close()
		return IntermediateResult{}, pkgerrors.Wrapf(errs.ErrSchemaViolation, "csv has %d columns but catalog has %d", len(header), len(cat.Columns))
	}
	for i, name := range header {
		if name != cat.Columns[i] {
			r.Close()
			return IntermediateResult{}, pkgerrors.Wrapf(errs.ErrSchemaViolation, "csv header column %d is %q but catalog has %q", i, name, cat.Columns[i])
		}
	}
	return IntermediateResult{
		Columns: row.NewColumnIndex(cat.Columns),
		Rows:    &csvRowIterator{reader: r, schema: cat.Schema},
	}, nil
}

type csvRowIterator struct {
	reader *csvsource.Reader
	schema []coltype.CT
}

func (it *csvRowIterator) Next() (row.Row, bool, error) {
	fields, ok, err := it.reader.Next()
	if err != nil || !ok {
		return nil, ok, err
	}
	if len(fields) != len(it.schema) {
		return nil, false, pkgerrors.Wrapf(errs.ErrSchemaViolation, "csv record has %d fields but schema has %d", len(fields), len(it.schema))
	}
	r := make(row.Row, len(fields))
	for i, f := range fields {
		v, err := coltype.Parse(it.schema[i], f)
		if err != nil {
			return nil, false, err
		}
		r[i] = v
	}
	return r, true, nil
}

func (it *csvRowIterator) Close() error {
	return it.reader.Close()
}

// ScanHeap opens table's catalog and heap file, wrapping heap.Scan.
type ScanHeap struct {
	Table        string
	CatalogStore CatalogStore
	FileOpener   FileOpener
}

// FileOpener resolves a table name to a readable heap.Storage (decouples
// operator construction from the on-disk convention, the same way
// CatalogStore does).
type FileOpener interface {
	Open(table string) (heap.Storage, error)
}

func (s ScanHeap) Apply(_ IntermediateResult) (IntermediateResult, error) {
	cat, err := s.CatalogStore.Catalog(s.Table)
	if err != nil {
		return IntermediateResult{}, err
	}
	store, err := s.FileOpener.Open(s.Table)
	if err != nil {
		return IntermediateResult{}, err
	}
	it, err := heap.Scan(store, cat.Schema)
	if err != nil {
		return IntermediateResult{}, err
	}
	return IntermediateResult{
		Columns: row.NewColumnIndex(cat.Columns),
		Rows:    it,
	}, nil
}
