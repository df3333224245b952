// engine is the top-level facade a caller actually imports: construct it
// over a working directory, create tables from an iterable row source, and
// run fully-chosen plans against it. There is no SQL layer above this; the
// caller supplies plans directly, the same way the executor expects.
package engine

import (
	log "github.com/sirupsen/logrus"

	"github.com/flatbase/flatbase/catalog"
	"github.com/flatbase/flatbase/coltype"
	"github.com/flatbase/flatbase/executor"
	"github.com/flatbase/flatbase/heap"
	"github.com/flatbase/flatbase/operator"
	"github.com/flatbase/flatbase/row"
)

// Engine exposes table creation and plan execution over the current
// working directory's catalog/heap/CSV files.
type Engine struct{}

// New constructs an Engine. It carries no state of its own; every table's
// catalog and heap file are resolved fresh from disk on each call, matching
// the teacher's lean facade that defers all real state to its storage
// layer.
func New() *Engine {
	return &Engine{}
}

// CreateTable writes table's catalog document and appends rows (already
// scalar-typed, e.g. from a CSV source parsed with the declared schema) to
// its heap file.
func (e *Engine) CreateTable(name string, columns []string, schema []coltype.CT, rows []row.Row) error {
	cat, err := catalog.NewCatalog(columns, schema)
	if err != nil {
		return err
	}
	if err := catalog.WriteFile(name, cat); err != nil {
		return err
	}
	store, err := heap.NewFileStorage(heap.Path(name))
	if err != nil {
		return err
	}
	defer store.Close()
	if err := heap.WriteRows(store, schema, rows); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"table": name,
		"rows":  len(rows),
	}).Info("engine: created table")
	return nil
}

// Query runs plan through the executor and returns its materialized
// result.
func (e *Engine) Query(plan *executor.Plan) (*executor.Result, error) {
	result, err := executor.Execute(plan)
	if err != nil {
		log.WithError(err).Error("engine: query failed")
		return nil, err
	}
	log.WithField("rows", len(result.Rows)).Info("engine: query complete")
	return result, nil
}

// fileCatalogStore and fileOpener are the on-disk CatalogStore/FileOpener
// implementations operator.ScanCSV and operator.ScanHeap use by default
// when a plan is built through this engine.
type fileCatalogStore struct{}

func (fileCatalogStore) Catalog(table string) (*catalog.Catalog, error) {
	return catalog.ReadFile(table)
}

type fileOpener struct{}

func (fileOpener) Open(table string) (heap.Storage, error) {
	return heap.NewFileStorage(heap.Path(table))
}

// CatalogStore returns the on-disk CatalogStore implementation, for
// building ScanCSV/ScanHeap operators against the current working
// directory.
func (e *Engine) CatalogStore() operator.CatalogStore {
	return fileCatalogStore{}
}

// FileOpener returns the on-disk FileOpener implementation, for building
// ScanHeap operators against the current working directory.
func (e *Engine) FileOpener() operator.FileOpener {
	return fileOpener{}
}
