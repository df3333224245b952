// catalog reads and writes a table's metadata document: its ordered column
// names and their scalar types. The document is JSON on disk so it stays
// human-inspectable, but in-memory callers also get a version token so a
// catalog cached across several scans can detect it has gone stale.
package catalog

import (
	"encoding/json"
	"io"
	"os"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/flatbase/flatbase/coltype"
	"github.com/flatbase/flatbase/errs"
)

// document is the on-disk shape of a table's catalog file. Only columns and
// schema round-trip; version is minted fresh on every read and write.
type document struct {
	Columns []string `json:"columns"`
	Schema  []string `json:"schema"`
}

// Catalog is a table's resolved metadata: ordered column names with their
// parallel scalar types, plus a version token identifying this particular
// in-memory snapshot.
type Catalog struct {
	Columns []string
	Schema  []coltype.CT
	version string
}

// NewCatalog builds a Catalog from parallel column name and type slices.
func NewCatalog(columns []string, schema []coltype.CT) (*Catalog, error) {
	if len(columns) != len(schema) {
		return nil, pkgerrors.Wrapf(errs.ErrSchemaViolation, "catalog has %d columns but %d schema entries", len(columns), len(schema))
	}
	return &Catalog{
		Columns: columns,
		Schema:  schema,
		version: uuid.NewString(),
	}, nil
}

// Version returns the token identifying this in-memory snapshot of the
// catalog. Two reads of the same on-disk document never share a version,
// since each read mints a fresh one.
func (c *Catalog) Version() string {
	return c.version
}

// ColumnType returns the scalar type of the named column.
func (c *Catalog) ColumnType(name string) (coltype.CT, error) {
	for i, col := range c.Columns {
		if col == name {
			return c.Schema[i], nil
		}
	}
	return coltype.Unknown, pkgerrors.Wrapf(errs.ErrUnknownColumn, "column %q not in catalog", name)
}

// Read loads and parses a catalog document from r.
func Read(r io.Reader) (*Catalog, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, pkgerrors.Wrap(errs.ErrIO, err.Error())
	}
	schema := make([]coltype.CT, len(doc.Schema))
	for i, name := range doc.Schema {
		ct, err := coltype.FromName(name)
		if err != nil {
			return nil, err
		}
		schema[i] = ct
	}
	return NewCatalog(doc.Columns, schema)
}

// Write serializes cat as a catalog document to w, minting a fresh version
// token on cat as a side effect.
func Write(w io.Writer, cat *Catalog) error {
	cat.version = uuid.NewString()
	doc := document{
		Columns: cat.Columns,
		Schema:  make([]string, len(cat.Schema)),
	}
	for i, ct := range cat.Schema {
		doc.Schema[i] = coltype.Name(ct)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return pkgerrors.Wrap(errs.ErrIO, err.Error())
	}
	return nil
}

// Path returns the catalog document's conventional file path for table.
func Path(table string) string {
	return table + "_catalog.json"
}

// ReadFile opens and parses table's catalog document from the working
// directory.
func ReadFile(table string) (*Catalog, error) {
	f, err := os.Open(Path(table))
	if err != nil {
		return nil, pkgerrors.Wrap(errs.ErrIO, err.Error())
	}
	defer f.Close()
	return Read(f)
}

// WriteFile serializes cat as table's catalog document, creating or
// truncating the file.
func WriteFile(table string, cat *Catalog) error {
	f, err := os.Create(Path(table))
	if err != nil {
		return pkgerrors.Wrap(errs.ErrIO, err.Error())
	}
	defer f.Close()
	return Write(f, cat)
}
