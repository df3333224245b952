// csvsource is the external CSV collaborator the scan_csv operator is wired
// to. CSV parsing itself (quoting, embedded separators) is an explicit
// external boundary; this package leans on encoding/csv rather than
// hand-rolled splitting.
package csvsource

import (
	"encoding/csv"
	"io"
	"os"

	pkgerrors "github.com/pkg/errors"

	"github.com/flatbase/flatbase/errs"
)

// Reader yields a CSV file's header followed by its records as ordered
// string vectors.
type Reader struct {
	r      *csv.Reader
	closer io.Closer
	closed bool
}

// Open opens path as a CSV source.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrap(errs.ErrIO, err.Error())
	}
	return &Reader{r: csv.NewReader(f), closer: f}, nil
}

// NewReader wraps an already-open io.Reader as a CSV source (used by tests
// over in-memory buffers).
func NewReader(r io.Reader) *Reader {
	return &Reader{r: csv.NewReader(r), closer: io.NopCloser(r)}
}

// Header reads and returns the CSV file's first record as column names.
func (r *Reader) Header() ([]string, error) {
	rec, err := r.r.Read()
	if err != nil {
		return nil, pkgerrors.Wrap(errs.ErrIO, err.Error())
	}
	return rec, nil
}

// Next returns the next CSV record, or ok false at end of file.
func (r *Reader) Next() (fields []string, ok bool, err error) {
	rec, err := r.r.Read()
	if err == io.EOF {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, pkgerrors.Wrap(errs.ErrIO, err.Error())
	}
	return rec, true, nil
}

// Close releases the underlying file handle. Safe to call more than once.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.closer.Close()
}

// Path returns the CSV source's conventional file path for table.
func Path(table string) string {
	return table + "_table.csv"
}

// Writer appends header and rows to a CSV file, used by table-loading
// helpers and tests that need to materialize a fixture.
type Writer struct {
	w      *csv.Writer
	closer io.Closer
	closed bool
}

// Create creates (or truncates) path as a CSV destination.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, pkgerrors.Wrap(errs.ErrIO, err.Error())
	}
	return &Writer{w: csv.NewWriter(f), closer: f}, nil
}

// WriteRecord writes a single CSV record.
func (w *Writer) WriteRecord(fields []string) error {
	if err := w.w.Write(fields); err != nil {
		return pkgerrors.Wrap(errs.ErrIO, err.Error())
	}
	return nil
}

// Close flushes buffered records and closes the file. Safe to call more
// than once.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		return pkgerrors.Wrap(errs.ErrIO, err.Error())
	}
	return w.closer.Close()
}
