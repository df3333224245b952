// row defines the positional tuple model operators and the heap file pass
// between each other, and the column index that gives a tuple's positions
// names.
package row

import (
	pkgerrors "github.com/pkg/errors"

	"github.com/flatbase/flatbase/errs"
)

// Row is a positional tuple of scalar values: int32, float32, or string.
type Row []any

// Clone returns a shallow copy of r, safe to mutate independently since its
// element types are all value types.
func (r Row) Clone() Row {
	c := make(Row, len(r))
	copy(c, r)
	return c
}

// ColumnIndex maps column names to their position in a Row, preserving
// insertion order for iteration and display.
type ColumnIndex struct {
	names []string
	pos   map[string]int
}

// NewColumnIndex builds a ColumnIndex from an ordered column name list.
func NewColumnIndex(names []string) *ColumnIndex {
	pos := make(map[string]int, len(names))
	for i, n := range names {
		pos[n] = i
	}
	return &ColumnIndex{names: append([]string(nil), names...), pos: pos}
}

// Names returns the column names in order.
func (c *ColumnIndex) Names() []string {
	return c.names
}

// Len returns the number of columns.
func (c *ColumnIndex) Len() int {
	return len(c.names)
}

// Position returns the index of name, or UnknownColumn if absent.
func (c *ColumnIndex) Position(name string) (int, error) {
	p, ok := c.pos[name]
	if !ok {
		return -1, pkgerrors.Wrapf(errs.ErrUnknownColumn, "column %q not found", name)
	}
	return p, nil
}

// Has reports whether name is present in the index.
func (c *ColumnIndex) Has(name string) bool {
	_, ok := c.pos[name]
	return ok
}

// Project returns a new ColumnIndex containing the names columns that are
// actually present in c, preserving c's own column order. Names absent from
// c are silently excluded rather than treated as an error.
func (c *ColumnIndex) Project(names []string) (*ColumnIndex, []int, error) {
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}

	var kept []string
	var positions []int
	for i, n := range c.names {
		if keep[n] {
			kept = append(kept, n)
			positions = append(positions, i)
		}
	}
	return NewColumnIndex(kept), positions, nil
}

// Join builds the combined ColumnIndex for a join's output row, renaming any
// right-side column name uniformly to "<rightName>/<name>" regardless of
// whether it actually collides with a left-side name.
func Join(left *ColumnIndex, right *ColumnIndex, rightName string) *ColumnIndex {
	names := make([]string, 0, left.Len()+right.Len())
	names = append(names, left.names...)
	for _, n := range right.names {
		names = append(names, rightName+"/"+n)
	}
	return NewColumnIndex(names)
}

// Concat returns a new Row consisting of left's fields followed by right's.
func Concat(left Row, right Row) Row {
	out := make(Row, 0, len(left)+len(right))
	out = append(out, left...)
	out = append(out, right...)
	return out
}

// ToMap maps a Row back to a map[string]any keyed by column name, the shape
// the executor hands back to callers.
func ToMap(cols *ColumnIndex, r Row) map[string]any {
	m := make(map[string]any, len(r))
	for i, n := range cols.Names() {
		m[n] = r[i]
	}
	return m
}
