package operator

import (
	pkgerrors "github.com/pkg/errors"

	"github.com/flatbase/flatbase/errs"
	"github.com/flatbase/flatbase/row"
)

// Merge concatenates __result__'s rows with env[OtherKey]'s rows: a
// multiset union, duplicates preserved, left-then-right order. Column
// schemas must be compatible by name; the producing side's column index is
// used as-is, with no rename.
type Merge struct {
	OtherKey string
}

func (m Merge) ApplyEnv(in IntermediateResult, lookup Lookup) (IntermediateResult, error) {
	other, ok := lookup(m.OtherKey)
	if !ok {
		in.Rows.Close()
		return IntermediateResult{}, pkgerrors.Wrapf(errs.ErrMissingStep, "merge references unknown step %q", m.OtherKey)
	}
	if len(in.Columns.Names()) != len(other.Columns.Names()) {
		in.Rows.Close()
		return IntermediateResult{}, pkgerrors.Wrap(errs.ErrSchemaViolation, "merge operands have different arity")
	}
	return IntermediateResult{
		Columns: in.Columns,
		Rows:    &mergeIterator{left: in.Rows, right: other.Rows},
	}, nil
}

type mergeIterator struct {
	left, right RowIterator
	onRight     bool
}

func (it *mergeIterator) Next() (row.Row, bool, error) {
	if !it.onRight {
		r, ok, err := it.left.Next()
		if err != nil {
			return nil, false, err
		}
		if ok {
			return r, true, nil
		}
		it.onRight = true
	}
	return it.right.Next()
}

func (it *mergeIterator) Close() error {
	err1 := it.left.Close()
	err2 := it.right.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
