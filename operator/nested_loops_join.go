package operator

import (
	pkgerrors "github.com/pkg/errors"

	"github.com/flatbase/flatbase/errs"
	"github.com/flatbase/flatbase/row"
)

// NestedLoopsJoin cross-products __result__ (the left, outer side) with
// env[OtherKey] (the right, inner side, materialized once and rescanned per
// left row) keeping pairs where Pred holds. Any predicate shape is
// accepted, not just equality.
type NestedLoopsJoin struct {
	Pred     Predicate
	OtherKey string
}

func (j NestedLoopsJoin) ApplyEnv(in IntermediateResult, lookup Lookup) (IntermediateResult, error) {
	other, ok := lookup(j.OtherKey)
	if !ok {
		in.Rows.Close()
		return IntermediateResult{}, pkgerrors.Wrapf(errs.ErrMissingStep, "nested loops join references unknown step %q", j.OtherKey)
	}
	rightRows, err := drain(other.Rows)
	if err != nil {
		in.Rows.Close()
		return IntermediateResult{}, err
	}
	outCols := row.Join(in.Columns, other.Columns, j.OtherKey)
	return IntermediateResult{
		Columns: outCols,
		Rows: &nestedLoopsIterator{
			left:    in.Rows,
			outCols: outCols,
			right:   rightRows,
			pred:    j.Pred,
		},
	}, nil
}

type nestedLoopsIterator struct {
	left    RowIterator
	outCols *row.ColumnIndex
	right   []row.Row
	pred    Predicate

	curLeft  row.Row
	haveLeft bool
	rightPos int
}

func (it *nestedLoopsIterator) Next() (row.Row, bool, error) {
	for {
		if !it.haveLeft {
			l, ok, err := it.left.Next()
			if err != nil || !ok {
				return nil, ok, err
			}
			it.curLeft = l
			it.haveLeft = true
			it.rightPos = 0
		}
		for it.rightPos < len(it.right) {
			r := it.right[it.rightPos]
			it.rightPos++
			combined := row.Concat(it.curLeft, r)
			ok, err := it.pred.Eval(it.outCols, combined)
			if err != nil {
				return nil, false, err
			}
			if ok {
				return combined, true, nil
			}
		}
		it.haveLeft = false
	}
}

func (it *nestedLoopsIterator) Close() error {
	return it.left.Close()
}
