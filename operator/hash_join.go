package operator

import (
	pkgerrors "github.com/pkg/errors"

	"github.com/flatbase/flatbase/errs"
	"github.com/flatbase/flatbase/row"
)

// HashJoin requires an equality predicate. It builds a multimap from the
// left (__result__) input keyed by the predicate's left column, then for
// each right row emits one joined row per matching left row. Same rename
// rule as NestedLoopsJoin.
type HashJoin struct {
	Pred     Predicate
	OtherKey string
}

func (j HashJoin) ApplyEnv(in IntermediateResult, lookup Lookup) (IntermediateResult, error) {
	leftCol, rightCol, err := equalityKey(j.Pred)
	if err != nil {
		in.Rows.Close()
		return IntermediateResult{}, err
	}
	other, ok := lookup(j.OtherKey)
	if !ok {
		in.Rows.Close()
		return IntermediateResult{}, pkgerrors.Wrapf(errs.ErrMissingStep, "hash join references unknown step %q", j.OtherKey)
	}

	leftPos, err := in.Columns.Position(leftCol)
	if err != nil {
		in.Rows.Close()
		return IntermediateResult{}, err
	}
	leftRows, err := drain(in.Rows)
	if err != nil {
		return IntermediateResult{}, err
	}

	build := map[any][]row.Row{}
	for _, r := range leftRows {
		k := r[leftPos]
		build[k] = append(build[k], r)
	}

	outCols := row.Join(in.Columns, other.Columns, j.OtherKey)
	rightPos, err := resolveOtherColumn(other.Columns, j.OtherKey, rightCol)
	if err != nil {
		return IntermediateResult{}, err
	}

	return IntermediateResult{
		Columns: outCols,
		Rows: &hashJoinIterator{
			right:    other.Rows,
			build:    build,
			rightPos: rightPos,
		},
	}, nil
}

type hashJoinIterator struct {
	right    RowIterator
	build    map[any][]row.Row
	rightPos int

	matches []row.Row
	curR    row.Row
	mPos    int
}

func (it *hashJoinIterator) Next() (row.Row, bool, error) {
	for {
		if it.mPos < len(it.matches) {
			l := it.matches[it.mPos]
			it.mPos++
			return row.Concat(l, it.curR), true, nil
		}
		r, ok, err := it.right.Next()
		if err != nil || !ok {
			return nil, ok, err
		}
		it.curR = r
		it.matches = it.build[r[it.rightPos]]
		it.mPos = 0
	}
}

func (it *hashJoinIterator) Close() error {
	return it.right.Close()
}
