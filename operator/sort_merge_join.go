package operator

import (
	pkgerrors "github.com/pkg/errors"

	"github.com/flatbase/flatbase/errs"
	"github.com/flatbase/flatbase/row"
)

// SortMergeJoin requires an equality predicate and both inputs pre-sorted
// ascending by their join key. It advances the lesser side, materializes
// the current key's group on one side when keys match, and emits the full
// cross-product of the two same-key groups before advancing past them.
type SortMergeJoin struct {
	Pred     Predicate
	OtherKey string
}

func (j SortMergeJoin) ApplyEnv(in IntermediateResult, lookup Lookup) (IntermediateResult, error) {
	leftCol, rightCol, err := equalityKey(j.Pred)
	if err != nil {
		in.Rows.Close()
		return IntermediateResult{}, err
	}
	other, ok := lookup(j.OtherKey)
	if !ok {
		in.Rows.Close()
		return IntermediateResult{}, pkgerrors.Wrapf(errs.ErrMissingStep, "sort-merge join references unknown step %q", j.OtherKey)
	}
	leftPos, err := in.Columns.Position(leftCol)
	if err != nil {
		in.Rows.Close()
		return IntermediateResult{}, err
	}
	rightPos, err := resolveOtherColumn(other.Columns, j.OtherKey, rightCol)
	if err != nil {
		in.Rows.Close()
		return IntermediateResult{}, err
	}

	outCols := row.Join(in.Columns, other.Columns, j.OtherKey)
	return IntermediateResult{
		Columns: outCols,
		Rows: &sortMergeJoinIterator{
			left:     in.Rows,
			right:    other.Rows,
			leftPos:  leftPos,
			rightPos: rightPos,
		},
	}, nil
}

type sortMergeJoinIterator struct {
	left, right       RowIterator
	leftPos, rightPos int

	leftGroup, rightGroup       []row.Row
	leftPeek, rightPeek         row.Row
	haveLeftPeek, haveRightPeek bool
	crossing                    bool
	li, ri                      int
}

func (it *sortMergeJoinIterator) peekLeft() (row.Row, bool, error) {
	if it.haveLeftPeek {
		return it.leftPeek, true, nil
	}
	r, ok, err := it.left.Next()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	it.leftPeek, it.haveLeftPeek = r, true
	return r, true, nil
}

func (it *sortMergeJoinIterator) peekRight() (row.Row, bool, error) {
	if it.haveRightPeek {
		return it.rightPeek, true, nil
	}
	r, ok, err := it.right.Next()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	it.rightPeek, it.haveRightPeek = r, true
	return r, true, nil
}

func (it *sortMergeJoinIterator) consumeLeftGroup(key any) ([]row.Row, error) {
	var group []row.Row
	for {
		r, ok, err := it.peekLeft()
		if err != nil {
			return nil, err
		}
		if !ok || compareKeys(r[it.leftPos], key) != 0 {
			return group, nil
		}
		group = append(group, r)
		it.haveLeftPeek = false
	}
}

func (it *sortMergeJoinIterator) consumeRightGroup(key any) ([]row.Row, error) {
	var group []row.Row
	for {
		r, ok, err := it.peekRight()
		if err != nil {
			return nil, err
		}
		if !ok || compareKeys(r[it.rightPos], key) != 0 {
			return group, nil
		}
		group = append(group, r)
		it.haveRightPeek = false
	}
}

func compareKeys(a, b any) int {
	c, err := compareValues(a, b)
	if err != nil {
		return -1
	}
	return c
}

func (it *sortMergeJoinIterator) Next() (row.Row, bool, error) {
	for {
		if it.crossing {
			if it.li < len(it.leftGroup) {
				l := it.leftGroup[it.li]
				r := it.rightGroup[it.ri]
				it.ri++
				if it.ri >= len(it.rightGroup) {
					it.ri = 0
					it.li++
				}
				return row.Concat(l, r), true, nil
			}
			it.crossing = false
		}

		lr, lok, err := it.peekLeft()
		if err != nil {
			return nil, false, err
		}
		rr, rok, err := it.peekRight()
		if err != nil {
			return nil, false, err
		}
		if !lok || !rok {
			return nil, false, nil
		}

		c, err := compareValues(lr[it.leftPos], rr[it.rightPos])
		if err != nil {
			return nil, false, err
		}
		if c < 0 {
			it.haveLeftPeek = false
			continue
		}
		if c > 0 {
			it.haveRightPeek = false
			continue
		}

		key := lr[it.leftPos]
		leftGroup, err := it.consumeLeftGroup(key)
		if err != nil {
			return nil, false, err
		}
		rightGroup, err := it.consumeRightGroup(key)
		if err != nil {
			return nil, false, err
		}
		it.leftGroup, it.rightGroup = leftGroup, rightGroup
		it.li, it.ri = 0, 0
		it.crossing = true
	}
}

func (it *sortMergeJoinIterator) Close() error {
	err1 := it.left.Close()
	err2 := it.right.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
