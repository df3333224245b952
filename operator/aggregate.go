package operator

import (
	pkgerrors "github.com/pkg/errors"

	"github.com/flatbase/flatbase/errs"
	"github.com/flatbase/flatbase/row"
)

// AggFunc names a built-in streaming aggregate function.
type AggFunc int

const (
	Count AggFunc = iota
	Average
)

// AggSpec describes one output aggregate column: apply Func to SrcCol,
// emitting the result under OutCol.
type AggSpec struct {
	Func   AggFunc
	SrcCol string
	OutCol string
}

// Aggregate streams through input clustered (sorted, or at least grouped
// contiguously) by GroupCols. When the group tuple changes it emits one row
// for the previous group: the group's values followed by one value per
// AggSpec. An empty GroupCols treats the whole input as one group.
//
// Each aggregate accumulator follows a three-state protocol: a sentinel
// START call initializes it from the first value of a new group, each
// subsequent value folds in, and a sentinel END call finalizes the output
// value.
type Aggregate struct {
	GroupCols []string
	Specs     []AggSpec
}

// accumulator is one running aggregate computation for one AggSpec within
// the current group.
type accumulator interface {
	start(v any) error
	accumulate(v any) error
	end() any
}

type countAcc struct {
	n int64
}

func (a *countAcc) start(v any) error      { a.n = 1; return nil }
func (a *countAcc) accumulate(v any) error { a.n++; return nil }
func (a *countAcc) end() any               { return a.n }

type averageAcc struct {
	sum   float64
	count int64
}

func (a *averageAcc) start(v any) error {
	f, ok := asFloat(v)
	if !ok {
		return pkgerrors.Wrap(errs.ErrSchemaViolation, "average requires a numeric column")
	}
	a.sum, a.count = f, 1
	return nil
}

func (a *averageAcc) accumulate(v any) error {
	f, ok := asFloat(v)
	if !ok {
		return pkgerrors.Wrap(errs.ErrSchemaViolation, "average requires a numeric column")
	}
	a.sum += f
	a.count++
	return nil
}

func (a *averageAcc) end() any {
	if a.count == 0 {
		return float64(0)
	}
	return a.sum / float64(a.count)
}

func newAccumulator(f AggFunc) (accumulator, error) {
	switch f {
	case Count:
		return &countAcc{}, nil
	case Average:
		return &averageAcc{}, nil
	default:
		return nil, pkgerrors.Wrap(errs.ErrUnsupportedOp, "unknown aggregate function")
	}
}

func (a Aggregate) Apply(in IntermediateResult) (IntermediateResult, error) {
	groupPositions := make([]int, len(a.GroupCols))
	for i, c := range a.GroupCols {
		p, err := in.Columns.Position(c)
		if err != nil {
			in.Rows.Close()
			return IntermediateResult{}, err
		}
		groupPositions[i] = p
	}
	srcPositions := make([]int, len(a.Specs))
	for i, s := range a.Specs {
		p, err := in.Columns.Position(s.SrcCol)
		if err != nil {
			in.Rows.Close()
			return IntermediateResult{}, err
		}
		srcPositions[i] = p
	}

	outNames := append([]string{}, a.GroupCols...)
	for _, s := range a.Specs {
		outNames = append(outNames, s.OutCol)
	}

	return IntermediateResult{
		Columns: row.NewColumnIndex(outNames),
		Rows: &aggregateIterator{
			upstream:       in.Rows,
			groupPositions: groupPositions,
			specs:          a.Specs,
			srcPositions:   srcPositions,
		},
	}, nil
}

// aggregateIterator holds only the current group's accumulators, not the
// rows that fed them; it suspends pulling from upstream only long enough to
// detect a group-key change, then emits the completed group immediately.
type aggregateIterator struct {
	upstream       RowIterator
	groupPositions []int
	specs          []AggSpec
	srcPositions   []int

	curKey    []any
	accs      []accumulator
	haveGroup bool
	done      bool
}

func (it *aggregateIterator) Next() (row.Row, bool, error) {
	if it.done {
		return nil, false, nil
	}
	for {
		r, ok, err := it.upstream.Next()
		if err != nil {
			return nil, false, err
		}
		if !ok {
			it.done = true
			if !it.haveGroup {
				return nil, false, nil
			}
			fr, err := it.flush()
			if err != nil {
				return nil, false, err
			}
			return fr, true, nil
		}

		key := make([]any, len(it.groupPositions))
		for i, p := range it.groupPositions {
			key[i] = r[p]
		}
		if !it.haveGroup {
			if err := it.startGroup(key, r); err != nil {
				return nil, false, err
			}
			continue
		}
		if keysEqual(it.curKey, key) {
			for i, acc := range it.accs {
				if err := acc.accumulate(r[it.srcPositions[i]]); err != nil {
					return nil, false, err
				}
			}
			continue
		}

		fr, err := it.flush()
		if err != nil {
			return nil, false, err
		}
		if err := it.startGroup(key, r); err != nil {
			return nil, false, err
		}
		return fr, true, nil
	}
}

func (it *aggregateIterator) startGroup(key []any, r row.Row) error {
	it.curKey = key
	it.accs = make([]accumulator, len(it.specs))
	for i, s := range it.specs {
		acc, err := newAccumulator(s.Func)
		if err != nil {
			return err
		}
		if err := acc.start(r[it.srcPositions[i]]); err != nil {
			return err
		}
		it.accs[i] = acc
	}
	it.haveGroup = true
	return nil
}

func (it *aggregateIterator) flush() (row.Row, error) {
	r := make(row.Row, 0, len(it.curKey)+len(it.accs))
	r = append(r, it.curKey...)
	for _, acc := range it.accs {
		r = append(r, acc.end())
	}
	return r, nil
}

func (it *aggregateIterator) Close() error {
	return it.upstream.Close()
}

func keysEqual(a, b []any) bool {
	for i := range a {
		c, err := compareValues(a[i], b[i])
		if err != nil || c != 0 {
			return false
		}
	}
	return true
}
