package operator

import "github.com/flatbase/flatbase/row"

// Selection keeps only rows matching Pred1, optionally combined with Pred2
// through Connector (And/Or). A zero Connector with no Pred2 means Pred1
// alone gates each row.
type Selection struct {
	Pred1     Predicate
	Connector Connector
	Pred2     *Predicate
	HasPred2  bool
}

func (s Selection) Apply(in IntermediateResult) (IntermediateResult, error) {
	return IntermediateResult{
		Columns: in.Columns,
		Rows:    &selectionIterator{upstream: in.Rows, cols: in.Columns, sel: s},
	}, nil
}

type selectionIterator struct {
	upstream RowIterator
	cols     *row.ColumnIndex
	sel      Selection
}

func (it *selectionIterator) Next() (row.Row, bool, error) {
	for {
		r, ok, err := it.upstream.Next()
		if err != nil || !ok {
			return nil, ok, err
		}
		keep, err := it.matches(r)
		if err != nil {
			return nil, false, err
		}
		if keep {
			return r, true, nil
		}
	}
}

func (it *selectionIterator) matches(r row.Row) (bool, error) {
	v1, err := it.sel.Pred1.Eval(it.cols, r)
	if err != nil {
		return false, err
	}
	if !it.sel.HasPred2 {
		return v1, nil
	}
	if it.sel.Connector == Or {
		if v1 {
			return true, nil
		}
		return it.sel.Pred2.Eval(it.cols, r)
	}
	if !v1 {
		return false, nil
	}
	return it.sel.Pred2.Eval(it.cols, r)
}

func (it *selectionIterator) Close() error {
	return it.upstream.Close()
}
