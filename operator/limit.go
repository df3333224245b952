package operator

import "github.com/flatbase/flatbase/row"

// Limit caps the number of rows pulled through to N and stops pulling from
// the upstream iterator once the cap is reached. The upstream is closed
// only when the Limit's own iterator is closed.
type Limit struct {
	N int
}

func (l Limit) Apply(in IntermediateResult) (IntermediateResult, error) {
	return IntermediateResult{
		Columns: in.Columns,
		Rows:    &limitIterator{upstream: in.Rows, remaining: l.N},
	}, nil
}

type limitIterator struct {
	upstream  RowIterator
	remaining int
	done      bool
}

func (it *limitIterator) Next() (row.Row, bool, error) {
	if it.done || it.remaining <= 0 {
		return nil, false, nil
	}
	r, ok, err := it.upstream.Next()
	if err != nil || !ok {
		return nil, ok, err
	}
	it.remaining--
	if it.remaining == 0 {
		it.done = true
	}
	return r, true, nil
}

func (it *limitIterator) Close() error {
	return it.upstream.Close()
}
