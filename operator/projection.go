package operator

import "github.com/flatbase/flatbase/row"

// Projection narrows each row down to the named columns, preserving the
// upstream column order. Names that don't match an upstream column are
// silently excluded rather than treated as an error.
type Projection struct {
	Columns []string
}

func (p Projection) Apply(in IntermediateResult) (IntermediateResult, error) {
	cols, positions, err := in.Columns.Project(p.Columns)
	if err != nil {
		in.Rows.Close()
		return IntermediateResult{}, err
	}
	return IntermediateResult{
		Columns: cols,
		Rows:    &projectionIterator{upstream: in.Rows, positions: positions},
	}, nil
}

type projectionIterator struct {
	upstream  RowIterator
	positions []int
}

func (it *projectionIterator) Next() (row.Row, bool, error) {
	r, ok, err := it.upstream.Next()
	if err != nil || !ok {
		return nil, ok, err
	}
	out := make(row.Row, len(it.positions))
	for i, p := range it.positions {
		out[i] = r[p]
	}
	return out, true, nil
}

func (it *projectionIterator) Close() error {
	return it.upstream.Close()
}
