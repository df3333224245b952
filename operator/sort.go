package operator

import "sort"

// SortField orders by a single column, ascending unless Desc is set.
type SortField struct {
	Column string
	Desc   bool
}

// Sort materializes the upstream result and orders it by Fields, the
// earliest field taking precedence on ties. Stability is not guaranteed.
type Sort struct {
	Fields []SortField
}

func (s Sort) Apply(in IntermediateResult) (IntermediateResult, error) {
	rows, err := drain(in.Rows)
	if err != nil {
		return IntermediateResult{}, err
	}
	positions := make([]int, len(s.Fields))
	for i, f := range s.Fields {
		p, err := in.Columns.Position(f.Column)
		if err != nil {
			return IntermediateResult{}, err
		}
		positions[i] = p
	}

	var sortErr error
	sort.Slice(rows, func(a, b int) bool {
		for i, f := range s.Fields {
			p := positions[i]
			c, err := compareValues(rows[a][p], rows[b][p])
			if err != nil {
				sortErr = err
				return false
			}
			if c == 0 {
				continue
			}
			if f.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	if sortErr != nil {
		return IntermediateResult{}, sortErr
	}

	return IntermediateResult{
		Columns: in.Columns,
		Rows:    &sliceIterator{rows: rows},
	}, nil
}
