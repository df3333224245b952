// operator implements the lazy relational operators that make up a plan's
// chains: scans over CSV and heap files, projection, selection, limit,
// sort, merge, the three join strategies, and streaming aggregation. Every
// operator consumes an IntermediateResult and produces one, pulled one row
// at a time through RowIterator.Next.
package operator

import (
	"github.com/flatbase/flatbase/row"
)

// RowIterator is the pull-based contract every operator's output
// implements: one row per Next call, ok false once exhausted. Close
// releases whatever resources the iterator's chain opened. The executor
// closes every step's result once the plan is done; operators that drain
// their input (Sort, the join build sides) or fail while being applied
// close their upstream too, so Close may be called more than once.
type RowIterator interface {
	Next() (row.Row, bool, error)
	Close() error
}

// IntermediateResult pairs a row stream with the column index describing
// its shape.
type IntermediateResult struct {
	Columns *row.ColumnIndex
	Rows    RowIterator
}

// Operator builds an IntermediateResult from the previous step's result. The
// first operator in a chain receives the environment's current
// __result__ (which may be a zero-value IntermediateResult for a scan that
// doesn't consume an upstream result).
type Operator interface {
	Apply(in IntermediateResult) (IntermediateResult, error)
}

// Lookup resolves a step key already bound in the result environment.
// Merge and the join operators use it to pull in the other side of their
// operation by key, since a chain is built before any step runs.
type Lookup func(key string) (IntermediateResult, bool)

// EnvOperator is implemented by operators that reference another step of
// the plan by key (Merge, NestedLoopsJoin, HashJoin, SortMergeJoin). The
// executor calls ApplyEnv instead of Apply for these, supplying a Lookup
// into its environment.
type EnvOperator interface {
	ApplyEnv(in IntermediateResult, lookup Lookup) (IntermediateResult, error)
}

// sliceIterator adapts a pre-materialized []row.Row (used by Sort's sorted
// output) into a RowIterator.
type sliceIterator struct {
	rows []row.Row
	pos  int
	// closeFn, if set, is invoked once on Close to release any upstream
	// resource this slice was drained from.
	closeFn func() error
}

func (s *sliceIterator) Next() (row.Row, bool, error) {
	if s.pos >= len(s.rows) {
		return nil, false, nil
	}
	r := s.rows[s.pos]
	s.pos++
	return r, true, nil
}

func (s *sliceIterator) Close() error {
	if s.closeFn != nil {
		return s.closeFn()
	}
	return nil
}

// drain pulls every row out of it, closing it afterward.
func drain(it RowIterator) ([]row.Row, error) {
	defer it.Close()
	var rows []row.Row
	for {
		r, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return rows, nil
		}
		rows = append(rows, r)
	}
}
