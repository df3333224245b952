// executor drives a Plan through the operator package: an ordered sequence
// of (step key, operator chain) pairs, each chain composed left-to-right
// starting from the environment's current __result__. The terminal
// __result__ is materialized into plain maps once every step has run, and
// every resource opened along the way is closed exactly once.
package executor

import (
	pkgerrors "github.com/pkg/errors"

	"github.com/flatbase/flatbase/errs"
	"github.com/flatbase/flatbase/operator"
	"github.com/flatbase/flatbase/row"
)

// ResultKey is the reserved step key the terminal result is read from.
const ResultKey = "__result__"

// Step is one entry of a Plan: a chain of operators applied in order,
// starting from the environment's current __result__, with its output
// bound to Key. Each chain element is either an operator.Operator or an
// operator.EnvOperator (Merge and the joins, which reference another step
// by key); the executor dispatches to whichever it implements.
type Step struct {
	Key   string
	Chain []any
}

// Plan is the fully chosen operator graph the executor runs; there is no
// planning or optimization step, the caller supplies the chains.
type Plan struct {
	Steps []Step
}

// Result is the terminal materialized output: ordered column names and the
// rows mapped back to {column_name: value}.
type Result struct {
	Columns []string
	Rows    []map[string]any
}

// env is the result environment: step key to intermediate result, plus the
// accumulated list of row iterators opened so far, closed exactly once at
// the end of Execute regardless of where an error occurs.
type env struct {
	byKey     map[string]operator.IntermediateResult
	resources []operator.RowIterator
}

// Execute runs plan's steps in order and returns the terminal __result__
// materialized into Result.
func Execute(plan *Plan) (*Result, error) {
	e := &env{byKey: map[string]operator.IntermediateResult{}}

	var runErr error
	for _, step := range plan.Steps {
		cur, ok := e.byKey[ResultKey]
		if !ok {
			cur = operator.IntermediateResult{}
		}
		for _, op := range step.Chain {
			var next operator.IntermediateResult
			var err error
			switch t := op.(type) {
			case operator.EnvOperator:
				next, err = t.ApplyEnv(cur, e.Lookup)
			case operator.Operator:
				next, err = t.Apply(cur)
			default:
				err = pkgerrors.Wrapf(errs.ErrUnsupportedOp, "chain element %T is not an operator", op)
			}
			if err != nil {
				runErr = err
				break
			}
			cur = next
		}
		if runErr != nil {
			break
		}
		if cur.Rows != nil {
			e.resources = append(e.resources, cur.Rows)
		}
		e.byKey[step.Key] = cur
	}

	if runErr != nil {
		e.closeAll()
		return nil, runErr
	}

	final, ok := e.byKey[ResultKey]
	if !ok {
		e.closeAll()
		return nil, pkgerrors.Wrap(errs.ErrMissingStep, "plan produced no __result__")
	}

	rows, err := materialize(final.Rows)
	closeErr := e.closeAll()
	if err != nil {
		return nil, err
	}
	if closeErr != nil {
		return nil, closeErr
	}

	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		out[i] = row.ToMap(final.Columns, r)
	}
	return &Result{Columns: final.Columns.Names(), Rows: out}, nil
}

func materialize(it operator.RowIterator) ([]row.Row, error) {
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

func (e *env) closeAll() error {
	var firstErr error
	for _, r := range e.resources {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Lookup returns the intermediate result bound to key; Execute passes it to
// the ApplyEnv of operators (Merge, the joins) that reference another step.
func (e *env) Lookup(key string) (operator.IntermediateResult, bool) {
	r, ok := e.byKey[key]
	return r, ok
}
