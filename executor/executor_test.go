package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flatbase/flatbase/operator"
	"github.com/flatbase/flatbase/row"
)

func sliceOp(names []string, rows []row.Row) operator.Operator {
	return scanStub{names: names, rows: rows}
}

// scanStub is a minimal operator.Operator a chain's first element can be:
// it ignores its input and always yields the same fixed result, standing in
// for a real scan in tests that don't need a file on disk.
type scanStub struct {
	names []string
	rows  []row.Row
}

func (s scanStub) Apply(_ operator.IntermediateResult) (operator.IntermediateResult, error) {
	cols := row.NewColumnIndex(s.names)
	sliced := make([]row.Row, len(s.rows))
	copy(sliced, s.rows)
	return operator.IntermediateResult{Columns: cols, Rows: stubIterator(sliced)}, nil
}

type stubIterator []row.Row

func (s *stubIterator) Next() (row.Row, bool, error) {
	rows := *s
	if len(rows) == 0 {
		return nil, false, nil
	}
	r := rows[0]
	*s = rows[1:]
	return r, true, nil
}

func (s *stubIterator) Close() error { return nil }

func TestExecuteSingleStep(t *testing.T) {
	plan := &Plan{Steps: []Step{
		{Key: ResultKey, Chain: []any{
			sliceOp([]string{"name", "age"}, []row.Row{{"Rex", int32(3)}}),
			operator.Projection{Columns: []string{"name"}},
		}},
	}}
	result, err := Execute(plan)
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, result.Columns)
	assert.Equal(t, []map[string]any{{"name": "Rex"}}, result.Rows)
}

func TestExecuteMergeAcrossSteps(t *testing.T) {
	plan := &Plan{Steps: []Step{
		{Key: "a", Chain: []any{sliceOp([]string{"name"}, []row.Row{{"Rex"}})}},
		{Key: ResultKey, Chain: []any{
			sliceOp([]string{"name"}, []row.Row{{"Bob"}}),
			operator.Merge{OtherKey: "a"},
		}},
	}}
	result, err := Execute(plan)
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"name": "Bob"}, {"name": "Rex"}}, result.Rows)
}

func TestExecuteMissingResultStep(t *testing.T) {
	plan := &Plan{Steps: []Step{
		{Key: "a", Chain: []any{sliceOp([]string{"name"}, []row.Row{{"Rex"}})}},
	}}
	_, err := Execute(plan)
	assert.Error(t, err)
}

func TestExecutePropagatesOperatorError(t *testing.T) {
	plan := &Plan{Steps: []Step{
		{Key: ResultKey, Chain: []any{
			sliceOp([]string{"name"}, []row.Row{{"Rex"}}),
			operator.Selection{Pred1: operator.Predicate{LeftCol: "missing", Cmp: operator.Eq, RightIsLit: true, RightLit: "Rex"}},
		}},
	}}
	_, err := Execute(plan)
	assert.Error(t, err)
}

func TestExecuteProjectionSilentlyExcludesUnknownColumns(t *testing.T) {
	plan := &Plan{Steps: []Step{
		{Key: ResultKey, Chain: []any{
			sliceOp([]string{"name"}, []row.Row{{"Rex"}}),
			operator.Projection{Columns: []string{"missing"}},
		}},
	}}
	result, err := Execute(plan)
	require.NoError(t, err)
	assert.Empty(t, result.Columns)
}
