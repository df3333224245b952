package operator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flatbase/flatbase/row"
)

func intermediateOf(names []string, rows []row.Row) IntermediateResult {
	return IntermediateResult{
		Columns: row.NewColumnIndex(names),
		Rows:    &sliceIterator{rows: rows},
	}
}

func drainAll(t *testing.T, it RowIterator) []row.Row {
	t.Helper()
	var out []row.Row
	for {
		r, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		out = append(out, r)
	}
	require.NoError(t, it.Close())
	return out
}

func TestProjection(t *testing.T) {
	in := intermediateOf([]string{"name", "age", "city"}, []row.Row{
		{"Rex", int32(3), "Paris"},
	})
	out, err := Projection{Columns: []string{"city", "name"}}.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "city"}, out.Columns.Names())
	assert.Equal(t, []row.Row{{"Rex", "Paris"}}, drainAll(t, out.Rows))
}

func TestProjectionSilentlyExcludesUnknownColumns(t *testing.T) {
	in := intermediateOf([]string{"name", "age"}, []row.Row{
		{"Rex", int32(3)},
	})
	out, err := Projection{Columns: []string{"name", "missing"}}.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, out.Columns.Names())
	assert.Equal(t, []row.Row{{"Rex"}}, drainAll(t, out.Rows))
}

func TestSelectionSinglePredicate(t *testing.T) {
	in := intermediateOf([]string{"age"}, []row.Row{{int32(20)}, {int32(40)}, {int32(80)}})
	out, err := Selection{Pred1: Predicate{LeftCol: "age", Cmp: Gt, RightIsLit: true, RightLit: int32(30)}}.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, []row.Row{{int32(40)}, {int32(80)}}, drainAll(t, out.Rows))
}

func TestSelectionAndConnector(t *testing.T) {
	in := intermediateOf([]string{"age"}, []row.Row{{int32(20)}, {int32(40)}, {int32(80)}})
	sel := Selection{
		Pred1:     Predicate{LeftCol: "age", Cmp: Gt, RightIsLit: true, RightLit: int32(30)},
		Connector: And,
		Pred2:     &Predicate{LeftCol: "age", Cmp: Lt, RightIsLit: true, RightLit: int32(70)},
		HasPred2:  true,
	}
	out, err := sel.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, []row.Row{{int32(40)}}, drainAll(t, out.Rows))
}

func TestSelectionOrConnector(t *testing.T) {
	in := intermediateOf([]string{"age"}, []row.Row{{int32(20)}, {int32(40)}, {int32(80)}})
	sel := Selection{
		Pred1:     Predicate{LeftCol: "age", Cmp: Lt, RightIsLit: true, RightLit: int32(25)},
		Connector: Or,
		Pred2:     &Predicate{LeftCol: "age", Cmp: Gt, RightIsLit: true, RightLit: int32(70)},
		HasPred2:  true,
	}
	out, err := sel.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, []row.Row{{int32(20)}, {int32(80)}}, drainAll(t, out.Rows))
}

func TestSelectionAndConnectorShortCircuits(t *testing.T) {
	in := intermediateOf([]string{"age"}, []row.Row{{int32(20)}})
	sel := Selection{
		Pred1:     Predicate{LeftCol: "age", Cmp: Gt, RightIsLit: true, RightLit: int32(30)},
		Connector: And,
		Pred2:     &Predicate{LeftCol: "missing", Cmp: Eq, RightIsLit: true, RightLit: int32(0)},
		HasPred2:  true,
	}
	out, err := sel.Apply(in)
	require.NoError(t, err)
	assert.Empty(t, drainAll(t, out.Rows))
}

func TestSelectionOrConnectorShortCircuits(t *testing.T) {
	in := intermediateOf([]string{"age"}, []row.Row{{int32(20)}})
	sel := Selection{
		Pred1:     Predicate{LeftCol: "age", Cmp: Lt, RightIsLit: true, RightLit: int32(30)},
		Connector: Or,
		Pred2:     &Predicate{LeftCol: "missing", Cmp: Eq, RightIsLit: true, RightLit: int32(0)},
		HasPred2:  true,
	}
	out, err := sel.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, []row.Row{{int32(20)}}, drainAll(t, out.Rows))
}

func TestLimit(t *testing.T) {
	in := intermediateOf([]string{"n"}, []row.Row{{int32(1)}, {int32(2)}, {int32(3)}})
	out, err := Limit{N: 2}.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, []row.Row{{int32(1)}, {int32(2)}}, drainAll(t, out.Rows))
}

func TestLimitZero(t *testing.T) {
	in := intermediateOf([]string{"n"}, []row.Row{{int32(1)}})
	out, err := Limit{N: 0}.Apply(in)
	require.NoError(t, err)
	assert.Nil(t, drainAll(t, out.Rows))
}

func TestSortAscending(t *testing.T) {
	in := intermediateOf([]string{"age"}, []row.Row{{int32(40)}, {int32(3)}, {int32(29)}})
	out, err := Sort{Fields: []SortField{{Column: "age"}}}.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, []row.Row{{int32(3)}, {int32(29)}, {int32(40)}}, drainAll(t, out.Rows))
}

func TestSortDescendingMultiField(t *testing.T) {
	in := intermediateOf([]string{"age", "name"}, []row.Row{
		{int32(3), "Rex"},
		{int32(3), "Ada"},
		{int32(40), "Bob"},
	})
	out, err := Sort{Fields: []SortField{{Column: "age", Desc: true}, {Column: "name"}}}.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, []row.Row{
		{int32(40), "Bob"},
		{int32(3), "Ada"},
		{int32(3), "Rex"},
	}, drainAll(t, out.Rows))
}
