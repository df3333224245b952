package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flatbase/flatbase/engine"
	"github.com/flatbase/flatbase/operator"
)

func TestParseComparison(t *testing.T) {
	cases := map[string]operator.Comparison{
		"=": operator.Eq, "!=": operator.Neq, "<>": operator.Neq,
		"<": operator.Lt, "<=": operator.Lte, ">": operator.Gt, ">=": operator.Gte,
	}
	for s, want := range cases {
		got, err := parseComparison(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := parseComparison("~=")
	assert.Error(t, err)
}

func TestCoerceLiteral(t *testing.T) {
	assert.Equal(t, int32(30), coerceLiteral(float64(30)))
	assert.Equal(t, float32(30.5), coerceLiteral(float64(30.5)))
	assert.Equal(t, "paris", coerceLiteral("paris"))
}

func TestBuildPlanDecodesFullChain(t *testing.T) {
	doc := []byte(`[
		{"key": "people", "chain": [
			{"op": "scan_csv", "table": "person"},
			{"op": "projection", "columns": ["name", "age", "city"]},
			{"op": "selection",
			 "pred1": {"left": "age", "cmp": ">", "right_lit": 30},
			 "connector": "and",
			 "pred2": {"left": "age", "cmp": "<", "right_lit": 70}},
			{"op": "sort", "fields": [{"column": "age"}]},
			{"op": "limit", "n": 2}
		]},
		{"key": "__result__", "chain": [
			{"op": "scan_heap", "table": "dog"},
			{"op": "nested_loops_join",
			 "pred": {"left": "city", "cmp": "=", "right": "people/city"},
			 "other_key": "people"},
			{"op": "limit", "n": 2}
		]}
	]`)

	e := engine.New()
	plan, err := buildPlan(doc, e)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 2)

	people := plan.Steps[0]
	assert.Equal(t, "people", people.Key)
	require.Len(t, people.Chain, 5)
	assert.IsType(t, operator.ScanCSV{}, people.Chain[0])
	assert.IsType(t, operator.Projection{}, people.Chain[1])
	sel := people.Chain[2].(operator.Selection)
	assert.True(t, sel.HasPred2)
	assert.Equal(t, int32(30), sel.Pred1.RightLit)
	assert.IsType(t, operator.Sort{}, people.Chain[3])
	assert.Equal(t, operator.Limit{N: 2}, people.Chain[4])

	result := plan.Steps[1]
	assert.Equal(t, "__result__", result.Key)
	require.Len(t, result.Chain, 3)
	assert.IsType(t, operator.ScanHeap{}, result.Chain[0])
	join := result.Chain[1].(operator.NestedLoopsJoin)
	assert.Equal(t, "people", join.OtherKey)
	assert.Equal(t, "people/city", join.Pred.RightCol)
}

func TestBuildPlanUnknownOperator(t *testing.T) {
	doc := []byte(`[{"key": "__result__", "chain": [{"op": "bogus"}]}]`)
	_, err := buildPlan(doc, engine.New())
	assert.Error(t, err)
}

func TestBuildPlanAggregate(t *testing.T) {
	doc := []byte(`[{"key": "__result__", "chain": [
		{"op": "aggregate", "group_cols": ["city"],
		 "specs": [{"func": "count", "src_col": "name", "out_col": "n"}]}
	]}]`)
	plan, err := buildPlan(doc, engine.New())
	require.NoError(t, err)
	agg := plan.Steps[0].Chain[0].(operator.Aggregate)
	assert.Equal(t, []string{"city"}, agg.GroupCols)
	assert.Equal(t, operator.Count, agg.Specs[0].Func)
}
