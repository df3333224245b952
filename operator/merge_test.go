package operator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flatbase/flatbase/row"
)

func lookupOf(results map[string]IntermediateResult) Lookup {
	return func(key string) (IntermediateResult, bool) {
		r, ok := results[key]
		return r, ok
	}
}

func TestMergeConcatenatesLeftThenRight(t *testing.T) {
	left := intermediateOf([]string{"name"}, []row.Row{{"Rex"}})
	other := intermediateOf([]string{"name"}, []row.Row{{"Bob"}, {"Rex"}})

	out, err := Merge{OtherKey: "other"}.ApplyEnv(left, lookupOf(map[string]IntermediateResult{"other": other}))
	require.NoError(t, err)
	assert.Equal(t, []row.Row{{"Rex"}, {"Bob"}, {"Rex"}}, drainAll(t, out.Rows))
}

func TestMergeArityMismatch(t *testing.T) {
	left := intermediateOf([]string{"name"}, []row.Row{{"Rex"}})
	other := intermediateOf([]string{"name", "age"}, []row.Row{{"Bob", int32(1)}})

	_, err := Merge{OtherKey: "other"}.ApplyEnv(left, lookupOf(map[string]IntermediateResult{"other": other}))
	assert.Error(t, err)
}

func TestMergeUnknownStep(t *testing.T) {
	left := intermediateOf([]string{"name"}, []row.Row{{"Rex"}})
	_, err := Merge{OtherKey: "missing"}.ApplyEnv(left, lookupOf(nil))
	assert.Error(t, err)
}
