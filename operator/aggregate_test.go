package operator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flatbase/flatbase/row"
)

func TestAggregateCountPerGroup(t *testing.T) {
	in := intermediateOf([]string{"city", "name"}, []row.Row{
		{"Paris", "Rex"},
		{"Paris", "Bob"},
		{"London", "Ada"},
	})
	agg := Aggregate{
		GroupCols: []string{"city"},
		Specs:     []AggSpec{{Func: Count, SrcCol: "name", OutCol: "n"}},
	}
	out, err := agg.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "n"}, out.Columns.Names())
	assert.Equal(t, []row.Row{
		{"Paris", int64(2)},
		{"London", int64(1)},
	}, drainAll(t, out.Rows))
}

func TestAggregateAverage(t *testing.T) {
	in := intermediateOf([]string{"city", "age"}, []row.Row{
		{"Paris", int32(20)},
		{"Paris", int32(40)},
	})
	agg := Aggregate{
		GroupCols: []string{"city"},
		Specs:     []AggSpec{{Func: Average, SrcCol: "age", OutCol: "avg_age"}},
	}
	out, err := agg.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, []row.Row{
		{"Paris", float64(30)},
	}, drainAll(t, out.Rows))
}

func TestAggregateWholeInputAsOneGroup(t *testing.T) {
	in := intermediateOf([]string{"age"}, []row.Row{{int32(1)}, {int32(2)}, {int32(3)}})
	agg := Aggregate{Specs: []AggSpec{{Func: Count, SrcCol: "age", OutCol: "n"}}}
	out, err := agg.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, []row.Row{{int64(3)}}, drainAll(t, out.Rows))
}

func TestAggregateUnknownFunc(t *testing.T) {
	_, err := newAccumulator(AggFunc(99))
	assert.Error(t, err)
}
