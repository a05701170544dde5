package xsection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evenProfile() Profile {
	return Profile{
		Stations: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		Depths:   []float64{0, 1, 2, 3, 4, 5, 4, 3, 2, 1, 0},
	}
}

func TestSimplify_GroupsInteriorPoints(t *testing.T) {
	out, err := Simplify(evenProfile(), 50, AggMax)
	require.NoError(t, err)

	// threshold 5: the buffer [2,3,4,5,4] is emitted at station 6, the
	// partial buffer [3,2] before the last two points is dropped.
	assert.Equal(t, []float64{0, 1, 6, 9, 10}, out.Stations)
	assert.Equal(t, []float64{0, 1, 5, 1, 0}, out.Depths)
}

func TestSimplify_Aggregations(t *testing.T) {
	tests := []struct {
		agg      Aggregation
		expected float64
	}{
		{AggMax, 5},
		{AggMin, 2},
		{AggMean, 3.6},
	}

	for _, tt := range tests {
		t.Run(string(tt.agg), func(t *testing.T) {
			out, err := Simplify(evenProfile(), 50, tt.agg)
			require.NoError(t, err)
			require.Len(t, out.Depths, 5)
			assert.InDelta(t, tt.expected, out.Depths[2], 1e-12)
		})
	}
}

func TestSimplify_KeepsBoundaryPoints(t *testing.T) {
	p := Profile{
		Stations: []float64{0, 2.5, 3, 7, 11, 12.5, 40, 41},
		Depths:   []float64{0.3, 1.2, 2.8, 3.9, 2.2, 1.1, 0.4, 0},
	}
	for _, pct := range []float64{0, 1, 10, 50, 100} {
		out, err := Simplify(p, pct, AggMean)
		require.NoError(t, err)
		n := out.Len()
		require.GreaterOrEqual(t, n, 4)
		assert.Equal(t, p.Stations[:2], out.Stations[:2])
		assert.Equal(t, p.Depths[:2], out.Depths[:2])
		assert.Equal(t, p.Stations[p.Len()-2:], out.Stations[n-2:])
		assert.Equal(t, p.Depths[p.Len()-2:], out.Depths[n-2:])
		assertNonDecreasing(t, out.Stations)
	}
}

func TestSimplify_Idempotent(t *testing.T) {
	profiles := []Profile{
		evenProfile(),
		{
			Stations: []float64{0, 0.5, 1.5, 2, 6, 6.5, 9, 13, 20, 20},
			Depths:   []float64{0, 1, 2, 2.5, 3, 3.5, 2.5, 1.5, 1, 0},
		},
	}
	for _, p := range profiles {
		for _, agg := range []Aggregation{AggMin, AggMax, AggMean} {
			once, err := Simplify(p, 20, agg)
			require.NoError(t, err)
			twice, err := Simplify(once, 20, agg)
			require.NoError(t, err)
			assert.Equal(t, once, twice)
		}
	}
}

func TestSimplify_ZeroThresholdKeepsEverything(t *testing.T) {
	p := evenProfile()
	out, err := Simplify(p, 0, AggMean)
	require.NoError(t, err)
	assert.Equal(t, p, out)
}

func TestSimplify_ShortProfiles(t *testing.T) {
	short := Profile{Stations: []float64{0, 4, 9}, Depths: []float64{0, 2, 0}}
	out, err := Simplify(short, 50, AggMax)
	require.NoError(t, err)
	assert.Equal(t, short, out)

	// the result must not share memory with the input
	out.Depths[1] = 99
	assert.Equal(t, 2.0, short.Depths[1])

	empty, err := Simplify(Profile{}, 50, AggMax)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
}

func TestSimplify_Errors(t *testing.T) {
	_, err := Simplify(Profile{Stations: []float64{0, 1}, Depths: []float64{0}}, 5, AggMax)
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = Simplify(evenProfile(), -1, AggMax)
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = Simplify(evenProfile(), 5, Aggregation("median"))
	assert.Error(t, err)
}

func TestParseAggregation(t *testing.T) {
	agg, err := ParseAggregation(" MAX ")
	require.NoError(t, err)
	assert.Equal(t, AggMax, agg)

	agg, err = ParseAggregation("mean")
	require.NoError(t, err)
	assert.Equal(t, AggMean, agg)

	_, err = ParseAggregation("mode")
	assert.Error(t, err)
}
