package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() *Dataset {
	ds := NewDataset(NoLeapCalendar, []float64{15.5, 45.0, 74.5})
	f := NewField([]string{TimeDim, "nCells"}, []int{3, 2})
	f.Values = []float64{1, 2, 3, 4, 5, 6}
	ds.Fields["temp"] = f
	area := NewField([]string{"nCells"}, []int{2})
	area.Values = []float64{10, 20}
	ds.Fields["area"] = area
	return ds
}

func TestFieldTimeStride(t *testing.T) {
	f := NewField([]string{TimeDim, "nCells", "nVert"}, []int{4, 3, 2})
	assert.True(t, f.HasTimeDim())
	assert.Equal(t, 6, f.TimeStride())
	assert.Len(t, f.Values, 24)

	scalar := NewField(nil, nil)
	assert.False(t, scalar.HasTimeDim())
	assert.Len(t, scalar.Values, 1)
}

func TestDatasetIsel(t *testing.T) {
	ds := sampleDataset()

	sel, err := ds.Isel([]int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, []float64{74.5, 15.5}, sel.Times)
	assert.Equal(t, []float64{5, 6, 1, 2}, sel.Fields["temp"].Values)
	assert.Equal(t, 2, sel.Fields["temp"].Shape[0])

	// Time-invariant fields pass through untouched
	assert.Equal(t, []float64{10, 20}, sel.Fields["area"].Values)

	_, err = ds.Isel([]int{3})
	assert.Error(t, err)
}

func TestDatasetIselDoesNotAliasSource(t *testing.T) {
	ds := sampleDataset()
	sel, err := ds.Isel([]int{0})
	require.NoError(t, err)

	sel.Fields["temp"].Values[0] = 99
	assert.Equal(t, 1.0, ds.Fields["temp"].Values[0])
}

func TestDatasetConcatTime(t *testing.T) {
	ds := sampleDataset()

	next := NewDataset(NoLeapCalendar, []float64{104.0})
	f := NewField([]string{TimeDim, "nCells"}, []int{1, 2})
	f.Values = []float64{7, 8}
	next.Fields["temp"] = f

	require.NoError(t, ds.ConcatTime(next))
	assert.Equal(t, []float64{15.5, 45.0, 74.5, 104.0}, ds.Times)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8}, ds.Fields["temp"].Values)
	assert.Equal(t, 4, ds.Fields["temp"].Shape[0])
	// area survives even though next lacks it
	assert.Equal(t, []float64{10, 20}, ds.Fields["area"].Values)
}

func TestDatasetConcatTimeCalendarMismatch(t *testing.T) {
	ds := sampleDataset()
	other := NewDataset(GregorianCalendar, []float64{104.0})
	assert.ErrorIs(t, ds.ConcatTime(other), ErrCalendarMismatch)
}

func TestDatasetConcatTimeMissingField(t *testing.T) {
	ds := sampleDataset()
	other := NewDataset(NoLeapCalendar, []float64{104.0})
	assert.Error(t, ds.ConcatTime(other))
}

func TestDatasetTruncateTime(t *testing.T) {
	ds := sampleDataset()

	sub, err := ds.TruncateTime(20, 80)
	require.NoError(t, err)
	assert.Equal(t, []float64{45.0, 74.5}, sub.Times)
	assert.Equal(t, []float64{3, 4, 5, 6}, sub.Fields["temp"].Values)

	empty, err := ds.TruncateTime(200, 300)
	require.NoError(t, err)
	assert.Empty(t, empty.Times)
}

func TestDatasetVarNames(t *testing.T) {
	ds := sampleDataset()
	assert.Equal(t, []string{"area", "temp"}, ds.VarNames())
}

func TestDatasetClone(t *testing.T) {
	ds := sampleDataset()
	cp := ds.Clone()
	cp.Fields["temp"].Values[0] = 42
	cp.Times[0] = 0
	assert.Equal(t, 1.0, ds.Fields["temp"].Values[0])
	assert.Equal(t, 15.5, ds.Times[0])
}
