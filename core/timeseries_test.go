package core

import (
	"testing"

	"github.com/polarcap/climatol/schema"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedReducer serves slices of a prebuilt dataset while counting
// invocations and firstCall flags.
type scriptedReducer struct {
	ds         *schema.Dataset
	calls      int
	firstCalls int
}

func (r *scriptedReducer) Reduce(indices []int, firstCall bool) (*schema.Dataset, error) {
	r.calls++
	if firstCall {
		r.firstCalls++
	}
	return r.ds.Isel(indices)
}

func seriesRequest(red *scriptedReducer, times []float64) TimeSeriesRequest {
	return TimeSeriesRequest{
		Times:          times,
		Calendar:       red.ds.Calendar,
		Reducer:        red,
		CachePath:      "timeseries/sst.json",
		YearsPerUpdate: 10,
	}
}

func TestCacheTimeSeriesColdStart(t *testing.T) {
	eng, _ := newTestEngine()
	full := monthlyDataset(schema.NoLeapCalendar, 1, 30, "sst")
	red := &scriptedReducer{ds: full}

	out, stats, err := eng.CacheTimeSeries(seriesRequest(red, full.Times))
	require.NoError(t, err)

	assert.Equal(t, 3, stats.ChunksTotal)
	assert.Equal(t, 3, stats.ChunksComputed)
	assert.Equal(t, 0, stats.ChunksReused)
	assert.Equal(t, 3, red.calls)
	assert.Equal(t, 1, red.firstCalls, "only the first chunk of a cold start sees firstCall")

	assert.Equal(t, full.Times, out.Times)
	assert.Equal(t, full.Fields["sst"].Values, out.Fields["sst"].Values)
}

func TestCacheTimeSeriesIdempotent(t *testing.T) {
	eng, _ := newTestEngine()
	full := monthlyDataset(schema.NoLeapCalendar, 1, 30, "sst")
	red := &scriptedReducer{ds: full}

	first, _, err := eng.CacheTimeSeries(seriesRequest(red, full.Times))
	require.NoError(t, err)
	require.Equal(t, 3, red.calls)

	second, stats, err := eng.CacheTimeSeries(seriesRequest(red, full.Times))
	require.NoError(t, err)
	assert.Equal(t, 3, red.calls, "a fully cached request must not invoke the reducer")
	assert.Equal(t, 3, stats.ChunksReused)
	assert.Equal(t, 0, stats.ChunksComputed)
	assert.Equal(t, first.Times, second.Times)
	assert.Equal(t, first.Fields["sst"].Values, second.Fields["sst"].Values)
}

func TestCacheTimeSeriesIncrementalExtension(t *testing.T) {
	eng, _ := newTestEngine()
	full := monthlyDataset(schema.NoLeapCalendar, 1, 30, "sst")
	red := &scriptedReducer{ds: full}

	// First run covers 20 years, two chunks.
	short, _, err := eng.CacheTimeSeries(seriesRequest(red, full.Times[:240]))
	require.NoError(t, err)
	require.Equal(t, 2, red.calls)
	require.Equal(t, 1, red.firstCalls)

	// Extending to 30 years reduces only the new decade.
	out, stats, err := eng.CacheTimeSeries(seriesRequest(red, full.Times))
	require.NoError(t, err)
	assert.Equal(t, 3, red.calls)
	assert.Equal(t, 1, red.firstCalls, "firstCall fires once per cache file lifetime")
	assert.Equal(t, 2, stats.ChunksReused)
	assert.Equal(t, 1, stats.ChunksComputed)

	// The cached prefix is carried over untouched.
	assert.Equal(t, short.Fields["sst"].Values, out.Fields["sst"].Values[:240])
	assert.Equal(t, full.Times, out.Times)
}

func TestCacheTimeSeriesTruncatesToRequest(t *testing.T) {
	eng, _ := newTestEngine()
	full := monthlyDataset(schema.NoLeapCalendar, 1, 30, "sst")
	red := &scriptedReducer{ds: full}

	_, _, err := eng.CacheTimeSeries(seriesRequest(red, full.Times))
	require.NoError(t, err)
	require.Equal(t, 3, red.calls)

	out, stats, err := eng.CacheTimeSeries(seriesRequest(red, full.Times[:120]))
	require.NoError(t, err)
	assert.Equal(t, 3, red.calls, "a shorter request is served from cache")
	assert.Equal(t, 1, stats.ChunksReused)
	assert.Len(t, out.Times, 120)
	assert.Equal(t, full.Fields["sst"].Values[:120], out.Fields["sst"].Values)
}

func TestCacheTimeSeriesRecomputesPartialChunk(t *testing.T) {
	eng, _ := newTestEngine()
	full := monthlyDataset(schema.NoLeapCalendar, 1, 10, "sst")
	red := &scriptedReducer{ds: full}

	// Five years is half a chunk.
	_, _, err := eng.CacheTimeSeries(seriesRequest(red, full.Times[:60]))
	require.NoError(t, err)
	require.Equal(t, 1, red.calls)

	// The partial chunk is recomputed whole, not merged.
	out, stats, err := eng.CacheTimeSeries(seriesRequest(red, full.Times))
	require.NoError(t, err)
	assert.Equal(t, 2, red.calls)
	assert.Equal(t, 0, stats.ChunksReused)
	assert.Equal(t, 1, stats.ChunksComputed)
	assert.Equal(t, full.Times, out.Times)
}

func TestCacheTimeSeriesRecoversFromCorruptArtifact(t *testing.T) {
	eng, store := newTestEngine()
	full := monthlyDataset(schema.NoLeapCalendar, 1, 20, "sst")
	red := &scriptedReducer{ds: full}
	req := seriesRequest(red, full.Times)

	_, _, err := eng.CacheTimeSeries(req)
	require.NoError(t, err)
	require.Equal(t, 2, red.calls)
	require.Equal(t, 1, red.firstCalls)

	// A zero-byte cache file is treated as a full miss.
	require.NoError(t, afero.WriteFile(store.Fs(), req.CachePath, nil, 0o644))

	out, stats, err := eng.CacheTimeSeries(req)
	require.NoError(t, err)
	assert.Equal(t, 4, red.calls)
	assert.Equal(t, 2, red.firstCalls, "a recomputed cache file starts a new lifetime")
	assert.Equal(t, 2, stats.ChunksComputed)
	assert.Equal(t, 0, stats.ChunksReused)
	assert.Equal(t, full.Times, out.Times)
}

func TestCacheTimeSeriesCalendarChangeIsFullMiss(t *testing.T) {
	eng, _ := newTestEngine()
	noleap := monthlyDataset(schema.NoLeapCalendar, 1, 10, "sst")
	red := &scriptedReducer{ds: noleap}

	_, _, err := eng.CacheTimeSeries(seriesRequest(red, noleap.Times))
	require.NoError(t, err)
	require.Equal(t, 1, red.calls)

	greg := monthlyDataset(schema.GregorianCalendar, 1, 10, "sst")
	gred := &scriptedReducer{ds: greg}
	_, stats, err := eng.CacheTimeSeries(seriesRequest(gred, greg.Times))
	require.NoError(t, err, "a calendar change recomputes rather than failing")
	assert.Equal(t, 1, gred.calls)
	assert.Equal(t, 0, stats.ChunksReused)
}

func TestCacheTimeSeriesDivergentPrefixRecomputes(t *testing.T) {
	eng, _ := newTestEngine()
	full := monthlyDataset(schema.NoLeapCalendar, 1, 10, "sst")
	red := &scriptedReducer{ds: full}

	_, _, err := eng.CacheTimeSeries(seriesRequest(red, full.Times))
	require.NoError(t, err)

	// Same calendar and length, shifted start year: not a prefix.
	shifted := monthlyDataset(schema.NoLeapCalendar, 2, 11, "sst")
	sred := &scriptedReducer{ds: shifted}
	_, stats, err := eng.CacheTimeSeries(seriesRequest(sred, shifted.Times))
	require.NoError(t, err)
	assert.Equal(t, 0, stats.ChunksReused)
	assert.Equal(t, 2, stats.ChunksComputed)
}

func TestCacheTimeSeriesPersistsEveryChunk(t *testing.T) {
	eng, store := newTestEngine()
	full := monthlyDataset(schema.NoLeapCalendar, 1, 30, "sst")
	red := &scriptedReducer{ds: full}
	req := seriesRequest(red, full.Times)

	var persisted []int
	req.Progress = func(done, total int) {
		art, err := store.ReadTimeSeries(req.CachePath)
		require.NoError(t, err)
		persisted = append(persisted, len(art.Times))
		assert.Equal(t, 3, total)
		assert.Equal(t, done, len(persisted))
	}

	_, _, err := eng.CacheTimeSeries(req)
	require.NoError(t, err)
	assert.Equal(t, []int{120, 240, 360}, persisted,
		"each chunk is durable before the next is computed")
}

func TestCacheTimeSeriesEmptyTimes(t *testing.T) {
	eng, _ := newTestEngine()
	red := &scriptedReducer{ds: monthlyDataset(schema.NoLeapCalendar, 1, 1, "sst")}
	_, _, err := eng.CacheTimeSeries(seriesRequest(red, nil))
	assert.ErrorIs(t, err, schema.ErrNoData)
}
