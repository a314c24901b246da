package ncstore

import (
	"testing"

	"github.com/polarcap/climatol/schema"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stream = "timeSeriesStatsMonthly"

func seedFiles(t *testing.T, fs afero.Fs, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, afero.WriteFile(fs, "/run/"+name, []byte("x"), 0o644))
	}
}

func TestFindFilesSortsAndFilters(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedFiles(t, fs,
		"mpaso.hist.am.timeSeriesStatsMonthly.0002-02-01.nc",
		"mpaso.hist.am.timeSeriesStatsMonthly.0001-12-01.nc",
		"mpaso.hist.am.timeSeriesStatsMonthly.0002-01-01.nc",
		"mpaso.hist.am.highFrequencyOutput.0002-01-01.nc", // other stream
		"mpaso.rst.0002-01-01_00000.nc",                   // no monthly date suffix
		"notes.txt",
	)

	loc := NewLocator(fs, "/run")
	spans, err := loc.FindFiles(stream,
		schema.Date{Year: 1, Month: 1, Day: 1},
		schema.Date{Year: 2, Month: 12, Day: 31})
	require.NoError(t, err)
	require.Len(t, spans, 3)

	assert.Equal(t, 1, spans[0].Year)
	assert.Equal(t, 12, spans[0].Month)
	assert.Equal(t, 2, spans[1].Year)
	assert.Equal(t, 1, spans[1].Month)
	assert.Equal(t, 2, spans[2].Year)
	assert.Equal(t, 2, spans[2].Month)
}

func TestFindFilesDateWindow(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedFiles(t, fs,
		"mpaso.hist.am.timeSeriesStatsMonthly.0001-06-01.nc",
		"mpaso.hist.am.timeSeriesStatsMonthly.0001-07-01.nc",
		"mpaso.hist.am.timeSeriesStatsMonthly.0001-08-01.nc",
	)

	loc := NewLocator(fs, "/run")
	spans, err := loc.FindFiles(stream,
		schema.Date{Year: 1, Month: 7, Day: 1},
		schema.Date{Year: 1, Month: 7, Day: 31})
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, 7, spans[0].Month)
}

func TestFindFilesEmptyIsError(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedFiles(t, fs, "mpaso.hist.am.timeSeriesStatsMonthly.0001-06-01.nc")

	loc := NewLocator(fs, "/run")
	_, err := loc.FindFiles(stream,
		schema.Date{Year: 5, Month: 1, Day: 1},
		schema.Date{Year: 6, Month: 12, Day: 31})
	assert.ErrorIs(t, err, schema.ErrNoFilesFound)

	_, err = loc.FindFiles("unknownStream",
		schema.Date{Year: 1, Month: 1, Day: 1},
		schema.Date{Year: 1, Month: 12, Day: 31})
	assert.ErrorIs(t, err, schema.ErrNoFilesFound)
}

func TestRestartFileFallback(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedFiles(t, fs,
		"mpaso.rst.0002-01-01_00000.nc",
		"mpaso.rst.0001-01-01_00000.nc",
	)

	loc := NewLocator(fs, "/run")

	// The sea-ice restart is missing, so the ocean restart serves.
	path, ok := loc.RestartFile("mpassi.rst.*.nc", "mpaso.rst.*.nc")
	require.True(t, ok)
	assert.Equal(t, "/run/mpaso.rst.0001-01-01_00000.nc", path)

	_, ok = loc.RestartFile("mpassi.rst.*.nc")
	assert.False(t, ok)
}
