package driver

import (
	"math"
	"slices"
	"testing"

	"github.com/polarcap/climatol/core"
	"github.com/polarcap/climatol/internal/contract"
	"github.com/polarcap/climatol/internal/diag"
	"github.com/polarcap/climatol/internal/iocache"
	"github.com/polarcap/climatol/schema"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeReader serves constant-valued fields for any requested variables
// and a two-cell mesh when asked for geometry.
type fakeReader struct {
	loads int
}

func (r *fakeReader) ReadDataset(files []contract.FileSpan, variables []string, cal schema.Calendar) (*schema.Dataset, error) {
	if slices.Contains(variables, "areaCell") {
		ds := schema.NewDataset(cal, nil)
		area := schema.NewField([]string{"nCells"}, []int{2})
		area.Values = []float64{1, 1}
		lat := schema.NewField([]string{"nCells"}, []int{2})
		lat.Values = []float64{0.5, -0.5}
		lon := schema.NewField([]string{"nCells"}, []int{2})
		lon.Values = []float64{0, math.Pi}
		ds.Fields["areaCell"] = area
		ds.Fields["latCell"] = lat
		ds.Fields["lonCell"] = lon
		return ds, nil
	}

	r.loads++
	times := make([]float64, len(files))
	for i, f := range files {
		times[i] = cal.MidMonth(f.Year, f.Month)
	}
	ds := schema.NewDataset(cal, times)
	for _, v := range variables {
		f := schema.NewField([]string{schema.TimeDim, "nCells"}, []int{len(files), 2})
		for j := range f.Values {
			f.Values[j] = 10
		}
		ds.Fields[v] = f
	}
	return ds, nil
}

func monthlySpans(startYear, endYear int) []contract.FileSpan {
	var spans []contract.FileSpan
	for y := startYear; y <= endYear; y++ {
		for m := 1; m <= 12; m++ {
			spans = append(spans, contract.FileSpan{Path: "f.nc", Year: y, Month: m})
		}
	}
	return spans
}

func testDriver(t *testing.T, reader contract.RawReader, prov contract.ProvenanceStore) (*Driver, *contract.MockStreamLocator) {
	t.Helper()
	ann, err := schema.LookupMonthSet("ANN")
	require.NoError(t, err)

	locator := &contract.MockStreamLocator{}
	log := zap.NewNop().Sugar()
	d := &Driver{
		Cfg: &contract.Config{
			BaseDir:             "/data/run01",
			Stream:              contract.DefaultStream,
			StartDate:           schema.Date{Year: 1, Month: 1, Day: 1},
			EndDate:             schema.Date{Year: 9999, Month: 12, Day: 31},
			Calendar:            schema.NoLeapCalendar,
			MonthSets:           []schema.MonthSet{ann},
			Variables:           []string{diag.TemperatureVar},
			YearsPerCacheUpdate: contract.DefaultYearsPerCacheUpdate,
			CacheDir:            "cache",
			MappingDir:          "cache/mapping",
			RemapMethod:         contract.DefaultRemapMethod,
			ComparisonGrid:      schema.LatLonGrid,
			LatResolution:       90,
			LonResolution:       90,
		},
		Engine:  core.NewEngine(iocache.NewArtifactStore(afero.NewMemMapFs()), log),
		Locator: locator,
		Reader:  reader,
		Prov:    prov,
		Log:     log,
	}
	return d, locator
}

func TestRunClimatologiesCachesAcrossCalls(t *testing.T) {
	reader := &fakeReader{}
	d, locator := testDriver(t, reader, nil)
	locator.On("FindFiles", d.Cfg.Stream, mock.Anything, mock.Anything).
		Return(monthlySpans(1, 2), nil)

	results, bounds, err := d.RunClimatologies()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, bounds.StartYear)
	assert.Equal(t, 2, bounds.EndYear)
	assert.False(t, results[0].Reused)
	assert.Equal(t, 1, reader.loads)

	mean := results[0].Dataset.Fields[diag.TemperatureVar]
	require.NotNil(t, mean)
	assert.InDelta(t, 10.0, mean.Values[0], 1e-9)

	// Identical request is served from cache without reading input
	results, _, err = d.RunClimatologies()
	require.NoError(t, err)
	assert.True(t, results[0].Reused)
	assert.Equal(t, 1, reader.loads)
}

func TestRunClimatologiesRequiresVariables(t *testing.T) {
	d, _ := testDriver(t, &fakeReader{}, nil)
	d.Cfg.Variables = nil

	_, _, err := d.RunClimatologies()
	assert.ErrorIs(t, err, schema.ErrConfig)
}

func TestRunTimeSeriesSST(t *testing.T) {
	reader := &fakeReader{}
	d, locator := testDriver(t, reader, nil)
	locator.On("FindFiles", d.Cfg.Stream, mock.Anything, mock.Anything).
		Return(monthlySpans(1, 2), nil)
	locator.On("RestartFile", mock.Anything).Return("restart.nc", true)

	result, stats, bounds, err := d.RunTimeSeries(DiagSST, "north")
	require.NoError(t, err)
	assert.Equal(t, 2, bounds.EndYear)
	assert.Len(t, result.Times, 24)
	assert.Positive(t, stats.ChunksComputed)
	assert.Zero(t, stats.ChunksReused)

	sst := result.Fields["sst"]
	require.NotNil(t, sst)
	assert.InDelta(t, 10.0, sst.Values[0], 1e-9)
}

func TestRunTimeSeriesUnknownDiag(t *testing.T) {
	d, locator := testDriver(t, &fakeReader{}, nil)
	locator.On("FindFiles", d.Cfg.Stream, mock.Anything, mock.Anything).
		Return(monthlySpans(1, 1), nil)
	locator.On("RestartFile", mock.Anything).Return("restart.nc", true)

	_, _, _, err := d.RunTimeSeries("enso", "north")
	assert.ErrorIs(t, err, schema.ErrConfig)
}

func TestRunRemappedClimatologies(t *testing.T) {
	reader := &fakeReader{}
	d, locator := testDriver(t, reader, nil)
	locator.On("FindFiles", d.Cfg.Stream, mock.Anything, mock.Anything).
		Return(monthlySpans(1, 2), nil)
	locator.On("RestartFile", mock.Anything).Return("restart.nc", true)

	results, _, err := d.RunRemappedClimatologies("north")
	require.NoError(t, err)
	require.Len(t, results, 1)

	remapped := results[0].Dataset.Fields[diag.TemperatureVar]
	require.NotNil(t, remapped)
	assert.Equal(t, []string{"lat", "lon"}, remapped.Dims)

	// A constant field stays constant wherever source cells land
	sawValue := false
	for _, v := range remapped.Values {
		if !math.IsNaN(v) {
			assert.InDelta(t, 10.0, v, 1e-9)
			sawValue = true
		}
	}
	assert.True(t, sawValue)
}

func TestProvenanceRecordedPerRun(t *testing.T) {
	reader := &fakeReader{}
	prov := &contract.MockProvenanceStore{}
	prov.On("BeginRun", mock.Anything, mock.Anything, 1, 2, mock.Anything).Return(int64(7), nil)
	prov.On("RecordArtifact", int64(7), iocache.KindClimatology, mock.Anything, "ANN:1,2,3,4,5,6,7,8,9,10,11,12", 1, 2, mock.Anything).Return(nil)
	prov.On("EndRun", int64(7), mock.Anything, 1, 0).Return(nil)

	d, locator := testDriver(t, reader, prov)
	locator.On("FindFiles", d.Cfg.Stream, mock.Anything, mock.Anything).
		Return(monthlySpans(1, 2), nil)

	_, _, err := d.RunClimatologies()
	require.NoError(t, err)
	prov.AssertExpectations(t)
}
