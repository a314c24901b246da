// Package driver wires the discovery, reading, reduction and caching
// layers into the operations the CLI and MCP server expose. Commands
// stay thin: they parse configuration, call a driver method and hand
// the result to outwriter.
package driver

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/polarcap/climatol/core"
	"github.com/polarcap/climatol/internal/contract"
	"github.com/polarcap/climatol/internal/diag"
	"github.com/polarcap/climatol/internal/iocache"
	"github.com/polarcap/climatol/schema"
	"go.uber.org/zap"
)

// Diagnostic names accepted by RunTimeSeries.
const (
	DiagSST    = "sst"
	DiagOHC    = "ohc"
	DiagSeaIce = "seaice"
)

// Driver bundles the dependencies of one analysis session.
type Driver struct {
	Cfg     *contract.Config
	Engine  *core.Engine
	Locator contract.StreamLocator
	Reader  contract.RawReader
	Prov    contract.ProvenanceStore
	Log     *zap.SugaredLogger
}

// ClimatologyResult is one cached climatology together with its cache
// identity.
type ClimatologyResult struct {
	Dataset   *schema.Dataset
	MonthSet  schema.MonthSet
	CachePath string
	Reused    bool
}

// ResolveBounds discovers the stream's files and clips the requested
// period to the complete years they cover. The returned spans are the
// files inside the resolved bounds.
func (d *Driver) ResolveBounds() (core.Bounds, []contract.FileSpan, error) {
	files, err := d.Locator.FindFiles(d.Cfg.Stream, d.Cfg.StartDate, d.Cfg.EndDate)
	if err != nil {
		return core.Bounds{}, nil, err
	}
	bounds, err := core.ResolveBounds(files, d.Cfg.StartDate, d.Cfg.EndDate)
	if err != nil {
		return core.Bounds{}, nil, err
	}
	if bounds.Changed {
		d.Log.Warnf("requested period clipped to complete years %s", bounds.YearString())
	}
	return bounds, clipSpans(files, bounds), nil
}

// RunClimatologies computes or reuses one climatology per configured
// month set over the resolved bounds.
func (d *Driver) RunClimatologies() ([]ClimatologyResult, core.Bounds, error) {
	if len(d.Cfg.Variables) == 0 {
		return nil, core.Bounds{}, fmt.Errorf("%w: climatology requires --variables", schema.ErrConfig)
	}

	bounds, spans, err := d.ResolveBounds()
	if err != nil {
		return nil, core.Bounds{}, err
	}

	// One lazy load shared by every month set; a run where every set
	// hits the cache never touches the model output.
	var loaded *schema.Dataset
	load := func() (*schema.Dataset, error) {
		if loaded == nil {
			ds, err := d.Reader.ReadDataset(spans, d.Cfg.Variables, d.Cfg.Calendar)
			if err != nil {
				return nil, err
			}
			loaded = ds
		}
		return loaded, nil
	}

	runID := d.beginRun(bounds)
	results := make([]ClimatologyResult, 0, len(d.Cfg.MonthSets))
	reusedCount := 0
	for _, ms := range d.Cfg.MonthSets {
		path := iocache.ArtifactPath(d.Cfg.CacheDir, iocache.KindClimatology,
			fmt.Sprintf("%s_%s.json", d.Cfg.Stream, ms.Identity()))
		ds, reused, err := d.Engine.CacheClimatology(core.ClimatologyRequest{
			Load:      load,
			MonthSet:  ms,
			Calendar:  d.Cfg.Calendar,
			StartYear: bounds.StartYear,
			EndYear:   bounds.EndYear,
			Variables: d.Cfg.Variables,
			CachePath: path,
			Sources:   d.Cfg.Stream,
		})
		if err != nil {
			return nil, core.Bounds{}, fmt.Errorf("climatology %s failed: %w", ms.Identity(), err)
		}
		if reused {
			reusedCount++
		}
		d.recordArtifact(runID, iocache.KindClimatology, path, ms.Identity(), bounds)
		results = append(results, ClimatologyResult{
			Dataset:   ds,
			MonthSet:  ms,
			CachePath: path,
			Reused:    reused,
		})
	}
	d.endRun(runID, len(results), reusedCount)
	return results, bounds, nil
}

// RunTimeSeries computes or extends the named scalar diagnostic over
// the resolved bounds. The hemisphere argument only applies to the
// sea-ice diagnostic.
func (d *Driver) RunTimeSeries(diagName, hemisphere string) (*schema.Dataset, core.TimeSeriesStats, core.Bounds, error) {
	bounds, spans, err := d.ResolveBounds()
	if err != nil {
		return nil, core.TimeSeriesStats{}, core.Bounds{}, err
	}

	mesh, err := d.LoadMesh()
	if err != nil {
		return nil, core.TimeSeriesStats{}, core.Bounds{}, err
	}

	src := &diag.Source{Files: spans, Reader: d.Reader, Calendar: d.Cfg.Calendar}
	var reducer contract.Reducer
	name := diagName
	switch diagName {
	case DiagSST:
		reducer = diag.NewSSTReducer(src, mesh)
	case DiagOHC:
		reducer = diag.NewOHCReducer(src, mesh)
	case DiagSeaIce:
		r, err := diag.NewSeaIceReducer(src, mesh, hemisphere)
		if err != nil {
			return nil, core.TimeSeriesStats{}, core.Bounds{}, err
		}
		reducer = r
		name = fmt.Sprintf("%s_%s", diagName, hemisphere)
	default:
		return nil, core.TimeSeriesStats{}, core.Bounds{},
			fmt.Errorf("%w: unknown diagnostic %q, must be sst, ohc or seaice", schema.ErrConfig, diagName)
	}

	path := iocache.ArtifactPath(d.Cfg.CacheDir, iocache.KindTimeSeries,
		fmt.Sprintf("%s_%s.json", d.Cfg.Stream, name))
	runID := d.beginRun(bounds)
	ds, stats, err := d.Engine.CacheTimeSeries(core.TimeSeriesRequest{
		Times:          src.Times(),
		Calendar:       d.Cfg.Calendar,
		Reducer:        reducer,
		CachePath:      path,
		YearsPerUpdate: d.Cfg.YearsPerCacheUpdate,
		Progress: func(done, total int) {
			d.Log.Infof("%s: computed chunk %d of %d", name, done, total)
		},
	})
	if err != nil {
		return nil, core.TimeSeriesStats{}, core.Bounds{}, fmt.Errorf("time series %s failed: %w", name, err)
	}
	d.recordArtifact(runID, iocache.KindTimeSeries, path, "", bounds)
	d.endRun(runID, stats.ChunksTotal, stats.ChunksReused)
	return ds, stats, bounds, nil
}

// RunRemappedClimatologies computes the configured climatologies and
// remaps each onto the comparison grid, building or reusing the weight
// file as needed.
func (d *Driver) RunRemappedClimatologies(hemisphere string) ([]ClimatologyResult, core.Bounds, error) {
	results, bounds, err := d.RunClimatologies()
	if err != nil {
		return nil, core.Bounds{}, err
	}

	rm, reused, err := d.BuildRemapper(hemisphere)
	if err != nil {
		return nil, core.Bounds{}, err
	}
	if reused {
		d.Log.Debugf("reusing mapping weights for %d source cells", rm.NSource())
	}

	for i := range results {
		remapped, err := rm.RemapDataset(results[i].Dataset)
		if err != nil {
			return nil, core.Bounds{}, fmt.Errorf("remapping %s failed: %w", results[i].MonthSet.Identity(), err)
		}
		results[i].Dataset = remapped
	}
	return results, bounds, nil
}

// BuildRemapper loads the mesh and returns a remapper onto the
// configured comparison grid, reusing persisted weights when the grid
// pairing has not changed.
func (d *Driver) BuildRemapper(hemisphere string) (*core.Remapper, bool, error) {
	mesh, err := d.LoadMesh()
	if err != nil {
		return nil, false, err
	}

	var tgt core.TargetDescriptor
	switch d.Cfg.ComparisonGrid {
	case schema.PolarGrid:
		tgt, err = core.NewPolarTarget(hemisphere, d.Cfg.LatResolution, d.Cfg.LonResolution)
		if err != nil {
			return nil, false, err
		}
	default:
		tgt = core.NewLatLonTarget(d.Cfg.LatResolution, d.Cfg.LonResolution)
	}

	meshLabel := mesh.Name
	if meshLabel == "" {
		meshLabel = "mesh"
	}
	return d.Engine.GetRemapper(core.RemapRequest{
		Source: mesh.SourceDescriptor(),
		Target: tgt,
		Method: d.Cfg.RemapMethod,
		MappingPath: filepath.Join(d.Cfg.MappingDir,
			fmt.Sprintf("map_%s_to_%s.%s.json", meshLabel, tgt.Name, d.Cfg.RemapMethod)),
	})
}

// LoadMesh finds a restart file with cell geometry and loads the mesh.
// Ocean restarts are preferred; the sea-ice component shares the mesh.
func (d *Driver) LoadMesh() (*diag.Mesh, error) {
	path, ok := d.Locator.RestartFile("mpaso.rst.*.nc", "mpassi.rst.*.nc", "*.rst.*.nc")
	if !ok {
		return nil, fmt.Errorf("%w: no restart file with mesh geometry under %s",
			schema.ErrNoFilesFound, d.Cfg.BaseDir)
	}
	return diag.LoadMesh(d.Reader, path, d.Cfg.MeshName, d.Cfg.Calendar)
}

// beginRun opens a provenance run. Provenance failures never abort an
// analysis; they are logged and the run proceeds unrecorded.
func (d *Driver) beginRun(bounds core.Bounds) int64 {
	if d.Prov == nil {
		return -1
	}
	runID, err := d.Prov.BeginRun(time.Now(), d.Cfg.Stream, bounds.StartYear, bounds.EndYear, map[string]any{
		"calendar":         string(d.Cfg.Calendar),
		"months":           monthSetNames(d.Cfg.MonthSets),
		"variables":        d.Cfg.Variables,
		"years_per_update": d.Cfg.YearsPerCacheUpdate,
	})
	if err != nil {
		d.Log.Warnf("provenance disabled for this run: %v", err)
		return -1
	}
	return runID
}

func (d *Driver) recordArtifact(runID int64, kind, path, monthSet string, bounds core.Bounds) {
	if runID < 0 {
		return
	}
	if err := d.Prov.RecordArtifact(runID, kind, path, monthSet, bounds.StartYear, bounds.EndYear, d.Cfg.Variables); err != nil {
		d.Log.Warnf("failed to record artifact %s: %v", path, err)
	}
}

func (d *Driver) endRun(runID int64, chunksTotal, chunksReused int) {
	if runID < 0 {
		return
	}
	if err := d.Prov.EndRun(runID, time.Now(), chunksTotal, chunksReused); err != nil {
		d.Log.Warnf("failed to close provenance run %d: %v", runID, err)
	}
}

// clipSpans keeps the files inside the resolved year window.
func clipSpans(files []contract.FileSpan, b core.Bounds) []contract.FileSpan {
	var out []contract.FileSpan
	for _, f := range files {
		if f.Year >= b.StartYear && f.Year <= b.EndYear {
			out = append(out, f)
		}
	}
	return out
}

func monthSetNames(sets []schema.MonthSet) []string {
	names := make([]string, len(sets))
	for i, ms := range sets {
		names[i] = ms.Identity()
	}
	return names
}
