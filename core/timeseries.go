package core

import (
	"errors"
	"fmt"
	"io/fs"
	"math"

	"github.com/polarcap/climatol/internal/contract"
	"github.com/polarcap/climatol/internal/iocache"
	"github.com/polarcap/climatol/schema"
)

// timeEps is the tolerance for matching cached time values against the
// input time axis, half a second expressed in days.
const timeEps = 0.5 / 86400.0

// TimeSeriesRequest describes one chunked time-series computation. The
// reducer is handed contiguous blocks of indices into Times, grouped so
// each block spans YearsPerUpdate calendar years counted from the first
// input year; firstCall is true for exactly one reducer invocation per
// cache file lifetime, the first block of a cold start or full
// recompute. Progress, when set, is called after every computed block.
type TimeSeriesRequest struct {
	Times          []float64
	Calendar       schema.Calendar
	Reducer        contract.Reducer
	CachePath      string
	YearsPerUpdate int
	Progress       func(done, total int)
}

// TimeSeriesStats reports how much of a request the cache absorbed.
type TimeSeriesStats struct {
	ChunksTotal    int
	ChunksComputed int
	ChunksReused   int
}

// errSeriesDiverged marks a cached series whose fields cannot accept the
// reducer's output; the caller retries from scratch.
var errSeriesDiverged = errors.New("cached series incompatible with reducer output")

// CacheTimeSeries extends the persisted series at CachePath to cover the
// requested time axis, reducing only the chunks not already cached. The
// artifact is rewritten after every chunk, so an interrupted run resumes
// from the last completed chunk. A corrupt artifact, a calendar change
// or a cached series that is not a prefix of the input time axis all
// degrade to a full recompute, never an error. The result is truncated
// to the requested span even when the cache holds more.
func (e *Engine) CacheTimeSeries(req TimeSeriesRequest) (*schema.Dataset, TimeSeriesStats, error) {
	if len(req.Times) == 0 {
		return nil, TimeSeriesStats{}, fmt.Errorf("%w: empty time axis", schema.ErrNoData)
	}
	if req.Reducer == nil {
		return nil, TimeSeriesStats{}, fmt.Errorf("%w: nil reducer", schema.ErrConfig)
	}
	if req.YearsPerUpdate <= 0 {
		req.YearsPerUpdate = contract.DefaultYearsPerCacheUpdate
	}

	chunks := splitChunks(req.Times, req.Calendar, req.YearsPerUpdate)
	cached := e.loadSeries(req)

	out, stats, err := e.extendSeries(req, chunks, cached)
	if errors.Is(err, errSeriesDiverged) {
		e.log.Warnw("recomputing time series from scratch", "path", req.CachePath, "error", err)
		out, stats, err = e.extendSeries(req, chunks, nil)
	}
	if err != nil {
		return nil, stats, err
	}

	final, err := out.TruncateTime(req.Times[0], req.Times[len(req.Times)-1])
	if err != nil {
		return nil, stats, err
	}
	return final, stats, nil
}

// splitChunks groups indices into the time axis by calendar-year blocks
// of yearsPerUpdate years, anchored at the first input year.
func splitChunks(times []float64, cal schema.Calendar, yearsPerUpdate int) [][]int {
	startYear := cal.YearOf(times[0])
	var chunks [][]int
	cur := -1
	for i, t := range times {
		ci := (cal.YearOf(t) - startYear) / yearsPerUpdate
		if ci != cur {
			chunks = append(chunks, nil)
			cur = ci
		}
		chunks[len(chunks)-1] = append(chunks[len(chunks)-1], i)
	}
	return chunks
}

// loadSeries reads the persisted series, returning nil for anything
// unusable: a missing or corrupt artifact, a calendar mismatch, or a
// cached time axis that is not a prefix of the requested one.
func (e *Engine) loadSeries(req TimeSeriesRequest) *schema.Dataset {
	art, err := e.store.ReadTimeSeries(req.CachePath)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case errors.Is(err, schema.ErrCacheCorrupt):
		e.log.Warnw("discarding corrupt time-series artifact", "path", req.CachePath, "error", err)
		return nil
	default:
		e.log.Warnw("discarding unreadable time-series artifact", "path", req.CachePath, "error", err)
		return nil
	}
	if art.Calendar != req.Calendar {
		e.log.Warnw("cached time series uses a different calendar, recomputing",
			"path", req.CachePath, "cached", art.Calendar, "want", req.Calendar)
		return nil
	}
	if len(art.Times) == 0 {
		return nil
	}

	m := min(len(art.Times), len(req.Times))
	for i := 0; i < m; i++ {
		if math.Abs(art.Times[i]-req.Times[i]) > timeEps {
			e.log.Warnw("cached time series is not a prefix of the input time axis, recomputing",
				"path", req.CachePath, "index", i)
			return nil
		}
	}

	ds := schema.NewDataset(art.Calendar, art.Times)
	if art.Fields != nil {
		ds.Fields = art.Fields
	}
	return ds
}

// extendSeries reuses the complete cached chunks and reduces the rest,
// persisting after each one.
func (e *Engine) extendSeries(req TimeSeriesRequest, chunks [][]int, cached *schema.Dataset) (*schema.Dataset, TimeSeriesStats, error) {
	stats := TimeSeriesStats{ChunksTotal: len(chunks)}

	covered := 0
	if cached != nil {
		covered = len(cached.Times)
	}
	complete := 0
	boundary := 0
	for _, c := range chunks {
		if boundary+len(c) > covered {
			break
		}
		boundary += len(c)
		complete++
	}
	stats.ChunksReused = complete

	if complete == len(chunks) {
		e.log.Debugw("time series fully cached", "path", req.CachePath, "chunks", len(chunks))
		return cached, stats, nil
	}

	// Drop any partially cached chunk; it is recomputed whole.
	var acc *schema.Dataset
	if boundary > 0 {
		if boundary == covered {
			acc = cached
		} else {
			keep := make([]int, boundary)
			for i := range keep {
				keep[i] = i
			}
			var err error
			acc, err = cached.Isel(keep)
			if err != nil {
				return nil, stats, err
			}
		}
	}

	firstCall := acc == nil
	toCompute := len(chunks) - complete
	done := 0
	for ci := complete; ci < len(chunks); ci++ {
		indices := chunks[ci]
		sub, err := req.Reducer.Reduce(indices, firstCall)
		if err != nil {
			return nil, stats, err
		}
		firstCall = false
		if len(sub.Times) != len(indices) {
			return nil, stats, fmt.Errorf("reducer returned %d time points for %d requested indices",
				len(sub.Times), len(indices))
		}
		if sub.Calendar != req.Calendar {
			return nil, stats, fmt.Errorf("%w: reducer produced %s, want %s",
				schema.ErrCalendarMismatch, sub.Calendar, req.Calendar)
		}
		// The request's time axis is authoritative for the persisted
		// series; reducer rounding must not break later prefix checks.
		for k, idx := range indices {
			sub.Times[k] = req.Times[idx]
		}

		if acc == nil {
			acc = sub
		} else if err := acc.ConcatTime(sub); err != nil {
			if ci == complete && boundary > 0 {
				return nil, stats, fmt.Errorf("%w: %v", errSeriesDiverged, err)
			}
			return nil, stats, err
		}

		if err := e.store.WriteTimeSeries(req.CachePath, &iocache.TimeSeriesArtifact{
			Calendar: req.Calendar,
			Times:    acc.Times,
			Fields:   acc.Fields,
		}); err != nil {
			return nil, stats, err
		}
		stats.ChunksComputed++
		done++
		e.log.Debugw("cached time-series chunk",
			"path", req.CachePath, "chunk", ci+1, "of", len(chunks), "points", len(indices))
		if req.Progress != nil {
			req.Progress(done, toCompute)
		}
	}
	return acc, stats, nil
}
