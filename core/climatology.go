package core

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"slices"
	"sort"

	"github.com/polarcap/climatol/internal/iocache"
	"github.com/polarcap/climatol/schema"
)

// ClimatologyRequest describes one cached climatology. Load is invoked
// only on a cache miss, so a hit costs no input reads. Variables and the
// year range take part in the reuse check without loading anything.
type ClimatologyRequest struct {
	Load      func() (*schema.Dataset, error)
	MonthSet  schema.MonthSet
	Calendar  schema.Calendar
	StartYear int
	EndYear   int
	Variables []string
	CachePath string
	Sources   string
}

// ComputeClimatology averages ds over the months of monthSet, weighting
// every time point by the length in days of its calendar month so that
// a DJF mean is not biased toward February. Missing values (NaN) are
// excluded pointwise; a point missing at every contributing time stays
// NaN. Time-invariant fields are copied through unchanged.
func ComputeClimatology(ds *schema.Dataset, monthSet schema.MonthSet) (*schema.Dataset, error) {
	var indices []int
	var weights []float64
	for i, t := range ds.Times {
		d := ds.Calendar.DaysToDate(t)
		if monthSet.Contains(d.Month) {
			indices = append(indices, i)
			weights = append(weights, float64(ds.Calendar.DaysInMonth(d.Year, d.Month)))
		}
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: no time points fall in month set %s", schema.ErrNoData, monthSet.Name)
	}

	out := schema.NewDataset(ds.Calendar, nil)
	for name, f := range ds.Fields {
		if !f.HasTimeDim() {
			out.Fields[name] = f.Clone()
			continue
		}
		stride := f.TimeStride()
		mean := &schema.Field{
			Dims:   slices.Clone(f.Dims[1:]),
			Shape:  slices.Clone(f.Shape[1:]),
			Values: make([]float64, stride),
		}
		wsum := make([]float64, stride)
		for k, idx := range indices {
			w := weights[k]
			row := f.Values[idx*stride : (idx+1)*stride]
			for j, v := range row {
				if math.IsNaN(v) {
					continue
				}
				mean.Values[j] += w * v
				wsum[j] += w
			}
		}
		for j := range mean.Values {
			if wsum[j] == 0 {
				mean.Values[j] = math.NaN()
			} else {
				mean.Values[j] /= wsum[j]
			}
		}
		out.Fields[name] = mean
	}
	return out, nil
}

// CacheClimatology returns the climatology for the request, reusing a
// persisted artifact when it covers the request: same month set, same
// calendar, same variables, and a cached year range containing the
// requested one. Anything else, including a corrupt artifact, is a full
// miss that recomputes and overwrites. The second return reports a hit.
func (e *Engine) CacheClimatology(req ClimatologyRequest) (*schema.Dataset, bool, error) {
	art, err := e.store.ReadClimatology(req.CachePath)
	switch {
	case err == nil:
		if climatologyCovers(art, req) {
			e.log.Debugw("climatology cache hit",
				"path", req.CachePath, "monthSet", req.MonthSet.Name,
				"cachedYears", fmt.Sprintf("%04d-%04d", art.StartYear, art.EndYear))
			out := schema.NewDataset(art.Calendar, nil)
			for name, f := range art.Fields {
				out.Fields[name] = f.Clone()
			}
			return out, true, nil
		}
		e.log.Debugw("climatology cache miss", "path", req.CachePath, "monthSet", req.MonthSet.Name)
	case errors.Is(err, schema.ErrCacheCorrupt):
		e.log.Warnw("discarding corrupt climatology artifact", "path", req.CachePath, "error", err)
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, false, err
	}

	ds, err := req.Load()
	if err != nil {
		return nil, false, err
	}
	if ds.Calendar != req.Calendar {
		return nil, false, fmt.Errorf("%w: input uses %s, request wants %s",
			schema.ErrCalendarMismatch, ds.Calendar, req.Calendar)
	}
	climo, err := ComputeClimatology(ds, req.MonthSet)
	if err != nil {
		return nil, false, err
	}

	vars := slices.Clone(req.Variables)
	sort.Strings(vars)
	if err := e.store.WriteClimatology(req.CachePath, &iocache.ClimatologyArtifact{
		Calendar:  climo.Calendar,
		MonthSet:  req.MonthSet.Identity(),
		StartYear: req.StartYear,
		EndYear:   req.EndYear,
		Variables: vars,
		Sources:   req.Sources,
		Fields:    climo.Fields,
	}); err != nil {
		return nil, false, err
	}
	return climo, false, nil
}

// climatologyCovers is the reuse check: a cached artifact serves the
// request only when it was built from the same month set, calendar and
// variables over a year range that contains the requested one. A wider
// cached range is a hit; a narrower or shifted one forces a recompute.
func climatologyCovers(art *iocache.ClimatologyArtifact, req ClimatologyRequest) bool {
	if art.MonthSet != req.MonthSet.Identity() || art.Calendar != req.Calendar {
		return false
	}
	if art.StartYear > req.StartYear || art.EndYear < req.EndYear {
		return false
	}
	if req.Sources != "" && art.Sources != req.Sources {
		return false
	}
	want := slices.Clone(req.Variables)
	sort.Strings(want)
	have := slices.Clone(art.Variables)
	sort.Strings(have)
	return slices.Equal(want, have)
}
