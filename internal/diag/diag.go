// Package diag holds the built-in scalar diagnostics reduced from
// monthly model output: sea surface temperature, ocean heat content and
// sea-ice extent. Each diagnostic implements contract.Reducer so the
// caching engine can invoke it chunk by chunk.
package diag

import (
	"fmt"
	"math"

	"github.com/polarcap/climatol/internal/contract"
	"github.com/polarcap/climatol/schema"
)

// Default variable names in the monthly statistics stream.
const (
	TemperatureVar    = "timeMonthly_avg_activeTracers_temperature"
	LayerThicknessVar = "timeMonthly_avg_layerThickness"
	IceAreaVar        = "timeMonthly_avg_iceAreaCell"
	IceVolumeVar      = "timeMonthly_avg_iceVolumeCell"
)

// Reference seawater density (kg m-3) and specific heat (J kg-1 K-1)
// used to convert temperature to heat content.
const (
	rhoSeawater = 1026.0
	cpSeawater  = 3.996e3
)

// Source couples the discovered monthly files with a reader. The file
// list is indexed by time point, so the engine's chunk indices select
// files directly.
type Source struct {
	Files    []contract.FileSpan
	Reader   contract.RawReader
	Calendar schema.Calendar
}

// Times returns the mid-month time axis implied by the file list.
func (s *Source) Times() []float64 {
	times := make([]float64, len(s.Files))
	for i, f := range s.Files {
		times[i] = s.Calendar.MidMonth(f.Year, f.Month)
	}
	return times
}

func (s *Source) read(indices []int, variables []string) (*schema.Dataset, error) {
	files := make([]contract.FileSpan, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(s.Files) {
			return nil, fmt.Errorf("time index %d out of range [0,%d)", idx, len(s.Files))
		}
		files[i] = s.Files[idx]
	}
	return s.Reader.ReadDataset(files, variables, s.Calendar)
}

// scalarField wraps a single value as a dimensionless field, the form
// one-time auxiliary quantities take so they survive concatenation.
func scalarField(v float64) *schema.Field {
	f := schema.NewField(nil, nil)
	f.Values[0] = v
	return f
}

// cellGeometry validates that a time-varying field is laid out as
// (Time, nCells, ...) over the mesh and returns the per-cell stride.
func cellGeometry(f *schema.Field, nCells int) (int, error) {
	stride := f.TimeStride()
	if nCells == 0 || stride%nCells != 0 {
		return 0, fmt.Errorf("%w: %d values per record do not divide into %d cells",
			schema.ErrGridMismatch, stride, nCells)
	}
	return stride / nCells, nil
}

func meanOrNaN(sum, wsum float64) float64 {
	if wsum == 0 {
		return math.NaN()
	}
	return sum / wsum
}
