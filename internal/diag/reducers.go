package diag

import (
	"fmt"
	"math"

	"github.com/polarcap/climatol/internal/contract"
	"github.com/polarcap/climatol/schema"
)

// SSTReducer produces the area-weighted mean surface temperature over a
// latitude band, globally by default. The surface is the first vertical
// level of the temperature variable.
type SSTReducer struct {
	Source   *Source
	Mesh     *Mesh
	Variable string
	MinLat   float64
	MaxLat   float64
}

var _ contract.Reducer = (*SSTReducer)(nil)

// NewSSTReducer builds a global SST reducer over the default
// temperature variable.
func NewSSTReducer(src *Source, mesh *Mesh) *SSTReducer {
	return &SSTReducer{
		Source:   src,
		Mesh:     mesh,
		Variable: TemperatureVar,
		MinLat:   -90,
		MaxLat:   90,
	}
}

func (r *SSTReducer) Reduce(indices []int, firstCall bool) (*schema.Dataset, error) {
	ds, err := r.Source.read(indices, []string{r.Variable})
	if err != nil {
		return nil, err
	}
	f := ds.Fields[r.Variable]
	nCells := r.Mesh.NCells()
	nVert, err := cellGeometry(f, nCells)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.Variable, err)
	}

	out := schema.NewDataset(ds.Calendar, ds.Times)
	sst := schema.NewField([]string{schema.TimeDim}, []int{len(ds.Times)})
	stride := f.TimeStride()
	for t := range ds.Times {
		var sum, wsum float64
		for c := 0; c < nCells; c++ {
			lat := r.Mesh.LatCell[c]
			if lat < r.MinLat || lat > r.MaxLat {
				continue
			}
			v := f.Values[t*stride+c*nVert]
			if math.IsNaN(v) {
				continue
			}
			sum += v * r.Mesh.AreaCell[c]
			wsum += r.Mesh.AreaCell[c]
		}
		sst.Values[t] = meanOrNaN(sum, wsum)
	}
	out.Fields["sst"] = sst

	if firstCall {
		var area float64
		for c, a := range r.Mesh.AreaCell {
			if r.Mesh.LatCell[c] >= r.MinLat && r.Mesh.LatCell[c] <= r.MaxLat {
				area += a
			}
		}
		out.Fields["regionArea"] = scalarField(area)
	}
	return out, nil
}

// OHCReducer integrates rho * cp * T over the ocean volume, using the
// monthly layer thickness so the heat content tracks the moving free
// surface. Cells masked as land (NaN temperature) contribute nothing.
type OHCReducer struct {
	Source         *Source
	Mesh           *Mesh
	TemperatureVar string
	ThicknessVar   string
}

var _ contract.Reducer = (*OHCReducer)(nil)

// NewOHCReducer builds an ocean heat content reducer over the default
// variables.
func NewOHCReducer(src *Source, mesh *Mesh) *OHCReducer {
	return &OHCReducer{
		Source:         src,
		Mesh:           mesh,
		TemperatureVar: TemperatureVar,
		ThicknessVar:   LayerThicknessVar,
	}
}

func (r *OHCReducer) Reduce(indices []int, firstCall bool) (*schema.Dataset, error) {
	ds, err := r.Source.read(indices, []string{r.TemperatureVar, r.ThicknessVar})
	if err != nil {
		return nil, err
	}
	temp := ds.Fields[r.TemperatureVar]
	thick := ds.Fields[r.ThicknessVar]
	nCells := r.Mesh.NCells()
	nVert, err := cellGeometry(temp, nCells)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.TemperatureVar, err)
	}
	if thick.TimeStride() != temp.TimeStride() {
		return nil, fmt.Errorf("%w: %s and %s disagree on layout",
			schema.ErrGridMismatch, r.TemperatureVar, r.ThicknessVar)
	}

	out := schema.NewDataset(ds.Calendar, ds.Times)
	ohc := schema.NewField([]string{schema.TimeDim}, []int{len(ds.Times)})
	stride := temp.TimeStride()
	for t := range ds.Times {
		var sum float64
		for c := 0; c < nCells; c++ {
			base := t*stride + c*nVert
			for k := 0; k < nVert; k++ {
				tv := temp.Values[base+k]
				hv := thick.Values[base+k]
				if math.IsNaN(tv) || math.IsNaN(hv) {
					continue
				}
				sum += rhoSeawater * cpSeawater * tv * hv * r.Mesh.AreaCell[c]
			}
		}
		ohc.Values[t] = sum
	}
	out.Fields["ohc"] = ohc

	if firstCall {
		var area float64
		for _, a := range r.Mesh.AreaCell {
			area += a
		}
		out.Fields["oceanArea"] = scalarField(area)
	}
	return out, nil
}

// SeaIceReducer produces total sea-ice area and volume for one
// hemisphere, splitting cells by the sign of their latitude.
type SeaIceReducer struct {
	Source     *Source
	Mesh       *Mesh
	Hemisphere string
	AreaVar    string
	VolumeVar  string
}

var _ contract.Reducer = (*SeaIceReducer)(nil)

// NewSeaIceReducer builds a sea-ice reducer for "north" or "south".
func NewSeaIceReducer(src *Source, mesh *Mesh, hemisphere string) (*SeaIceReducer, error) {
	if hemisphere != "north" && hemisphere != "south" {
		return nil, fmt.Errorf("%w: unknown hemisphere %q", schema.ErrConfig, hemisphere)
	}
	return &SeaIceReducer{
		Source:     src,
		Mesh:       mesh,
		Hemisphere: hemisphere,
		AreaVar:    IceAreaVar,
		VolumeVar:  IceVolumeVar,
	}, nil
}

func (r *SeaIceReducer) inHemisphere(lat float64) bool {
	if r.Hemisphere == "north" {
		return lat >= 0
	}
	return lat < 0
}

func (r *SeaIceReducer) Reduce(indices []int, firstCall bool) (*schema.Dataset, error) {
	ds, err := r.Source.read(indices, []string{r.AreaVar, r.VolumeVar})
	if err != nil {
		return nil, err
	}
	conc := ds.Fields[r.AreaVar]
	vol := ds.Fields[r.VolumeVar]
	nCells := r.Mesh.NCells()
	nVert, err := cellGeometry(conc, nCells)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.AreaVar, err)
	}
	if nVert != 1 {
		return nil, fmt.Errorf("%w: %s carries %d values per cell, want 1",
			schema.ErrGridMismatch, r.AreaVar, nVert)
	}
	if vol.TimeStride() != conc.TimeStride() {
		return nil, fmt.Errorf("%w: %s and %s disagree on layout",
			schema.ErrGridMismatch, r.AreaVar, r.VolumeVar)
	}

	out := schema.NewDataset(ds.Calendar, ds.Times)
	iceArea := schema.NewField([]string{schema.TimeDim}, []int{len(ds.Times)})
	iceVolume := schema.NewField([]string{schema.TimeDim}, []int{len(ds.Times)})
	stride := conc.TimeStride()
	for t := range ds.Times {
		var areaSum, volSum float64
		for c := 0; c < nCells; c++ {
			if !r.inHemisphere(r.Mesh.LatCell[c]) {
				continue
			}
			cv := conc.Values[t*stride+c]
			vv := vol.Values[t*stride+c]
			if !math.IsNaN(cv) {
				areaSum += cv * r.Mesh.AreaCell[c]
			}
			if !math.IsNaN(vv) {
				volSum += vv * r.Mesh.AreaCell[c]
			}
		}
		iceArea.Values[t] = areaSum
		iceVolume.Values[t] = volSum
	}
	out.Fields["iceArea"] = iceArea
	out.Fields["iceVolume"] = iceVolume

	if firstCall {
		var area float64
		for c, a := range r.Mesh.AreaCell {
			if r.inHemisphere(r.Mesh.LatCell[c]) {
				area += a
			}
		}
		out.Fields["hemisphereArea"] = scalarField(area)
	}
	return out, nil
}
