package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"slices"

	"github.com/polarcap/climatol/internal/iocache"
	"github.com/polarcap/climatol/schema"
)

// SourceDescriptor identifies an unstructured model grid by its mesh
// name and cell-center coordinates in degrees. Its signature keys the
// persisted mapping file, so a mesh swap forces a weight rebuild.
type SourceDescriptor struct {
	MeshName string
	CellLat  []float64
	CellLon  []float64
}

// Signature returns a short fingerprint of the mesh identity and every
// cell coordinate.
func (d SourceDescriptor) Signature() string {
	h := sha256.New()
	io.WriteString(h, d.MeshName)
	binary.Write(h, binary.LittleEndian, int64(len(d.CellLat)))
	binary.Write(h, binary.LittleEndian, d.CellLat)
	binary.Write(h, binary.LittleEndian, d.CellLon)
	return hex.EncodeToString(h.Sum(nil)[:8])
}

// TargetDescriptor is a regular comparison grid given by its bounding
// box and resolution in degrees. Cell centers sit half a cell inside
// the bounds.
type TargetDescriptor struct {
	Name   string
	LatMin float64
	LatMax float64
	LonMin float64
	LonMax float64
	LatRes float64
	LonRes float64
}

// NewLatLonTarget builds the global regular comparison grid.
func NewLatLonTarget(latRes, lonRes float64) TargetDescriptor {
	return TargetDescriptor{
		Name:   fmt.Sprintf("latlon_%gx%g", latRes, lonRes),
		LatMin: -90, LatMax: 90,
		LonMin: -180, LonMax: 180,
		LatRes: latRes, LonRes: lonRes,
	}
}

// NewPolarTarget builds a polar comparison grid covering latitudes
// poleward of 50 degrees in the given hemisphere, "north" or "south".
func NewPolarTarget(hemisphere string, latRes, lonRes float64) (TargetDescriptor, error) {
	switch hemisphere {
	case "north":
		return TargetDescriptor{
			Name:   fmt.Sprintf("polar_north_%gx%g", latRes, lonRes),
			LatMin: 50, LatMax: 90,
			LonMin: -180, LonMax: 180,
			LatRes: latRes, LonRes: lonRes,
		}, nil
	case "south":
		return TargetDescriptor{
			Name:   fmt.Sprintf("polar_south_%gx%g", latRes, lonRes),
			LatMin: -90, LatMax: -50,
			LonMin: -180, LonMax: 180,
			LatRes: latRes, LonRes: lonRes,
		}, nil
	default:
		return TargetDescriptor{}, fmt.Errorf("%w: unknown hemisphere %q", schema.ErrConfig, hemisphere)
	}
}

// LatCenters returns the latitude cell centers, south to north.
func (d TargetDescriptor) LatCenters() []float64 {
	n := int(math.Round((d.LatMax - d.LatMin) / d.LatRes))
	centers := make([]float64, n)
	for i := range centers {
		centers[i] = d.LatMin + (float64(i)+0.5)*d.LatRes
	}
	return centers
}

// LonCenters returns the longitude cell centers, west to east.
func (d TargetDescriptor) LonCenters() []float64 {
	n := int(math.Round((d.LonMax - d.LonMin) / d.LonRes))
	centers := make([]float64, n)
	for i := range centers {
		centers[i] = d.LonMin + (float64(i)+0.5)*d.LonRes
	}
	return centers
}

// Signature returns a short fingerprint of the grid geometry.
func (d TargetDescriptor) Signature() string {
	h := sha256.New()
	io.WriteString(h, d.Name)
	binary.Write(h, binary.LittleEndian, []float64{d.LatMin, d.LatMax, d.LonMin, d.LonMax, d.LatRes, d.LonRes})
	return hex.EncodeToString(h.Sum(nil)[:8])
}

// RemapRequest pairs a source mesh with a comparison grid under one
// remapping method.
type RemapRequest struct {
	Source      SourceDescriptor
	Target      TargetDescriptor
	Method      string
	MappingPath string
}

// Key is the full descriptor identity recorded inside a mapping file. A
// persisted file whose key differs from the request is stale and gets
// rebuilt in place.
func (req RemapRequest) Key() string {
	return req.Source.Signature() + "-" + req.Target.Signature() + "-" + req.Method
}

// Remapper applies persisted sparse weights mapping source cells onto a
// regular comparison grid.
type Remapper struct {
	key         string
	nSource     int
	targetShape []int
	targetLat   []float64
	targetLon   []float64
	rows        []int
	cols        []int
	weights     []float64
}

// GetRemapper returns a remapper for the request, loading the persisted
// mapping file when its key matches and building and persisting the
// weights otherwise. The second return reports whether the file was
// reused.
func (e *Engine) GetRemapper(req RemapRequest) (*Remapper, bool, error) {
	if len(req.Source.CellLat) != len(req.Source.CellLon) {
		return nil, false, fmt.Errorf("%w: source mesh has %d latitudes but %d longitudes",
			schema.ErrGridMismatch, len(req.Source.CellLat), len(req.Source.CellLon))
	}
	key := req.Key()

	art, err := e.store.ReadWeights(req.MappingPath)
	switch {
	case err == nil:
		if art.Key == key {
			e.log.Debugw("reusing mapping file", "path", req.MappingPath, "key", key)
			return remapperFromArtifact(art), true, nil
		}
		e.log.Warnw("mapping file was built for a different grid pair, rebuilding",
			"path", req.MappingPath, "cachedKey", art.Key, "key", key)
	case errors.Is(err, schema.ErrCacheCorrupt):
		e.log.Warnw("discarding corrupt mapping file", "path", req.MappingPath, "error", err)
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, false, err
	}

	r, err := buildRemapper(req, key)
	if err != nil {
		return nil, false, err
	}
	if err := e.store.WriteWeights(req.MappingPath, r.artifact()); err != nil {
		return nil, false, err
	}
	e.log.Debugw("built mapping file", "path", req.MappingPath,
		"method", req.Method, "links", len(r.weights))
	return r, false, nil
}

func buildRemapper(req RemapRequest, key string) (*Remapper, error) {
	latC := req.Target.LatCenters()
	lonC := req.Target.LonCenters()
	r := &Remapper{
		key:         key,
		nSource:     len(req.Source.CellLat),
		targetShape: []int{len(latC), len(lonC)},
		targetLat:   latC,
		targetLon:   lonC,
	}
	switch req.Method {
	case "conserve":
		r.binWeights(req.Source, req.Target)
	case "neareststod":
		r.nearestWeights(req.Source, req.Target)
	default:
		return nil, fmt.Errorf("%w: unknown remap method %q", schema.ErrConfig, req.Method)
	}
	return r, nil
}

// binWeights assigns each source cell to the target cell containing its
// center, with unit weight. Averaging at apply time then makes each
// target value the mean of the source cells that landed in it. Source
// cells outside the target bounds contribute nowhere, which is how
// polar grids discard the rest of the globe.
func (r *Remapper) binWeights(src SourceDescriptor, tgt TargetDescriptor) {
	nLat, nLon := r.targetShape[0], r.targetShape[1]
	for i := range src.CellLat {
		li := int(math.Floor((src.CellLat[i] - tgt.LatMin) / tgt.LatRes))
		if li < 0 || li >= nLat {
			continue
		}
		lon := wrapLon(src.CellLon[i], tgt.LonMin)
		gi := int(math.Floor((lon - tgt.LonMin) / tgt.LonRes))
		if gi < 0 || gi >= nLon {
			continue
		}
		r.rows = append(r.rows, li*nLon+gi)
		r.cols = append(r.cols, i)
		r.weights = append(r.weights, 1)
	}
}

// nearestWeights links every target cell to its nearest source cell by
// chord distance on the unit sphere. Brute force; mapping files are
// built once and reused.
func (r *Remapper) nearestWeights(src SourceDescriptor, tgt TargetDescriptor) {
	n := len(src.CellLat)
	sx := make([]float64, n)
	sy := make([]float64, n)
	sz := make([]float64, n)
	for i := range src.CellLat {
		sx[i], sy[i], sz[i] = unitVector(src.CellLat[i], src.CellLon[i])
	}
	for li, lat := range r.targetLat {
		for gi, lon := range r.targetLon {
			tx, ty, tz := unitVector(lat, lon)
			best, bestD := -1, math.Inf(1)
			for i := 0; i < n; i++ {
				dx, dy, dz := sx[i]-tx, sy[i]-ty, sz[i]-tz
				d := dx*dx + dy*dy + dz*dz
				if d < bestD {
					best, bestD = i, d
				}
			}
			if best < 0 {
				continue
			}
			r.rows = append(r.rows, li*len(r.targetLon)+gi)
			r.cols = append(r.cols, best)
			r.weights = append(r.weights, 1)
		}
	}
}

func unitVector(latDeg, lonDeg float64) (x, y, z float64) {
	lat := latDeg * math.Pi / 180
	lon := lonDeg * math.Pi / 180
	return math.Cos(lat) * math.Cos(lon), math.Cos(lat) * math.Sin(lon), math.Sin(lat)
}

// wrapLon shifts a longitude into [min, min+360).
func wrapLon(lon, min float64) float64 {
	for lon < min {
		lon += 360
	}
	for lon >= min+360 {
		lon -= 360
	}
	return lon
}

// NSource returns the number of source cells the weights expect.
func (r *Remapper) NSource() int { return r.nSource }

// TargetLat returns the comparison grid latitude centers.
func (r *Remapper) TargetLat() []float64 { return r.targetLat }

// TargetLon returns the comparison grid longitude centers.
func (r *Remapper) TargetLon() []float64 { return r.targetLon }

// Remap maps a field whose trailing dimension enumerates source cells
// onto the comparison grid, replacing that dimension with lat and lon.
// Leading dimensions (time, depth) are preserved. Each target value is
// the weight-normalized sum of its non-NaN source contributions; a
// target cell with no contributions is NaN.
func (r *Remapper) Remap(f *schema.Field) (*schema.Field, error) {
	if len(f.Shape) == 0 || f.Shape[len(f.Shape)-1] != r.nSource {
		return nil, fmt.Errorf("%w: field shape %v does not end in %d source cells",
			schema.ErrGridMismatch, f.Shape, r.nSource)
	}
	nTarget := r.targetShape[0] * r.targetShape[1]
	lead := 1
	for _, s := range f.Shape[:len(f.Shape)-1] {
		lead *= s
	}
	out := &schema.Field{
		Dims:   append(slices.Clone(f.Dims[:len(f.Dims)-1]), "lat", "lon"),
		Shape:  append(slices.Clone(f.Shape[:len(f.Shape)-1]), r.targetShape[0], r.targetShape[1]),
		Values: make([]float64, lead*nTarget),
	}
	wsum := make([]float64, nTarget)
	for b := 0; b < lead; b++ {
		src := f.Values[b*r.nSource : (b+1)*r.nSource]
		dst := out.Values[b*nTarget : (b+1)*nTarget]
		for j := range wsum {
			wsum[j] = 0
		}
		for k, w := range r.weights {
			v := src[r.cols[k]]
			if math.IsNaN(v) {
				continue
			}
			dst[r.rows[k]] += w * v
			wsum[r.rows[k]] += w
		}
		for j := range dst {
			if wsum[j] == 0 {
				dst[j] = math.NaN()
			} else {
				dst[j] /= wsum[j]
			}
		}
	}
	return out, nil
}

// RemapDataset remaps every field whose trailing dimension matches the
// source mesh and copies the rest through unchanged.
func (r *Remapper) RemapDataset(ds *schema.Dataset) (*schema.Dataset, error) {
	out := schema.NewDataset(ds.Calendar, ds.Times)
	for name, f := range ds.Fields {
		if len(f.Shape) > 0 && f.Shape[len(f.Shape)-1] == r.nSource {
			mapped, err := r.Remap(f)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", name, err)
			}
			out.Fields[name] = mapped
			continue
		}
		out.Fields[name] = f.Clone()
	}
	return out, nil
}

func remapperFromArtifact(a *iocache.WeightArtifact) *Remapper {
	return &Remapper{
		key:         a.Key,
		nSource:     a.NSource,
		targetShape: a.TargetShape,
		targetLat:   a.TargetLat,
		targetLon:   a.TargetLon,
		rows:        a.Rows,
		cols:        a.Cols,
		weights:     a.Weights,
	}
}

func (r *Remapper) artifact() *iocache.WeightArtifact {
	return &iocache.WeightArtifact{
		Key:         r.key,
		NSource:     r.nSource,
		TargetShape: r.targetShape,
		TargetLat:   r.targetLat,
		TargetLon:   r.targetLon,
		Rows:        r.rows,
		Cols:        r.cols,
		Weights:     r.weights,
	}
}
