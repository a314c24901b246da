package diag

import (
	"fmt"
	"math"

	"github.com/polarcap/climatol/core"
	"github.com/polarcap/climatol/internal/contract"
	"github.com/polarcap/climatol/schema"
)

// Mesh holds the time-invariant cell geometry of an unstructured grid:
// cell areas in square meters and cell-center coordinates in degrees.
type Mesh struct {
	Name     string
	AreaCell []float64
	LatCell  []float64
	LonCell  []float64
}

// LoadMesh reads cell geometry from a mesh or restart file. Model
// output stores cell coordinates in radians; they are converted to
// degrees here.
func LoadMesh(reader contract.RawReader, path, meshName string, cal schema.Calendar) (*Mesh, error) {
	ds, err := reader.ReadDataset(
		[]contract.FileSpan{{Path: path, Year: 1, Month: 1}},
		[]string{"areaCell", "latCell", "lonCell"}, cal)
	if err != nil {
		return nil, fmt.Errorf("failed to load mesh from %s: %w", path, err)
	}

	area := ds.Fields["areaCell"]
	lat := ds.Fields["latCell"]
	lon := ds.Fields["lonCell"]
	if area == nil || lat == nil || lon == nil {
		return nil, fmt.Errorf("%w: %s lacks cell geometry variables", schema.ErrNoData, path)
	}
	if len(lat.Values) != len(area.Values) || len(lon.Values) != len(area.Values) {
		return nil, fmt.Errorf("%w: mesh variables in %s disagree on cell count",
			schema.ErrGridMismatch, path)
	}

	m := &Mesh{
		Name:     meshName,
		AreaCell: area.Values,
		LatCell:  make([]float64, len(lat.Values)),
		LonCell:  make([]float64, len(lon.Values)),
	}
	for i := range lat.Values {
		m.LatCell[i] = lat.Values[i] * 180 / math.Pi
		m.LonCell[i] = lon.Values[i] * 180 / math.Pi
	}
	return m, nil
}

// NCells returns the number of cells in the mesh.
func (m *Mesh) NCells() int {
	return len(m.AreaCell)
}

// SourceDescriptor exposes the mesh as a remapping source.
func (m *Mesh) SourceDescriptor() core.SourceDescriptor {
	return core.SourceDescriptor{
		MeshName: m.Name,
		CellLat:  m.LatCell,
		CellLon:  m.LonCell,
	}
}
