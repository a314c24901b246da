package core

import (
	"github.com/polarcap/climatol/internal/iocache"
	"github.com/polarcap/climatol/schema"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// newTestEngine returns an engine over an in-memory filesystem.
func newTestEngine() (*Engine, *iocache.ArtifactStore) {
	store := iocache.NewArtifactStore(afero.NewMemMapFs())
	return NewEngine(store, zap.NewNop().Sugar()), store
}

// monthlyDataset builds a monthly dataset for [startYear, endYear] with
// one scalar field whose value at index i is float64(i).
func monthlyDataset(cal schema.Calendar, startYear, endYear int, name string) *schema.Dataset {
	var times []float64
	for year := startYear; year <= endYear; year++ {
		for month := 1; month <= 12; month++ {
			times = append(times, cal.MidMonth(year, month))
		}
	}
	ds := schema.NewDataset(cal, times)
	f := schema.NewField([]string{schema.TimeDim}, []int{len(times)})
	for i := range f.Values {
		f.Values[i] = float64(i)
	}
	ds.Fields[name] = f
	return ds
}
