package schema

import (
	"fmt"
	"slices"
	"sort"
)

// TimeDim is the name of the unlimited time dimension in model output.
const TimeDim = "Time"

// Field is a dense, row-major array with named dimensions. When a field
// carries a time dimension it is always the leading one, so records for
// one time point are contiguous.
type Field struct {
	Dims   []string  `json:"dims"`
	Shape  []int     `json:"shape"`
	Values []float64 `json:"values"`
}

// NewField allocates a field with the given dimensions.
func NewField(dims []string, shape []int) *Field {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return &Field{
		Dims:   slices.Clone(dims),
		Shape:  slices.Clone(shape),
		Values: make([]float64, n),
	}
}

// HasTimeDim reports whether the field varies along the time axis.
func (f *Field) HasTimeDim() bool {
	return len(f.Dims) > 0 && f.Dims[0] == TimeDim
}

// TimeStride returns the number of values per time point. Only valid for
// fields with a time dimension.
func (f *Field) TimeStride() int {
	stride := 1
	for _, s := range f.Shape[1:] {
		stride *= s
	}
	return stride
}

// Clone returns a deep copy of the field.
func (f *Field) Clone() *Field {
	return &Field{
		Dims:   slices.Clone(f.Dims),
		Shape:  slices.Clone(f.Shape),
		Values: slices.Clone(f.Values),
	}
}

// Dataset is an in-memory collection of fields sharing one time axis.
// Times are fractional days since 0001-01-01 under Calendar and must be
// monotonically non-decreasing; the engine assumes callers supply
// sorted, date-range-filtered input.
type Dataset struct {
	Calendar Calendar          `json:"calendar"`
	Times    []float64         `json:"times"`
	Fields   map[string]*Field `json:"fields"`
}

// NewDataset creates a dataset with the given calendar and time axis.
func NewDataset(cal Calendar, times []float64) *Dataset {
	return &Dataset{
		Calendar: cal,
		Times:    slices.Clone(times),
		Fields:   make(map[string]*Field),
	}
}

// VarNames returns the sorted field names.
func (ds *Dataset) VarNames() []string {
	names := make([]string, 0, len(ds.Fields))
	for name := range ds.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of the dataset.
func (ds *Dataset) Clone() *Dataset {
	out := NewDataset(ds.Calendar, ds.Times)
	for name, f := range ds.Fields {
		out.Fields[name] = f.Clone()
	}
	return out
}

// Isel selects the given time indices, in order. Fields without a time
// dimension are copied through unchanged.
func (ds *Dataset) Isel(indices []int) (*Dataset, error) {
	times := make([]float64, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(ds.Times) {
			return nil, fmt.Errorf("time index %d out of range [0,%d)", idx, len(ds.Times))
		}
		times[i] = ds.Times[idx]
	}
	out := NewDataset(ds.Calendar, times)
	for name, f := range ds.Fields {
		if !f.HasTimeDim() {
			out.Fields[name] = f.Clone()
			continue
		}
		stride := f.TimeStride()
		sel := NewField(f.Dims, f.Shape)
		sel.Shape[0] = len(indices)
		sel.Values = make([]float64, len(indices)*stride)
		for i, idx := range indices {
			copy(sel.Values[i*stride:(i+1)*stride], f.Values[idx*stride:(idx+1)*stride])
		}
		out.Fields[name] = sel
	}
	return out, nil
}

// ConcatTime appends other's time points to ds in place. Fields present
// in ds but absent from other (and vice versa) are an error for
// time-varying fields; time-invariant fields are kept from ds, which is
// how one-time auxiliary quantities built on a cold start persist across
// later chunks.
func (ds *Dataset) ConcatTime(other *Dataset) error {
	if ds.Calendar != other.Calendar {
		return fmt.Errorf("%w: %s vs %s", ErrCalendarMismatch, ds.Calendar, other.Calendar)
	}
	for name, f := range ds.Fields {
		if !f.HasTimeDim() {
			continue
		}
		of, ok := other.Fields[name]
		if !ok {
			return fmt.Errorf("cannot concatenate: field %q missing from appended dataset", name)
		}
		if f.TimeStride() != of.TimeStride() {
			return fmt.Errorf("cannot concatenate: field %q stride %d vs %d", name, f.TimeStride(), of.TimeStride())
		}
		f.Values = append(f.Values, of.Values...)
		f.Shape[0] += of.Shape[0]
	}
	for name, of := range other.Fields {
		if _, ok := ds.Fields[name]; !ok {
			if of.HasTimeDim() {
				return fmt.Errorf("cannot concatenate: field %q missing from base dataset", name)
			}
			ds.Fields[name] = of.Clone()
		}
	}
	ds.Times = append(ds.Times, other.Times...)
	return nil
}

// TruncateTime returns the subset of ds whose time values fall within
// [start, end], inclusive with a half-second tolerance.
func (ds *Dataset) TruncateTime(start, end float64) (*Dataset, error) {
	const eps = 0.5 / secondsPerDay
	var indices []int
	for i, t := range ds.Times {
		if t >= start-eps && t <= end+eps {
			indices = append(indices, i)
		}
	}
	return ds.Isel(indices)
}
