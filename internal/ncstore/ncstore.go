// Package ncstore discovers monthly model output files and reads them
// into in-memory datasets through the netCDF C library.
package ncstore

import (
	"fmt"
	"math"

	"github.com/fhs/go-netcdf/netcdf"
	"github.com/polarcap/climatol/internal/contract"
	"github.com/polarcap/climatol/schema"
)

// Reader loads variables from monthly-averaged output files. Each file
// holds one time record; the time axis is synthesized as mid-month
// values from the year and month encoded in the file name, matching the
// timestamp convention of monthly statistics streams.
type Reader struct{}

var _ contract.RawReader = (*Reader)(nil)

// NewReader returns a Reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadDataset reads the named variables from the given files, in order,
// concatenated along time. Variables without a time dimension (mesh
// coordinates, cell areas) are read once from the first file.
func (r *Reader) ReadDataset(files []contract.FileSpan, variables []string, cal schema.Calendar) (*schema.Dataset, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files to read", schema.ErrNoFilesFound)
	}

	times := make([]float64, len(files))
	for i, f := range files {
		times[i] = cal.MidMonth(f.Year, f.Month)
	}
	ds := schema.NewDataset(cal, times)

	for fi, span := range files {
		nc, err := netcdf.OpenFile(span.Path, netcdf.NOWRITE)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", span.Path, err)
		}
		if err := r.readFileInto(nc, span, fi, variables, ds); err != nil {
			nc.Close()
			return nil, err
		}
		nc.Close()
	}
	return ds, nil
}

func (r *Reader) readFileInto(nc netcdf.Dataset, span contract.FileSpan, fileIndex int, variables []string, ds *schema.Dataset) error {
	for _, name := range variables {
		field, err := readVar(nc, name)
		if err != nil {
			return fmt.Errorf("%s: %w", span.Path, err)
		}
		if !field.HasTimeDim() {
			if fileIndex == 0 {
				ds.Fields[name] = field
			}
			continue
		}
		if field.Shape[0] != 1 {
			return fmt.Errorf("%s: variable %q has %d time records, want 1 per monthly file",
				span.Path, name, field.Shape[0])
		}
		acc, ok := ds.Fields[name]
		if !ok {
			acc = field.Clone()
			acc.Shape[0] = len(ds.Times)
			acc.Values = make([]float64, 0, len(ds.Times)*field.TimeStride())
			ds.Fields[name] = acc
		}
		if acc.TimeStride() != field.TimeStride() {
			return fmt.Errorf("%w: variable %q has %d values per record, earlier files had %d",
				schema.ErrGridMismatch, name, field.TimeStride(), acc.TimeStride())
		}
		acc.Values = append(acc.Values, field.Values...)
	}
	return nil
}

// readVar reads one variable as float64, converting narrower numeric
// types and replacing fill values with NaN.
func readVar(nc netcdf.Dataset, name string) (*schema.Field, error) {
	v, err := nc.Var(name)
	if err != nil {
		return nil, fmt.Errorf("%w: variable %q not found", schema.ErrNoData, name)
	}
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions of %q: %w", name, err)
	}
	dimNames := make([]string, len(dims))
	shape := make([]int, len(dims))
	n := 1
	for i, d := range dims {
		dn, err := d.Name()
		if err != nil {
			return nil, fmt.Errorf("failed to get dimension name of %q: %w", name, err)
		}
		dl, err := d.Len()
		if err != nil {
			return nil, fmt.Errorf("failed to get dimension length of %q: %w", name, err)
		}
		dimNames[i] = dn
		shape[i] = int(dl)
		n *= int(dl)
	}

	vt, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get type of %q: %w", name, err)
	}
	values := make([]float64, n)
	switch vt {
	case netcdf.DOUBLE:
		if err := v.ReadFloat64s(values); err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", name, err)
		}
	case netcdf.FLOAT:
		f32 := make([]float32, n)
		if err := v.ReadFloat32s(f32); err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", name, err)
		}
		for i, val := range f32 {
			values[i] = float64(val)
		}
	case netcdf.INT:
		i32 := make([]int32, n)
		if err := v.ReadInt32s(i32); err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", name, err)
		}
		for i, val := range i32 {
			values[i] = float64(val)
		}
	case netcdf.SHORT:
		i16 := make([]int16, n)
		if err := v.ReadInt16s(i16); err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", name, err)
		}
		for i, val := range i16 {
			values[i] = float64(val)
		}
	default:
		return nil, fmt.Errorf("variable %q has unsupported type %v", name, vt)
	}

	if fill, ok := fillValue(v); ok {
		for i, val := range values {
			if val == fill {
				values[i] = math.NaN()
			}
		}
	}
	return &schema.Field{Dims: dimNames, Shape: shape, Values: values}, nil
}

// fillValue reads the _FillValue attribute when present.
func fillValue(v netcdf.Var) (float64, bool) {
	attr := v.Attr("_FillValue")
	if n, err := attr.Len(); err != nil || n == 0 {
		return 0, false
	}
	buf := make([]float64, 1)
	if err := attr.ReadFloat64s(buf); err != nil {
		return 0, false
	}
	return buf[0], true
}
