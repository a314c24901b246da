package core

import (
	"fmt"

	"github.com/polarcap/climatol/internal/contract"
	"github.com/polarcap/climatol/schema"
)

// Bounds is the usable whole-year window derived from discovered files,
// clipped to the requested range. Changed reports that the effective
// window differs from what was requested, so callers can warn.
type Bounds struct {
	StartYear int
	EndYear   int
	StartDate schema.Date
	EndDate   schema.Date
	Changed   bool
}

// ResolveBounds derives the tightest [startYear, endYear] window that is
// both requested and backed by complete years of input. The first full
// year begins at the earliest January slice, the last full year ends at
// the latest December slice; partial years at either edge are dropped.
func ResolveBounds(files []contract.FileSpan, requestedStart, requestedEnd schema.Date) (Bounds, error) {
	if len(files) == 0 {
		return Bounds{}, fmt.Errorf("%w: no input files to resolve bounds from", schema.ErrNoData)
	}

	first := 0
	for first < len(files) && files[first].Month != 1 {
		first++
	}
	last := len(files) - 1
	for last >= 0 && files[last].Month != 12 {
		last--
	}
	if first >= len(files) || last < 0 || files[first].Year > files[last].Year {
		return Bounds{}, fmt.Errorf("%w: input files span no complete year", schema.ErrNoData)
	}

	startYear := files[first].Year
	endYear := files[last].Year
	if requestedStart.Year > startYear {
		startYear = requestedStart.Year
	}
	if requestedEnd.Year < endYear {
		endYear = requestedEnd.Year
	}
	if startYear > endYear {
		return Bounds{}, fmt.Errorf("%w: requested years %04d-%04d do not overlap available years %04d-%04d",
			schema.ErrNoData, requestedStart.Year, requestedEnd.Year, files[first].Year, files[last].Year)
	}

	return Bounds{
		StartYear: startYear,
		EndYear:   endYear,
		StartDate: schema.Date{Year: startYear, Month: 1, Day: 1},
		EndDate:   schema.Date{Year: endYear, Month: 12, Day: 31, Seconds: 86399},
		Changed:   startYear != requestedStart.Year || endYear != requestedEnd.Year,
	}, nil
}

// YearString formats the covered span the way cache file names do.
func (b Bounds) YearString() string {
	if b.StartYear == b.EndYear {
		return fmt.Sprintf("year%04d", b.StartYear)
	}
	return fmt.Sprintf("years%04d-%04d", b.StartYear, b.EndYear)
}
