package core

import (
	"fmt"
	"testing"

	"github.com/polarcap/climatol/internal/contract"
	"github.com/polarcap/climatol/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// monthlySpans builds one file span per month from start to end.
func monthlySpans(startYear, startMonth, endYear, endMonth int) []contract.FileSpan {
	var spans []contract.FileSpan
	for y := startYear; y <= endYear; y++ {
		m0, m1 := 1, 12
		if y == startYear {
			m0 = startMonth
		}
		if y == endYear {
			m1 = endMonth
		}
		for m := m0; m <= m1; m++ {
			spans = append(spans, contract.FileSpan{
				Path:  fmt.Sprintf("out.%04d-%02d-01.nc", y, m),
				Year:  y,
				Month: m,
			})
		}
	}
	return spans
}

func TestResolveBoundsExactYears(t *testing.T) {
	files := monthlySpans(2000, 1, 2009, 12)
	b, err := ResolveBounds(files,
		schema.Date{Year: 2000, Month: 1, Day: 1},
		schema.Date{Year: 2009, Month: 12, Day: 31})
	require.NoError(t, err)
	assert.Equal(t, 2000, b.StartYear)
	assert.Equal(t, 2009, b.EndYear)
	assert.False(t, b.Changed)
}

func TestResolveBoundsTrimsPartialYears(t *testing.T) {
	// Run starts in March 0002 and stops in August 0010, so only years
	// 0003 through 0009 are complete.
	files := monthlySpans(2, 3, 10, 8)
	b, err := ResolveBounds(files,
		schema.Date{Year: 1, Month: 1, Day: 1},
		schema.Date{Year: 10, Month: 12, Day: 31})
	require.NoError(t, err)
	assert.Equal(t, 3, b.StartYear)
	assert.Equal(t, 9, b.EndYear)
	assert.True(t, b.Changed)
	assert.Equal(t, schema.Date{Year: 3, Month: 1, Day: 1}, b.StartDate)
	assert.Equal(t, 9, b.EndDate.Year)
	assert.Equal(t, 12, b.EndDate.Month)
}

func TestResolveBoundsClipsToRequest(t *testing.T) {
	files := monthlySpans(2000, 1, 2009, 12)
	b, err := ResolveBounds(files,
		schema.Date{Year: 2002, Month: 1, Day: 1},
		schema.Date{Year: 2005, Month: 12, Day: 31})
	require.NoError(t, err)
	assert.Equal(t, 2002, b.StartYear)
	assert.Equal(t, 2005, b.EndYear)
	assert.False(t, b.Changed)
}

func TestResolveBoundsErrors(t *testing.T) {
	start := schema.Date{Year: 2000, Month: 1, Day: 1}
	end := schema.Date{Year: 2010, Month: 12, Day: 31}

	_, err := ResolveBounds(nil, start, end)
	assert.ErrorIs(t, err, schema.ErrNoData)

	// Less than one complete year of output.
	_, err = ResolveBounds(monthlySpans(2000, 2, 2000, 11), start, end)
	assert.ErrorIs(t, err, schema.ErrNoData)

	// Requested window entirely outside the available years.
	_, err = ResolveBounds(monthlySpans(2000, 1, 2004, 12),
		schema.Date{Year: 2010, Month: 1, Day: 1},
		schema.Date{Year: 2020, Month: 12, Day: 31})
	assert.ErrorIs(t, err, schema.ErrNoData)
}

func TestBoundsYearString(t *testing.T) {
	assert.Equal(t, "year2000", Bounds{StartYear: 2000, EndYear: 2000}.YearString())
	assert.Equal(t, "years2000-2009", Bounds{StartYear: 2000, EndYear: 2009}.YearString())
}
