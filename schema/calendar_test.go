package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("1855-04-09")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 1855, Month: 4, Day: 9}, d)

	d, err = ParseDate("0001-01-01_06:30:15")
	require.NoError(t, err)
	assert.Equal(t, 1, d.Year)
	assert.InDelta(t, 6*3600+30*60+15, d.Seconds, 1e-9)

	_, err = ParseDate("18550409")
	assert.ErrorIs(t, err, ErrConfig)

	_, err = ParseDate("1855-13-01")
	assert.ErrorIs(t, err, ErrConfig)
}

func TestDateString(t *testing.T) {
	d := Date{Year: 2000, Month: 1, Day: 16, Seconds: 12 * 3600}
	assert.Equal(t, "2000-01-16_12:00:00", d.String())
	assert.Equal(t, "0001-01-01_00:00:00", Date{Year: 1, Month: 1, Day: 1}.String())
}

func TestDateBefore(t *testing.T) {
	a := Date{Year: 10, Month: 6, Day: 15}
	assert.True(t, a.Before(Date{Year: 11, Month: 1, Day: 1}))
	assert.True(t, a.Before(Date{Year: 10, Month: 6, Day: 16}))
	assert.False(t, a.Before(a))
	assert.False(t, Date{Year: 11, Month: 1, Day: 1}.Before(a))
}

func TestLeapYears(t *testing.T) {
	assert.True(t, GregorianCalendar.IsLeapYear(2000))
	assert.True(t, GregorianCalendar.IsLeapYear(1996))
	assert.False(t, GregorianCalendar.IsLeapYear(1900))
	assert.False(t, GregorianCalendar.IsLeapYear(2001))

	assert.False(t, NoLeapCalendar.IsLeapYear(2000))
	assert.Equal(t, 365, NoLeapCalendar.DaysInYear(2000))
	assert.Equal(t, 366, GregorianCalendar.DaysInYear(2000))
	assert.Equal(t, 28, NoLeapCalendar.DaysInMonth(2000, 2))
	assert.Equal(t, 29, GregorianCalendar.DaysInMonth(2000, 2))
}

func TestDateToDaysEpoch(t *testing.T) {
	epoch := Date{Year: 1, Month: 1, Day: 1}
	assert.Zero(t, NoLeapCalendar.DateToDays(epoch))
	assert.Zero(t, GregorianCalendar.DateToDays(epoch))

	// One noleap year later
	assert.InDelta(t, 365, NoLeapCalendar.DateToDays(Date{Year: 2, Month: 1, Day: 1}), 1e-9)

	// Mar 1 of a gregorian leap year is a day later than noleap
	leap := Date{Year: 4, Month: 3, Day: 1}
	diff := GregorianCalendar.DateToDays(leap) - NoLeapCalendar.DateToDays(leap)
	assert.InDelta(t, 1, diff, 1e-9)
}

func TestDaysToDateRoundTrip(t *testing.T) {
	dates := []Date{
		{Year: 1, Month: 1, Day: 1},
		{Year: 1, Month: 12, Day: 31},
		{Year: 4, Month: 2, Day: 28},
		{Year: 4, Month: 3, Day: 1},
		{Year: 100, Month: 2, Day: 28},
		{Year: 400, Month: 2, Day: 29},
		{Year: 1855, Month: 7, Day: 4},
		{Year: 2000, Month: 2, Day: 29},
	}
	for _, cal := range []Calendar{NoLeapCalendar, GregorianCalendar} {
		for _, d := range dates {
			if d.Day == 29 && d.Month == 2 && !cal.IsLeapYear(d.Year) {
				continue
			}
			got := cal.DaysToDate(cal.DateToDays(d))
			assert.Equal(t, d.Year, got.Year, "%s %v", cal, d)
			assert.Equal(t, d.Month, got.Month, "%s %v", cal, d)
			assert.Equal(t, d.Day, got.Day, "%s %v", cal, d)
		}
	}
}

func TestDaysToDateFractional(t *testing.T) {
	days := NoLeapCalendar.DateToDays(Date{Year: 50, Month: 6, Day: 2, Seconds: 43200})
	d := NoLeapCalendar.DaysToDate(days)
	assert.Equal(t, 50, d.Year)
	assert.Equal(t, 6, d.Month)
	assert.Equal(t, 2, d.Day)
	assert.InDelta(t, 43200, d.Seconds, 1e-6)
}

func TestYearAndMonthOf(t *testing.T) {
	days := NoLeapCalendar.MidMonth(1923, 11)
	assert.Equal(t, 1923, NoLeapCalendar.YearOf(days))
	assert.Equal(t, 11, NoLeapCalendar.MonthOf(days))
}

func TestMidMonth(t *testing.T) {
	// January has 31 days, so mid-month is Jan 16 12:00
	d := NoLeapCalendar.DaysToDate(NoLeapCalendar.MidMonth(2000, 1))
	assert.Equal(t, "2000-01-16_12:00:00", d.String())

	// February of a gregorian leap year is a half day later
	noleap := NoLeapCalendar.MidMonth(2000, 2) - NoLeapCalendar.DateToDays(Date{Year: 2000, Month: 2, Day: 1})
	greg := GregorianCalendar.MidMonth(2000, 2) - GregorianCalendar.DateToDays(Date{Year: 2000, Month: 2, Day: 1})
	assert.InDelta(t, 14, noleap, 1e-9)
	assert.InDelta(t, 14.5, greg, 1e-9)
}
