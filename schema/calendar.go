package schema

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Model output references time as fractional days since 0001-01-01
// 00:00:00 under the run's calendar, so conversions here use a year-1
// epoch rather than time.Time.

const secondsPerDay = 86400.0

// daysPerMonth holds the month lengths of a non-leap year.
var daysPerMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// cumDaysBeforeMonth[m-1] is the number of days before month m in a
// non-leap year.
var cumDaysBeforeMonth = [12]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

// Date is a calendar-aware instant.
type Date struct {
	Year    int
	Month   int
	Day     int
	Seconds float64
}

// dateRe matches the MPAS date format "YYYY-MM-DD_hh:mm:ss" with the
// time-of-day part optional.
var dateRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})(?:[_T](\d{2}):(\d{2}):(\d{2}))?$`)

// ParseDate parses "YYYY-MM-DD" or "YYYY-MM-DD_hh:mm:ss".
func ParseDate(s string) (Date, error) {
	m := dateRe.FindStringSubmatch(s)
	if m == nil {
		return Date{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD or YYYY-MM-DD_hh:mm:ss", ErrConfig, s)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return Date{}, fmt.Errorf("%w: date %q out of range", ErrConfig, s)
	}
	var secs float64
	if m[4] != "" {
		hh, _ := strconv.Atoi(m[4])
		mm, _ := strconv.Atoi(m[5])
		ss, _ := strconv.Atoi(m[6])
		secs = float64(hh*3600 + mm*60 + ss)
	}
	return Date{Year: year, Month: month, Day: day, Seconds: secs}, nil
}

// String formats the date in the MPAS "YYYY-MM-DD_hh:mm:ss" form.
func (d Date) String() string {
	s := int(d.Seconds)
	return fmt.Sprintf("%04d-%02d-%02d_%02d:%02d:%02d",
		d.Year, d.Month, d.Day, s/3600, (s%3600)/60, s%60)
}

// Before reports whether d is earlier than o. Comparison is
// calendar-independent because both calendars order dates identically.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	if d.Day != o.Day {
		return d.Day < o.Day
	}
	return d.Seconds < o.Seconds
}

// IsLeapYear reports whether year has a Feb 29 under the calendar.
// The noleap calendar never does.
func (c Calendar) IsLeapYear(year int) bool {
	if c != GregorianCalendar {
		return false
	}
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the length in days of the given month.
func (c Calendar) DaysInMonth(year, month int) int {
	if month == 2 && c.IsLeapYear(year) {
		return 29
	}
	return daysPerMonth[month-1]
}

// DaysInYear returns 365 or, for gregorian leap years, 366.
func (c Calendar) DaysInYear(year int) int {
	if c.IsLeapYear(year) {
		return 366
	}
	return 365
}

// leapDaysBefore counts leap years in [1, year-1] under the proleptic
// Gregorian calendar.
func leapDaysBefore(year int) int {
	n := year - 1
	return n/4 - n/100 + n/400
}

// DateToDays converts a Date to fractional days since 0001-01-01.
func (c Calendar) DateToDays(d Date) float64 {
	days := 365 * (d.Year - 1)
	if c == GregorianCalendar {
		days += leapDaysBefore(d.Year)
	}
	days += cumDaysBeforeMonth[d.Month-1]
	if d.Month > 2 && c.IsLeapYear(d.Year) {
		days++
	}
	days += d.Day - 1
	return float64(days) + d.Seconds/secondsPerDay
}

// DaysToDate converts fractional days since 0001-01-01 back to a Date.
func (c Calendar) DaysToDate(days float64) Date {
	whole := int(math.Floor(days))
	secs := (days - math.Floor(days)) * secondsPerDay

	// Initial estimate, then correct; the estimate is off by at most one
	// year near year boundaries.
	year := whole/366 + 1
	for int(c.DateToDays(Date{Year: year + 1, Month: 1, Day: 1})) <= whole {
		year++
	}
	for int(c.DateToDays(Date{Year: year, Month: 1, Day: 1})) > whole {
		year--
	}

	remaining := whole - int(c.DateToDays(Date{Year: year, Month: 1, Day: 1}))
	month := 1
	for remaining >= c.DaysInMonth(year, month) {
		remaining -= c.DaysInMonth(year, month)
		month++
	}
	return Date{Year: year, Month: month, Day: remaining + 1, Seconds: secs}
}

// YearOf returns the calendar year containing the given time value.
func (c Calendar) YearOf(days float64) int {
	return c.DaysToDate(days).Year
}

// MonthOf returns the calendar month containing the given time value.
func (c Calendar) MonthOf(days float64) int {
	return c.DaysToDate(days).Month
}

// MidMonth returns the time value at the middle of the given month,
// matching the timestamp convention of monthly-averaged model output.
func (c Calendar) MidMonth(year, month int) float64 {
	start := c.DateToDays(Date{Year: year, Month: month, Day: 1})
	return start + float64(c.DaysInMonth(year, month))/2
}
