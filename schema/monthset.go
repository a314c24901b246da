package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// MonthSet is a named, ordered group of calendar months averaged
// together with day-in-month weights. Its identity (name + members) is
// part of every climatology cache key.
type MonthSet struct {
	Name   string
	Months []int
}

// NamedMonthSets is the season vocabulary understood by the engine:
// individual months, the standard and shifted three-month seasons, the
// two-month transition seasons and the annual mean.
var NamedMonthSets = map[string]MonthSet{
	"Jan": {Name: "Jan", Months: []int{1}},
	"Feb": {Name: "Feb", Months: []int{2}},
	"Mar": {Name: "Mar", Months: []int{3}},
	"Apr": {Name: "Apr", Months: []int{4}},
	"May": {Name: "May", Months: []int{5}},
	"Jun": {Name: "Jun", Months: []int{6}},
	"Jul": {Name: "Jul", Months: []int{7}},
	"Aug": {Name: "Aug", Months: []int{8}},
	"Sep": {Name: "Sep", Months: []int{9}},
	"Oct": {Name: "Oct", Months: []int{10}},
	"Nov": {Name: "Nov", Months: []int{11}},
	"Dec": {Name: "Dec", Months: []int{12}},

	"DJF": {Name: "DJF", Months: []int{12, 1, 2}},
	"MAM": {Name: "MAM", Months: []int{3, 4, 5}},
	"JJA": {Name: "JJA", Months: []int{6, 7, 8}},
	"SON": {Name: "SON", Months: []int{9, 10, 11}},

	"JFM": {Name: "JFM", Months: []int{1, 2, 3}},
	"AMJ": {Name: "AMJ", Months: []int{4, 5, 6}},
	"JAS": {Name: "JAS", Months: []int{7, 8, 9}},
	"OND": {Name: "OND", Months: []int{10, 11, 12}},

	"ON": {Name: "ON", Months: []int{10, 11}},
	"FM": {Name: "FM", Months: []int{2, 3}},

	"ANN": {Name: "ANN", Months: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}},
}

// LookupMonthSet resolves a season name, failing with ErrConfig for
// names outside the vocabulary.
func LookupMonthSet(name string) (MonthSet, error) {
	ms, ok := NamedMonthSets[name]
	if !ok {
		return MonthSet{}, fmt.Errorf("%w: unknown month set %q", ErrConfig, name)
	}
	return ms, nil
}

// Contains reports whether the set includes the given month.
func (ms MonthSet) Contains(month int) bool {
	for _, m := range ms.Months {
		if m == month {
			return true
		}
	}
	return false
}

// Identity returns the canonical name+members string used in cache keys,
// so a renamed or edited set never matches a stale artifact.
func (ms MonthSet) Identity() string {
	parts := make([]string, len(ms.Months))
	for i, m := range ms.Months {
		parts[i] = strconv.Itoa(m)
	}
	return ms.Name + ":" + strings.Join(parts, ",")
}
