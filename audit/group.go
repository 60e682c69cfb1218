package audit

import (
	"sort"

	"github.com/omniql-engine/queryguard/engine/timestamp"
)

// GroupByQuery counts records per query text. Groups keep the order in which
// their query was first seen.
func GroupByQuery(records []Record) []QueryCount {
	index := map[string]int{}
	var groups []QueryCount
	for _, r := range records {
		i, ok := index[r.Query]
		if !ok {
			i = len(groups)
			index[r.Query] = i
			groups = append(groups, QueryCount{Query: r.Query})
		}
		groups[i].Count++
	}
	return groups
}

// Top returns the group with the highest count. Ties go to the earliest group.
func Top(groups []QueryCount) (QueryCount, bool) {
	if len(groups) == 0 {
		return QueryCount{}, false
	}
	top := groups[0]
	for _, g := range groups[1:] {
		if g.Count > top.Count {
			top = g
		}
	}
	return top, true
}

// Above returns the groups whose count is strictly greater than threshold.
func Above(groups []QueryCount, threshold int64) []QueryCount {
	res := []QueryCount{}
	for _, g := range groups {
		if g.Count > threshold {
			res = append(res, g)
		}
	}
	return res
}

// GroupByDay counts dates per day bucket, ordered by day ascending.
func GroupByDay(dates []string) []DayCount {
	counts := map[string]int64{}
	for _, d := range dates {
		counts[timestamp.DayBucket(d)]++
	}
	days := make([]DayCount, 0, len(counts))
	for day, n := range counts {
		days = append(days, DayCount{Day: day, Count: n})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day < days[j].Day })
	return days
}

func inRange(date, from, to string) bool {
	return date >= from && date <= to
}
