package audit

import (
	"context"
	"sort"
	"strconv"
	"sync"
)

// Memory is an in-process Log. It is meant for tests and local runs.
type Memory struct {
	mu      sync.Mutex
	records []Record
}

// NewMemory creates an empty in-memory log holding the given records.
func NewMemory(records ...Record) *Memory {
	m := &Memory{}
	for _, r := range records {
		m.add(r)
	}
	return m
}

func (m *Memory) add(r Record) {
	if r.ID == "" {
		r.ID = strconv.Itoa(len(m.records) + 1)
	}
	m.records = append(m.records, r)
}

func (m *Memory) snapshot() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Record(nil), m.records...)
}

// Append stores r.
func (m *Memory) Append(_ context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.add(r)
	return nil
}

// Count returns the number of records in [from, to].
func (m *Memory) Count(_ context.Context, from, to string) (int64, error) {
	var n int64
	for _, r := range m.snapshot() {
		if inRange(r.Date, from, to) {
			n++
		}
	}
	return n, nil
}

// Recent returns the newest records first.
func (m *Memory) Recent(_ context.Context, limit int) ([]Record, error) {
	records := m.snapshot()
	sort.SliceStable(records, func(i, j int) bool { return records[i].Date > records[j].Date })
	if limit >= 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// All returns every record in insertion order.
func (m *Memory) All(_ context.Context) ([]Record, error) {
	return m.snapshot(), nil
}

// MostFrequent returns the most repeated query text.
func (m *Memory) MostFrequent(_ context.Context) (QueryCount, bool, error) {
	top, ok := Top(GroupByQuery(m.snapshot()))
	return top, ok, nil
}

// Frequent returns the query texts repeated more than threshold times.
func (m *Memory) Frequent(_ context.Context, threshold int64) ([]QueryCount, error) {
	return Above(GroupByQuery(m.snapshot()), threshold), nil
}

// CountByDay counts the records in [from, to] per day.
func (m *Memory) CountByDay(_ context.Context, from, to string) ([]DayCount, error) {
	var dates []string
	for _, r := range m.snapshot() {
		if inRange(r.Date, from, to) {
			dates = append(dates, r.Date)
		}
	}
	return GroupByDay(dates), nil
}
