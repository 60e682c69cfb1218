// Package audit stores the statements the safety gate refused.
//
// Records are append-only. Their Date is a timestamp.Layout string, so every range
// query below compares dates as plain strings.
package audit

import (
	"context"
)

// Collection is the name of the collection (or key prefix) holding the records.
const Collection = "maliciousactions"

// Record is one blocked statement.
type Record struct {
	ID    string `json:"_id,omitempty"`
	Query string `json:"query"`
	Date  string `json:"date"`
	IP    string `json:"ip"`
}

// QueryCount is the number of records sharing the same query text.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// DayCount is the number of records of one day bucket (YYYY-MM-DD).
type DayCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// Log is the audit log. Date bounds are inclusive on both ends.
type Log interface {
	// Append stores r. It never modifies existing records.
	Append(ctx context.Context, r Record) error
	// Count returns the number of records with from <= Date <= to.
	Count(ctx context.Context, from, to string) (int64, error)
	// Recent returns at most limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)
	// All returns every record.
	All(ctx context.Context) ([]Record, error)
	// MostFrequent returns the query text with the most records.
	// ok is false when the log is empty.
	MostFrequent(ctx context.Context) (top QueryCount, ok bool, err error)
	// Frequent returns the query texts with strictly more than threshold records.
	Frequent(ctx context.Context, threshold int64) ([]QueryCount, error)
	// CountByDay counts the records with from <= Date <= to per day bucket,
	// ordered by day ascending.
	CountByDay(ctx context.Context, from, to string) ([]DayCount, error)
}
