package audit_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/omniql-engine/queryguard/audit"
)

var fixture = []audit.Record{
	{Query: "DROP TABLE users", Date: "2024-01-01 10:00:00", IP: "10.0.0.1"},
	{Query: "SELECT * FROM users WHERE 1 = 1", Date: "2024-01-01 23:00:00", IP: "10.0.0.2"},
	{Query: "DROP TABLE users", Date: "2024-01-02 00:00:00", IP: "10.0.0.1"},
	{Query: "SELECT * FROM users WHERE 1 = 1", Date: "2024-01-03 12:00:00", IP: "10.0.0.3"},
}

var ignoreID = cmpopts.IgnoreFields(audit.Record{}, "ID")

// testLog runs the behavior every Log backend must share.
func testLog(t *testing.T, newLog func(t *testing.T) audit.Log) {
	ctx := context.Background()

	seeded := func(t *testing.T) audit.Log {
		log := newLog(t)
		for _, r := range fixture {
			if err := log.Append(ctx, r); err != nil {
				t.Fatalf("Append: %v", err)
			}
		}
		return log
	}

	t.Run("Count", func(t *testing.T) {
		log := seeded(t)
		cases := []struct {
			from, to string
			want     int64
		}{
			{"2024-01-01 00:00:00", "2024-01-01 23:59:59", 2},
			{"2024-01-01 23:00:00", "2024-01-02 00:00:00", 2},
			{"2024-01-04 00:00:00", "2024-01-04 23:59:59", 0},
			{"2023-01-01 00:00:00", "2025-01-01 00:00:00", 4},
		}
		for _, c := range cases {
			got, err := log.Count(ctx, c.from, c.to)
			if err != nil {
				t.Fatalf("Count: %v", err)
			}
			if got != c.want {
				t.Errorf("Count(%q, %q) = %d; want %d", c.from, c.to, got, c.want)
			}
		}
	})

	t.Run("Recent", func(t *testing.T) {
		got, err := seeded(t).Recent(ctx, 2)
		if err != nil {
			t.Fatalf("Recent: %v", err)
		}
		want := []audit.Record{fixture[3], fixture[2]}
		if diff := cmp.Diff(want, got, ignoreID); diff != "" {
			t.Fatalf("Recent mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("All", func(t *testing.T) {
		got, err := seeded(t).All(ctx)
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		if diff := cmp.Diff(fixture, got, ignoreID); diff != "" {
			t.Fatalf("All mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("MostFrequent", func(t *testing.T) {
		log := seeded(t)
		if err := log.Append(ctx, audit.Record{Query: "SELECT * FROM users WHERE 1 = 1", Date: "2024-01-04 00:00:00"}); err != nil {
			t.Fatalf("Append: %v", err)
		}
		got, ok, err := log.MostFrequent(ctx)
		if err != nil || !ok {
			t.Fatalf("MostFrequent: %v, %v", ok, err)
		}
		want := audit.QueryCount{Query: "SELECT * FROM users WHERE 1 = 1", Count: 3}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("MostFrequent mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("MostFrequentTie", func(t *testing.T) {
		got, ok, err := seeded(t).MostFrequent(ctx)
		if err != nil || !ok {
			t.Fatalf("MostFrequent: %v, %v", ok, err)
		}
		want := audit.QueryCount{Query: "DROP TABLE users", Count: 2}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("MostFrequent mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("MostFrequentEmpty", func(t *testing.T) {
		_, ok, err := newLog(t).MostFrequent(ctx)
		if err != nil {
			t.Fatalf("MostFrequent: %v", err)
		}
		if ok {
			t.Fatal("MostFrequent on an empty log reported a result")
		}
	})

	t.Run("Frequent", func(t *testing.T) {
		log := seeded(t)
		got, err := log.Frequent(ctx, 1)
		if err != nil {
			t.Fatalf("Frequent: %v", err)
		}
		want := []audit.QueryCount{
			{Query: "DROP TABLE users", Count: 2},
			{Query: "SELECT * FROM users WHERE 1 = 1", Count: 2},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("Frequent(1) mismatch (-want +got):\n%s", diff)
		}

		got, err = log.Frequent(ctx, 2)
		if err != nil {
			t.Fatalf("Frequent: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("Frequent(2) = %v; want none", got)
		}
	})

	t.Run("CountByDay", func(t *testing.T) {
		got, err := seeded(t).CountByDay(ctx, "2024-01-01 00:00:00", "2024-01-02 23:59:59")
		if err != nil {
			t.Fatalf("CountByDay: %v", err)
		}
		want := []audit.DayCount{{Day: "2024-01-01", Count: 2}, {Day: "2024-01-02", Count: 1}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("CountByDay mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestMemory(t *testing.T) {
	testLog(t, func(*testing.T) audit.Log { return audit.NewMemory() })
}

func TestMemoryAssignsIDs(t *testing.T) {
	log := audit.NewMemory(fixture[:2]...)
	records, err := log.All(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if records[0].ID == "" || records[0].ID == records[1].ID {
		t.Fatalf("got ids %q and %q; want distinct non-empty ids", records[0].ID, records[1].ID)
	}
}
