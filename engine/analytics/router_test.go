package analytics_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/omniql-engine/queryguard/audit"
	"github.com/omniql-engine/queryguard/capability"
	"github.com/omniql-engine/queryguard/engine/analytics"
	"github.com/omniql-engine/queryguard/engine/errs"
)

// Wednesday. The week started on Monday 2024-01-08.
var wednesday = time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)

func clockAt(t time.Time) analytics.Option {
	return analytics.WithClock(func() time.Time { return t })
}

func classifyAs(label string) capability.Classifier {
	return capability.ClassifierFunc(func(context.Context, capability.ClassifyRequest) (string, error) {
		return label, nil
	})
}

// recorder is a summarizer that keeps every request it receives.
type recorder struct {
	requests []capability.SummarizeRequest
}

func (r *recorder) Summarize(_ context.Context, req capability.SummarizeRequest) (string, error) {
	r.requests = append(r.requests, req)
	return "phrased", nil
}

func noSummarizer(t *testing.T) capability.Summarizer {
	return capability.SummarizerFunc(func(context.Context, capability.SummarizeRequest) (string, error) {
		t.Fatal("summarizer must not be called")
		return "", nil
	})
}

func records(query string, dates ...string) []audit.Record {
	var res []audit.Record
	for _, d := range dates {
		res = append(res, audit.Record{Query: query, Date: d, IP: "10.0.0.1"})
	}
	return res
}

func repeat(query string, n int) []audit.Record {
	var res []audit.Record
	for i := 0; i < n; i++ {
		res = append(res, audit.Record{Query: query, Date: "2024-01-05 10:00:00"})
	}
	return res
}

func TestCountAttacks(t *testing.T) {
	log := audit.NewMemory(records("DROP TABLE users",
		"2024-01-09 23:59:59",
		"2024-01-10 00:00:00",
		"2024-01-10 12:00:00",
		"2024-01-10 23:59:59",
		"2024-01-11 00:00:00")...)
	sum := &recorder{}
	r := analytics.New(classifyAs("COUNT_ATTACKS"), sum, log, clockAt(wednesday))

	got, err := r.Answer(context.Background(), "How many attacks today?")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if diff := cmp.Diff(&analytics.Answer{Action: analytics.CountAttacks, Response: "phrased"}, got); diff != "" {
		t.Fatalf("answer mismatch (-want +got):\n%s", diff)
	}
	if len(sum.requests) != 1 {
		t.Fatalf("got %d summarizer calls; want 1", len(sum.requests))
	}
	if want := "Today, we detected 3 malicious actions."; sum.requests[0].Data != want {
		t.Fatalf("got data %q; want %q", sum.requests[0].Data, want)
	}
}

func TestCountAttacksSingular(t *testing.T) {
	log := audit.NewMemory(records("DROP TABLE users", "2024-01-10 12:00:00")...)
	r := analytics.New(classifyAs("COUNT_ATTACKS"), nil, log, clockAt(wednesday))

	facts, err := r.Compute(context.Background(), analytics.CountAttacks)
	if err != nil {
		t.Fatal(err)
	}
	if want := "Today, we detected 1 malicious action."; facts.Request.Data != want {
		t.Fatalf("got data %q; want %q", facts.Request.Data, want)
	}
}

func TestFetchLogs(t *testing.T) {
	var seed []audit.Record
	for i := 0; i < analytics.RecentLimit+5; i++ {
		seed = append(seed, audit.Record{
			Query: "DROP TABLE users",
			Date:  time.Date(2024, 1, 1, 0, 0, i, 0, time.UTC).Format("2006-01-02 15:04:05"),
		})
	}
	r := analytics.New(nil, nil, audit.NewMemory(seed...), clockAt(wednesday))

	facts, err := r.Compute(context.Background(), analytics.FetchLogs)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := facts.Request.Data.([]audit.Record)
	if !ok {
		t.Fatalf("got data %T; want []audit.Record", facts.Request.Data)
	}
	if len(got) != analytics.RecentLimit {
		t.Fatalf("got %d records; want %d", len(got), analytics.RecentLimit)
	}
	if got[0].Date != "2024-01-01 00:01:44" {
		t.Fatalf("got newest %q; want 2024-01-01 00:01:44", got[0].Date)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Date < got[i].Date {
			t.Fatalf("records are not newest first at %d: %q < %q", i, got[i-1].Date, got[i].Date)
		}
	}
}

func TestMostFrequentAttack(t *testing.T) {
	seed := append(records("DROP TABLE users", "2024-01-01 10:00:00"),
		records("SELECT * FROM users WHERE 1 = 1", "2024-01-02 10:00:00", "2024-01-03 10:00:00")...)
	sum := &recorder{}
	r := analytics.New(classifyAs("MOST_FREQUENT_ATTACK"), sum, audit.NewMemory(seed...), clockAt(wednesday))

	if _, err := r.Answer(context.Background(), "What is the most common attack?"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	want := "The most common attack is 'SELECT * FROM users WHERE 1 = 1', which occurred 2 times."
	if sum.requests[0].Data != want {
		t.Fatalf("got data %q; want %q", sum.requests[0].Data, want)
	}
}

func TestMostFrequentAttackEmptyLog(t *testing.T) {
	r := analytics.New(classifyAs("MOST_FREQUENT_ATTACK"), noSummarizer(t), audit.NewMemory(), clockAt(wednesday))

	got, err := r.Answer(context.Background(), "What is the most common attack?")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	want := &analytics.Answer{Action: analytics.MostFrequentAttack, Response: analytics.NoAttacksMessage}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("answer mismatch (-want +got):\n%s", diff)
	}
}

func TestAttackTrends(t *testing.T) {
	jan2 := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	log := audit.NewMemory(records("DROP TABLE users",
		"2023-12-25 23:59:59", // before the window
		"2023-12-26 00:00:00",
		"2024-01-01 10:00:00",
		"2024-01-01 23:00:00",
		"2024-01-02 20:00:00",
		"2024-01-03 00:00:00", // after the window
	)...)
	r := analytics.New(nil, nil, log, clockAt(jan2))

	facts, err := r.Compute(context.Background(), analytics.AttackTrends)
	if err != nil {
		t.Fatal(err)
	}
	want := []audit.DayCount{
		{Day: "2023-12-26", Count: 1},
		{Day: "2024-01-01", Count: 2},
		{Day: "2024-01-02", Count: 1},
	}
	if diff := cmp.Diff(want, facts.Request.Data); diff != "" {
		t.Fatalf("trend mismatch (-want +got):\n%s", diff)
	}
}

func TestComparisonStats(t *testing.T) {
	log := audit.NewMemory(records("DROP TABLE users",
		"2023-12-31 23:59:59", // two weeks ago
		"2024-01-01 00:00:00",
		"2024-01-02 08:00:00",
		"2024-01-04 08:00:00",
		"2024-01-06 08:00:00",
		"2024-01-07 23:59:59",
		"2024-01-08 00:00:00",
		"2024-01-09 08:00:00",
		"2024-01-10 14:59:59",
		"2024-01-10 15:00:01", // after now
	)...)
	sum := &recorder{}
	r := analytics.New(classifyAs("COMPARISON_STATS"), sum, log, clockAt(wednesday))

	if _, err := r.Answer(context.Background(), "How does this week compare to last week?"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if diff := cmp.Diff(analytics.WeekComparison{Current: 3, Last: 5}, sum.requests[0].Data); diff != "" {
		t.Fatalf("comparison mismatch (-want +got):\n%s", diff)
	}
	raw, err := json.Marshal(sum.requests[0].Data)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{"current":3,"last":5}` {
		t.Fatalf("got %s", raw)
	}
}

func TestComparisonStatsWeekStart(t *testing.T) {
	// With Sunday weeks, this week starts on 2024-01-07.
	log := audit.NewMemory(records("DROP TABLE users", "2024-01-07 10:00:00", "2024-01-06 10:00:00")...)
	r := analytics.New(nil, nil, log, clockAt(wednesday), analytics.WithWeekStart(time.Sunday))

	facts, err := r.Compute(context.Background(), analytics.ComparisonStats)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(analytics.WeekComparison{Current: 1, Last: 1}, facts.Request.Data); diff != "" {
		t.Fatalf("comparison mismatch (-want +got):\n%s", diff)
	}
}

func TestAnomalyDetection(t *testing.T) {
	seed := append(repeat("DROP TABLE users", analytics.AnomalyThreshold+1), repeat("SELECT 1", analytics.AnomalyThreshold)...)
	r := analytics.New(nil, nil, audit.NewMemory(seed...), clockAt(wednesday))

	facts, err := r.Compute(context.Background(), analytics.AnomalyDetection)
	if err != nil {
		t.Fatal(err)
	}
	want := []audit.QueryCount{{Query: "DROP TABLE users", Count: analytics.AnomalyThreshold + 1}}
	if diff := cmp.Diff(want, facts.Request.Data); diff != "" {
		t.Fatalf("anomaly mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknown(t *testing.T) {
	for _, label := range []string{"UNKNOWN", "I think you want the logs", ""} {
		r := analytics.New(classifyAs(label), noSummarizer(t), audit.NewMemory(), clockAt(wednesday))

		got, err := r.Answer(context.Background(), "What's the weather like?")
		if err != nil {
			t.Fatalf("Answer: %v", err)
		}
		want := &analytics.Answer{Action: analytics.Unknown, Response: analytics.ClarifyMessage}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("label %q: answer mismatch (-want +got):\n%s", label, diff)
		}
	}
}

func TestAnswerErrors(t *testing.T) {
	down := errors.New("unavailable")
	failingClassifier := capability.ClassifierFunc(func(context.Context, capability.ClassifyRequest) (string, error) {
		return "", down
	})
	failingSummarizer := capability.SummarizerFunc(func(context.Context, capability.SummarizeRequest) (string, error) {
		return "", down
	})

	cases := []struct {
		name     string
		router   *analytics.Router
		question string
		kind     errs.Kind
	}{
		{"empty question", analytics.New(classifyAs("FETCH_LOGS"), &recorder{}, audit.NewMemory()), " ", errs.Validation},
		{"classifier failure", analytics.New(failingClassifier, &recorder{}, audit.NewMemory()), "logs?", errs.Capability},
		{"summarizer failure", analytics.New(classifyAs("FETCH_LOGS"), failingSummarizer, audit.NewMemory()), "logs?", errs.Capability},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := c.router.Answer(context.Background(), c.question)
			if !errors.Is(err, c.kind) {
				t.Fatalf("got %v; want a %s error", err, c.kind)
			}
		})
	}
}

func TestFactsComputedBeforeSummary(t *testing.T) {
	log := audit.NewMemory(records("DROP TABLE users", "2024-01-10 10:00:00")...)
	var seen []capability.SummarizeRequest
	sum := capability.SummarizerFunc(func(_ context.Context, req capability.SummarizeRequest) (string, error) {
		seen = append(seen, req)
		// Anything appended now must not change the facts already handed over.
		_ = log.Append(context.Background(), audit.Record{Query: "late", Date: "2024-01-10 10:00:01"})
		return "ok", nil
	})
	r := analytics.New(classifyAs("ANOMALY_DETECTION"), sum, log, clockAt(wednesday))

	if _, err := r.Answer(context.Background(), "anything odd?"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]audit.QueryCount{}, seen[0].Data, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("summarizer data mismatch (-want +got):\n%s", diff)
	}
}

func TestParseAction(t *testing.T) {
	cases := map[string]analytics.Action{
		"COUNT_ATTACKS":          analytics.CountAttacks,
		" fetch_logs\n":          analytics.FetchLogs,
		`"MOST_FREQUENT_ATTACK"`: analytics.MostFrequentAttack,
		"ATTACK_TRENDS.":         analytics.AttackTrends,
		"COMPARISON_STATS":       analytics.ComparisonStats,
		"ANOMALY_DETECTION":      analytics.AnomalyDetection,
		"UNKNOWN":                analytics.Unknown,
		"DELETE_LOGS":            analytics.Unknown,
	}
	for raw, want := range cases {
		if got := analytics.ParseAction(raw); got != want {
			t.Errorf("ParseAction(%q) = %v; want %v", raw, got, want)
		}
	}
}

func TestAnswerJSON(t *testing.T) {
	raw, err := json.Marshal(analytics.Answer{Action: analytics.AttackTrends, Response: "up"})
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{"action":"ATTACK_TRENDS","response":"up"}` {
		t.Fatalf("got %s", raw)
	}
}
