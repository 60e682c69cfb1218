// Package analytics answers free-text questions about blocked statements.
//
// A question is classified into an [Action], the action computes its figures from
// the audit log, and only then is a summarizer asked to phrase those figures.
// The summarizer never produces a number on its own.
package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/inflection"

	"github.com/omniql-engine/queryguard/audit"
	"github.com/omniql-engine/queryguard/capability"
	"github.com/omniql-engine/queryguard/engine/errs"
	"github.com/omniql-engine/queryguard/engine/timestamp"
	"github.com/omniql-engine/queryguard/logging"
	"github.com/omniql-engine/queryguard/mapping"
	"github.com/omniql-engine/queryguard/metrics"
)

// Fixed figures of the actions.
const (
	RecentLimit      = 100
	AnomalyThreshold = 10
	TrendDays        = 7
)

// Fixed responses that need no summarizer.
const (
	NoAttacksMessage = "No attacks logged yet."
	ClarifyMessage   = "I'm not sure how to process your request. Could you clarify your question?"
)

// Instruction is the classification instruction sent with every question.
const Instruction = "Analyze the following user query and determine the action required."

// Answer is the response to one question.
type Answer struct {
	Action   Action `json:"action"`
	Response string `json:"response"`
}

// WeekComparison is the figure of ComparisonStats.
type WeekComparison struct {
	Current int64 `json:"current"`
	Last    int64 `json:"last"`
}

// Facts is what an action computed: either a fixed response or a request for the summarizer.
type Facts struct {
	Fixed   string
	Request capability.SummarizeRequest
}

// Router is the analytics action router.
type Router struct {
	classifier capability.Classifier
	summarizer capability.Summarizer
	log        audit.Log
	now        func() time.Time
	weekStart  time.Weekday
}

// Option configures a Router.
type Option func(*Router)

// WithClock sets the clock the time windows are computed from.
func WithClock(now func() time.Time) Option {
	return func(r *Router) {
		r.now = now
	}
}

// WithWeekStart sets the first day of the week used by ComparisonStats. Default is Monday.
func WithWeekStart(day time.Weekday) Option {
	return func(r *Router) {
		r.weekStart = day
	}
}

// New creates a router.
func New(classifier capability.Classifier, summarizer capability.Summarizer, log audit.Log, opts ...Option) *Router {
	r := &Router{
		classifier: classifier,
		summarizer: summarizer,
		log:        log,
		now:        time.Now,
		weekStart:  time.Monday,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Answer classifies question, computes the figures of its action and phrases them.
func (r *Router) Answer(ctx context.Context, question string) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, errs.New(errs.Validation, "analytics", "", "prompt is required")
	}
	log := logging.FromCtx(ctx)

	raw, err := r.classifier.Classify(ctx, capability.ClassifyRequest{
		Instruction: Instruction,
		Labels:      mapping.ActionLabels,
		Text:        question,
	})
	if err != nil {
		log.Error("classifying question", "error", err)
		return nil, errs.Wrap(errs.Capability, "classify", err)
	}
	action := ParseAction(raw)
	metrics.SampleAction(action.String())
	log.Info("question classified", "action", action.String())

	facts, err := r.Compute(ctx, action)
	if err != nil {
		log.Error("computing analytics", "action", action.String(), "error", err)
		return nil, err
	}
	if facts.Fixed != "" {
		return &Answer{Action: action, Response: facts.Fixed}, nil
	}

	text, err := r.summarizer.Summarize(ctx, facts.Request)
	if err != nil {
		log.Error("summarizing analytics", "action", action.String(), "error", err)
		return nil, errs.Wrap(errs.Capability, "summarize", err)
	}
	return &Answer{Action: action, Response: text}, nil
}

// Compute runs the aggregation of action over the audit log.
func (r *Router) Compute(ctx context.Context, action Action) (Facts, error) {
	now := r.now()

	switch action {
	case CountAttacks:
		n, err := r.log.Count(ctx, timestamp.Format(timestamp.StartOfDay(now)), timestamp.Format(timestamp.EndOfDay(now)))
		if err != nil {
			return Facts{}, errs.Wrap(errs.Store, "analytics.countAttacks", err)
		}
		return summarize("generate a conversational reply",
			"The response should be natural and conversational.",
			fmt.Sprintf("Today, we detected %s.", countOf(n, "malicious action"))), nil

	case FetchLogs:
		records, err := r.log.Recent(ctx, RecentLimit)
		if err != nil {
			return Facts{}, errs.Wrap(errs.Store, "analytics.fetchLogs", err)
		}
		return summarize("generate a summary of recent logs",
			"The response should provide insights in a natural and conversational tone.",
			records), nil

	case MostFrequentAttack:
		top, ok, err := r.log.MostFrequent(ctx)
		if err != nil {
			return Facts{}, errs.Wrap(errs.Store, "analytics.mostFrequentAttack", err)
		}
		if !ok {
			return Facts{Fixed: NoAttacksMessage}, nil
		}
		return summarize("generate a conversational response",
			"The response should be insightful and natural.",
			fmt.Sprintf("The most common attack is '%s', which occurred %s.", top.Query, countOf(top.Count, "time"))), nil

	case AttackTrends:
		from := timestamp.StartOfDay(now).AddDate(0, 0, -TrendDays)
		days, err := r.log.CountByDay(ctx, timestamp.Format(from), timestamp.Format(timestamp.EndOfDay(now)))
		if err != nil {
			return Facts{}, errs.Wrap(errs.Store, "analytics.attackTrends", err)
		}
		return summarize(fmt.Sprintf("generate a conversational response about attack trends over the past %d days", TrendDays),
			"The response should highlight trends and key insights.",
			days), nil

	case ComparisonStats:
		weeks, err := r.compareWeeks(ctx, now)
		if err != nil {
			return Facts{}, errs.Wrap(errs.Store, "analytics.comparisonStats", err)
		}
		return summarize("generate a comparative response",
			"The response should highlight the difference in attack patterns between the two weeks.",
			weeks), nil

	case AnomalyDetection:
		anomalies, err := r.log.Frequent(ctx, AnomalyThreshold)
		if err != nil {
			return Facts{}, errs.Wrap(errs.Store, "analytics.anomalyDetection", err)
		}
		return summarize("generate a response for anomalies detected",
			fmt.Sprintf("The response should explain the anomalies clearly. A query is anomalous when it was blocked more than %d times.", AnomalyThreshold),
			anomalies), nil

	case Unknown:
		return Facts{Fixed: ClarifyMessage}, nil

	default:
		return Facts{}, fmt.Errorf("unhandled action %v", action)
	}
}

// compareWeeks counts this week up to now against the whole previous week.
func (r *Router) compareWeeks(ctx context.Context, now time.Time) (WeekComparison, error) {
	thisWeek := timestamp.StartOfWeek(now, r.weekStart)
	lastWeek := thisWeek.AddDate(0, 0, -7)
	lastWeekEnd := timestamp.EndOfDay(thisWeek.AddDate(0, 0, -1))

	current, err := r.log.Count(ctx, timestamp.Format(thisWeek), timestamp.Format(now))
	if err != nil {
		return WeekComparison{}, err
	}
	last, err := r.log.Count(ctx, timestamp.Format(lastWeek), timestamp.Format(lastWeekEnd))
	if err != nil {
		return WeekComparison{}, err
	}
	return WeekComparison{Current: current, Last: last}, nil
}

func summarize(instruction, style string, data any) Facts {
	return Facts{Request: capability.SummarizeRequest{Instruction: instruction, Style: style, Data: data}}
}

// countOf renders "1 time", "3 times", "0 malicious actions".
func countOf(n int64, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %s", n, inflection.Plural(noun))
}
