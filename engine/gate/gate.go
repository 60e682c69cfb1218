// Package gate decides, statement by statement, whether a query may run.
//
// Every statement is classified once. A malicious statement is recorded in the
// audit log and refused without ever being parsed; a safe one is translated and
// executed. A classifier failure is an error, never a verdict.
package gate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/omniql-engine/queryguard/audit"
	"github.com/omniql-engine/queryguard/capability"
	"github.com/omniql-engine/queryguard/engine/errs"
	"github.com/omniql-engine/queryguard/engine/models"
	"github.com/omniql-engine/queryguard/engine/parser"
	"github.com/omniql-engine/queryguard/engine/timestamp"
	"github.com/omniql-engine/queryguard/engine/translator"
	"github.com/omniql-engine/queryguard/logging"
	"github.com/omniql-engine/queryguard/mapping"
	"github.com/omniql-engine/queryguard/metrics"
)

// Result messages.
const (
	ExecutedMessage = "The query is safe to execute."
	BlockedMessage  = "The query is malicious and has been blocked."
)

// Instruction is the classification instruction sent with every statement.
const Instruction = "Analyze the following query and determine if it is malicious or safe for execution."

// Verdict is the classification of one statement.
type Verdict int

// All verdicts.
const (
	Safe Verdict = iota
	Malicious
)

// String returns the classifier label of v.
func (v Verdict) String() string {
	switch v {
	case Safe:
		return mapping.VerdictSafe
	case Malicious:
		return mapping.VerdictMalicious
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// MarshalText encodes v as its label.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// ParseVerdict maps raw classifier output to a Verdict.
func ParseVerdict(raw string) (Verdict, bool) {
	label, ok := capability.Match(raw, mapping.VerdictLabels)
	if !ok {
		return 0, false
	}
	if label == mapping.VerdictMalicious {
		return Malicious, true
	}
	return Safe, true
}

// Status is the outcome of a processed statement.
type Status string

// All statuses.
const (
	StatusExecuted Status = "executed"
	StatusBlocked  Status = "blocked"
)

// Executor runs translated operations against the document store.
type Executor interface {
	Execute(ctx context.Context, op models.Operation) (any, error)
}

// Request is one statement to process.
type Request struct {
	Query string
	IP    string
}

// Result is the response of a processed statement.
type Result struct {
	Status      Status  `json:"-"`
	Message     string  `json:"result"`
	Query       string  `json:"query"`
	Verdict     Verdict `json:"analysis"`
	QueryResult any     `json:"queryResult,omitempty"`
	Timestamp   string  `json:"timestamp"`
	IP          string  `json:"ip"`
}

// Gate is the safety gate.
type Gate struct {
	classifier capability.Classifier
	log        audit.Log
	exec       Executor
	now        func() time.Time
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock sets the clock used for result and audit timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		g.now = now
	}
}

// New creates a gate.
func New(classifier capability.Classifier, log audit.Log, exec Executor, opts ...Option) *Gate {
	g := &Gate{
		classifier: classifier,
		log:        log,
		exec:       exec,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Process classifies req.Query and then either blocks it or executes it.
func (g *Gate) Process(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, errs.New(errs.Validation, "gate", "", "query is required")
	}
	log := logging.FromCtx(ctx)

	verdict, err := g.classify(ctx, req.Query)
	if err != nil {
		log.Error("classifying query", "error", err)
		return nil, err
	}
	metrics.SampleVerdict(verdict.String())
	log.Info("query classified", "verdict", verdict.String())

	res := &Result{
		Query:     req.Query,
		Verdict:   verdict,
		Timestamp: timestamp.Format(g.now()),
		IP:        req.IP,
	}

	switch verdict {
	case Malicious:
		record := audit.Record{Query: req.Query, Date: res.Timestamp, IP: req.IP}
		if err := g.log.Append(ctx, record); err != nil {
			log.Error("recording blocked query", "error", err)
			return nil, errs.Wrap(errs.Store, "audit.append", err)
		}
		res.Status = StatusBlocked
		res.Message = BlockedMessage
		return res, nil

	case Safe:
		out, err := g.execute(ctx, req.Query)
		if err != nil {
			log.Warn("executing safe query", "error", err)
			return nil, err
		}
		res.Status = StatusExecuted
		res.Message = ExecutedMessage
		res.QueryResult = out
		return res, nil

	default:
		return nil, fmt.Errorf("unhandled verdict %v", verdict)
	}
}

func (g *Gate) classify(ctx context.Context, query string) (Verdict, error) {
	raw, err := g.classifier.Classify(ctx, capability.ClassifyRequest{
		Instruction: Instruction,
		Labels:      mapping.VerdictLabels,
		Text:        query,
	})
	if err != nil {
		return 0, errs.Wrap(errs.Capability, "classify", err)
	}
	verdict, ok := ParseVerdict(raw)
	if !ok {
		return 0, errs.New(errs.Capability, "classify", "",
			"classifier answered %q; want one of %s", raw, strings.Join(mapping.VerdictLabels, ", "))
	}
	return verdict, nil
}

func (g *Gate) execute(ctx context.Context, query string) (any, error) {
	stmt, err := parser.Parse(query)
	if err != nil {
		return nil, err
	}
	op, err := translator.Translate(stmt)
	if err != nil {
		return nil, err
	}
	logging.FromCtx(ctx).Debug("translated query",
		"kind", op.Kind().String(), "collection", op.CollectionName())

	out, err := g.exec.Execute(ctx, op)
	metrics.SampleOperation(op.Kind().String(), err)
	if err != nil {
		return nil, errs.Wrap(errs.Store, "execute", err)
	}
	return out, nil
}
