// Package capability defines the external text capabilities the engine depends on:
// a classifier that maps text to one label of a closed set and a summarizer that
// phrases already computed facts.
package capability

import (
	"context"
	"strings"
	"time"

	"github.com/omniql-engine/queryguard/engine/errs"
	"github.com/omniql-engine/queryguard/metrics"
)

// ClassifyRequest asks for one label of Labels describing Text.
type ClassifyRequest struct {
	Instruction string
	Labels      []string
	Text        string
}

// SummarizeRequest asks for a natural language rendition of Data.
// Data is either a fact sentence (string) or a JSON-serializable value.
type SummarizeRequest struct {
	Instruction string
	Style       string
	Data        any
}

// Classifier returns the raw label chosen for a text. Callers match it with [Match].
type Classifier interface {
	Classify(ctx context.Context, req ClassifyRequest) (string, error)
}

// Summarizer phrases computed facts. It must never be the source of the facts.
type Summarizer interface {
	Summarize(ctx context.Context, req SummarizeRequest) (string, error)
}

// ClassifierFunc adapts a function to a [Classifier].
type ClassifierFunc func(ctx context.Context, req ClassifyRequest) (string, error)

// Classify calls f.
func (f ClassifierFunc) Classify(ctx context.Context, req ClassifyRequest) (string, error) {
	return f(ctx, req)
}

// SummarizerFunc adapts a function to a [Summarizer].
type SummarizerFunc func(ctx context.Context, req SummarizeRequest) (string, error)

// Summarize calls f.
func (f SummarizerFunc) Summarize(ctx context.Context, req SummarizeRequest) (string, error) {
	return f(ctx, req)
}

// Normalize trims the decoration models add around a bare label:
// quotes, backticks, asterisks and periods. The result is upper case.
func Normalize(raw string) string {
	return strings.ToUpper(strings.Trim(strings.TrimSpace(raw), " \t\r\n\"'`.*"))
}

// Match returns the label of labels equal to the normalized raw output.
func Match(raw string, labels []string) (string, bool) {
	label := Normalize(raw)
	for _, l := range labels {
		if l == label {
			return l, true
		}
	}
	return "", false
}

// Sampled wraps c so every call is recorded in the capability metrics under name.
// Errors that are not classified yet become errs.Capability.
func Sampled(name string, c Classifier) Classifier {
	return ClassifierFunc(func(ctx context.Context, req ClassifyRequest) (string, error) {
		start := time.Now()
		label, err := c.Classify(ctx, req)
		metrics.SampleCapability(name, time.Since(start), err)
		return label, errs.Wrap(errs.Capability, name, err)
	})
}

// SampledSummarizer is the [Sampled] counterpart for summarizers.
func SampledSummarizer(name string, s Summarizer) Summarizer {
	return SummarizerFunc(func(ctx context.Context, req SummarizeRequest) (string, error) {
		start := time.Now()
		text, err := s.Summarize(ctx, req)
		metrics.SampleCapability(name, time.Since(start), err)
		return text, errs.Wrap(errs.Capability, name, err)
	})
}
