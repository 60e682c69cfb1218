// Package errs defines the failure taxonomy shared by the query pipeline and the analytics router.
//
// Every error that leaves the engine is an [*Error] tagged with one [Kind]. Callers
// distinguish the kinds with errors.Is:
//
//	if errors.Is(err, errs.Parse) { ... }
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure. A Kind is itself an error so it can be used as an errors.Is target.
type Kind string

// All failure kinds.
const (
	// Validation means required input text was missing. No downstream call was made.
	Validation Kind = "validation"
	// Capability means the classifier or summarizer failed or answered outside its label set.
	Capability Kind = "capability"
	// Parse means the statement did not match the accepted subset.
	Parse Kind = "parse"
	// Translation means a parsed statement could not be mapped to a store operation.
	Translation Kind = "translation"
	// Store means the document store failed while executing.
	Store Kind = "store"
)

func (k Kind) Error() string {
	return string(k)
}

// Reason refines a Parse or Translation failure.
type Reason string

// Parse reasons.
const (
	UnsupportedStatement Reason = "UnsupportedStatement"
	MalformedInsert      Reason = "MalformedInsert"
	MalformedUpdate      Reason = "MalformedUpdate"
	MalformedDelete      Reason = "MalformedDelete"
	MalformedPredicate   Reason = "MalformedPredicate"
)

// Translation reasons.
const (
	MissingCollection   Reason = "MissingCollection"
	EmptyPredicate      Reason = "EmptyPredicate"
	EmptyValueList      Reason = "EmptyValueList"
	EmptyAssignments    Reason = "EmptyAssignments"
	UnsupportedOperator Reason = "UnsupportedOperator"
	InvalidName         Reason = "InvalidName"
)

// Error is a classified failure.
type Error struct {
	Kind   Kind
	Reason Reason // optional
	Op     string // operation that failed, e.g. "parse" or "audit.append"
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Reason != "" {
		b.WriteString(string(e.Reason))
		b.WriteString(": ")
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString(string(e.Kind) + " error")
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the Kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// New creates an error of the given kind and reason with a formatted message.
func New(kind Kind, op string, reason Reason, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Reason: reason, Err: fmt.Errorf(format, args...)}
}

// Wrap tags err with kind. A nil err returns nil.
// An err that is already classified keeps its original kind.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of err, if it was classified.
func KindOf(err error) (Kind, bool) {
	var classified *Error
	if !errors.As(err, &classified) {
		return "", false
	}
	return classified.Kind, true
}

// ReasonOf returns the reason attached to err, or the empty Reason.
func ReasonOf(err error) Reason {
	var classified *Error
	if !errors.As(err, &classified) {
		return ""
	}
	return classified.Reason
}
