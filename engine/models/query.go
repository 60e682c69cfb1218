package models

import (
	"fmt"

	"github.com/omniql-engine/queryguard/mapping"
)

// ============================================================================
// STATEMENT - parsed form of one SQL-subset input
// ============================================================================

// Kind is the statement kind, decided by the leading keyword.
type Kind int

const (
	Select Kind = iota
	Insert
	Update
	Delete
)

// String returns the statement keyword for k.
func (k Kind) String() string {
	switch k {
	case Select:
		return "SELECT"
	case Insert:
		return "INSERT"
	case Update:
		return "UPDATE"
	case Delete:
		return "DELETE"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps a statement keyword (upper case) to its Kind.
func ParseKind(keyword string) (Kind, bool) {
	switch keyword {
	case "SELECT":
		return Select, true
	case "INSERT":
		return Insert, true
	case "UPDATE":
		return Update, true
	case "DELETE":
		return Delete, true
	}
	return 0, false
}

// Statement is the keyword-anchored extraction of one statement.
// Empty text fields mean the clause was absent.
type Statement struct {
	Kind       Kind
	Collection string // FROM / INTO / UPDATE target
	Predicate  string // text after WHERE
	Set        string // text between SET and WHERE (UPDATE)
	Values     string // text inside VALUES ( ... ) (INSERT)
}

// ============================================================================
// PREDICATE - ANDed comparisons
// ============================================================================

// Operator is one of the six comparison operators, spelled as in SQL.
type Operator string

const (
	Eq Operator = "="
	Ne Operator = "!="
	Gt Operator = ">"
	Lt Operator = "<"
	Ge Operator = ">="
	Le Operator = "<="
)

// ParseOperator validates a comparison operator against the operator mapping.
func ParseOperator(s string) (Operator, error) {
	if !mapping.IsComparisonOperator(s) {
		return "", fmt.Errorf("unsupported comparison operator %q", s)
	}
	return Operator(s), nil
}

// Comparison is a single `field OP value`.
// Value is a string, an int64 or a float64.
type Comparison struct {
	Field    string
	Operator Operator
	Value    any
}

// Predicate is an ordered list of comparisons, all of which must hold.
// An empty Predicate matches every document.
type Predicate []Comparison

// EqualityOnly reports whether every comparison of p is an equality.
func (p Predicate) EqualityOnly() bool {
	for _, c := range p {
		if c.Operator != Eq {
			return false
		}
	}
	return true
}

// Field is a named value. Documents and SET assignments keep their source order.
type Field struct {
	Name  string
	Value any
}
