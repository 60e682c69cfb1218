package parser

import (
	"regexp"
	"strings"

	"github.com/omniql-engine/queryguard/engine/errs"
	"github.com/omniql-engine/queryguard/engine/lexer"
	"github.com/omniql-engine/queryguard/engine/models"
)

// =============================================================================
// SELECT: rich comparisons
// =============================================================================

// ParsePredicate translates a SELECT WHERE clause into ANDed comparisons.
//
// Every `field OP value` run is extracted, OP being one of = != > < >= <=; the
// words joining them are not interpreted. A field is a name or a dotted path
// (address.city); store naming rules are left to the validator. A value is a
// single token, so `name = John Smith` compares against "John".
// When the clause holds no operator at all it falls back to "key = value"
// segments separated by the word "and". Operators that never form a comparison
// are a MalformedPredicate. An empty clause gives an empty predicate, which
// matches every document.
func ParsePredicate(text string) (models.Predicate, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	tokens, err := lexer.Tokenize(text)
	if err != nil {
		return nil, &errs.Error{Kind: errs.Parse, Op: "parse where", Reason: errs.MalformedPredicate, Err: err}
	}

	pred, err := scanComparisons(tokens)
	if err != nil {
		return nil, err
	}
	if len(pred) > 0 {
		return pred, nil
	}
	if hasOperator(tokens) {
		return nil, errs.New(errs.Parse, "parse where", errs.MalformedPredicate,
			"no comparison of the form field OP value in %q", strings.TrimSpace(text))
	}
	return equalityFallback(text), nil
}

var fieldPattern = regexp.MustCompile(`^[\w$]+(\.[\w$]+)*$`)

func isFieldToken(tok lexer.Token) bool {
	switch tok.Type {
	case lexer.TOKEN_IDENTIFIER:
		return true
	case lexer.TOKEN_WORD:
		return fieldPattern.MatchString(tok.Value)
	}
	return false
}

func hasOperator(tokens []lexer.Token) bool {
	for _, tok := range tokens {
		if tok.Type == lexer.TOKEN_OPERATOR {
			return true
		}
	}
	return false
}

func scanComparisons(tokens []lexer.Token) (models.Predicate, error) {
	var pred models.Predicate
	for i := 0; i+2 < len(tokens); {
		field, op, value := tokens[i], tokens[i+1], tokens[i+2]
		if !isFieldToken(field) || op.Type != lexer.TOKEN_OPERATOR || !isValueToken(value) {
			i++
			continue
		}

		operator, err := models.ParseOperator(op.Value)
		if err != nil {
			return nil, &errs.Error{Kind: errs.Parse, Op: "parse where", Reason: errs.MalformedPredicate, Err: err}
		}
		pred = append(pred, models.Comparison{
			Field:    field.Value,
			Operator: operator,
			Value:    tokenValue(value),
		})
		i += 3
	}
	return pred, nil
}

func isValueToken(tok lexer.Token) bool {
	switch tok.Type {
	case lexer.TOKEN_STRING, lexer.TOKEN_NUMBER, lexer.TOKEN_IDENTIFIER, lexer.TOKEN_WORD:
		return true
	}
	return false
}

func tokenValue(tok lexer.Token) any {
	if tok.Type == lexer.TOKEN_STRING {
		return tok.Value
	}
	return Coerce(tok.Value)
}

// equalityFallback reads "key = value and key = value"; incomplete segments are skipped.
func equalityFallback(text string) models.Predicate {
	var pred models.Predicate
	for _, segment := range splitSegments(text, true) {
		key, value, ok := cutEquality(segment)
		if !ok || key == "" || value == "" {
			continue
		}
		pred = append(pred, models.Comparison{Field: key, Operator: models.Eq, Value: Coerce(value)})
	}
	return pred
}

// =============================================================================
// UPDATE / DELETE: equality only
// =============================================================================

// ParseEqualities translates an UPDATE or DELETE WHERE clause.
//
// Only equality is understood: the clause is split on "," and "and" and every
// segment is read as "key = value" at its first '='. Whatever follows that '='
// is the value, operator characters included. A segment without '=' or with an
// operator left of it is an UnsupportedOperator translation error.
func ParseEqualities(text string) (models.Predicate, error) {
	fields, err := parseAssignmentList(text)
	if err != nil {
		return nil, err
	}
	pred := make(models.Predicate, 0, len(fields))
	for _, f := range fields {
		pred = append(pred, models.Comparison{Field: f.Name, Operator: models.Eq, Value: f.Value})
	}
	return pred, nil
}

// ParseAssignments translates an UPDATE SET clause, with the same rules as [ParseEqualities].
func ParseAssignments(text string) ([]models.Field, error) {
	return parseAssignmentList(text)
}

func parseAssignmentList(text string) ([]models.Field, error) {
	var fields []models.Field
	for _, segment := range splitSegments(text, true) {
		if strings.TrimSpace(segment) == "" {
			continue
		}
		key, value, ok := cutEquality(segment)
		if !ok {
			return nil, errs.New(errs.Translation, "translate", errs.UnsupportedOperator,
				"only equality is supported here, got %q", strings.TrimSpace(segment))
		}
		if strings.ContainsAny(key, "<>!") {
			return nil, errs.New(errs.Translation, "translate", errs.UnsupportedOperator,
				"only equality is supported here, got %q", strings.TrimSpace(segment))
		}
		if key == "" {
			return nil, errs.New(errs.Translation, "translate", errs.InvalidName,
				"missing field name in %q", strings.TrimSpace(segment))
		}
		fields = append(fields, models.Field{Name: key, Value: Coerce(value)})
	}
	return fields, nil
}

// =============================================================================
// INSERT: positional values
// =============================================================================

// ParseValues splits an INSERT value list on top-level commas and coerces each item.
// A blank list gives no values.
func ParseValues(text string) []any {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var values []any
	for _, item := range splitSegments(text, false) {
		values = append(values, Coerce(item))
	}
	return values
}
