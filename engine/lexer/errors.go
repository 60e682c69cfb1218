package lexer

import (
	"fmt"
	"strings"

	"github.com/omniql-engine/queryguard/mapping"
)

// ParseError represents an error with position info
type ParseError struct {
	Message  string
	Position int
	Line     int
	Column   int
	Token    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// NewParseError creates a new parse error
func NewParseError(token Token, message string) *ParseError {
	return &ParseError{
		Message:  message,
		Position: token.Position,
		Line:     token.Line,
		Column:   token.Column,
		Token:    token.Value,
	}
}

// NewUnsupportedStatementError creates error with suggestion
func NewUnsupportedStatementError(token Token) *ParseError {
	if token.Type == TOKEN_EOF {
		return NewParseError(token, "empty statement")
	}
	msg := fmt.Sprintf("unsupported statement '%s'", token.Value)
	if suggestion := SuggestSimilar(token.Value); suggestion != "" {
		msg += fmt.Sprintf(". Did you mean '%s'?", suggestion)
	}
	return NewParseError(token, msg)
}

// SuggestSimilar finds the closest statement keyword
func SuggestSimilar(unknown string) string {
	unknown = strings.ToUpper(unknown)

	var bestMatch string
	bestDistance := 999
	maxDistance := 2 // Only suggest if within 2 edits

	for _, kw := range mapping.StatementKeywords {
		dist := levenshtein(unknown, kw)
		if dist <= maxDistance && dist < bestDistance {
			bestDistance = dist
			bestMatch = kw
		}
	}
	return bestMatch
}

// levenshtein calculates edit distance between two strings
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// Create matrix
	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	// Fill matrix
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}
