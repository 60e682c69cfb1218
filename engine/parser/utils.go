package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var numericLiteral = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// Coerce converts a literal to its value: a fully numeric literal becomes an int64
// (or a float64 when it has a decimal part), anything else is a string with its
// leading and trailing quote characters stripped.
func Coerce(raw string) any {
	s := strings.TrimSpace(raw)
	if numericLiteral.MatchString(s) {
		if !strings.Contains(s, ".") {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n
			}
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return strings.Trim(s, `"'`)
}

// splitSegments splits text at top-level commas and, when onAnd is set, at the
// word "and" (any case, surrounded by whitespace). Separators inside quotes are kept.
func splitSegments(text string, onAnd bool) []string {
	var (
		segments []string
		start    int
		quote    byte
	)
	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case quote != 0:
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == ',':
			segments = append(segments, text[start:i])
			start = i + 1
		case onAnd && isAndAt(text, i):
			segments = append(segments, text[start:i])
			start = i + len("and")
			i = start - 1
		}
	}
	return append(segments, text[start:])
}

func isAndAt(text string, i int) bool {
	end := i + len("and")
	if end > len(text) || !strings.EqualFold(text[i:end], "and") {
		return false
	}
	if i == 0 || !isSpace(text[i-1]) {
		return false
	}
	return end == len(text) || isSpace(text[end])
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

// cutEquality splits "key = value" at its first '='.
func cutEquality(segment string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(segment, "=")
	return strings.TrimSpace(key), strings.TrimSpace(value), ok
}
