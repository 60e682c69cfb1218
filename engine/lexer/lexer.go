package lexer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/omniql-engine/queryguard/mapping"
)

var (
	numberPattern     = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	identifierPattern = regexp.MustCompile(`^\w+$`)
)

// Tokenizer converts input string to tokens
type Tokenizer struct {
	input  string
	pos    int
	line   int
	column int
	tokens []Token
	// lenient turns unknown operators and unclosed strings into TOKEN_WORD instead of failing.
	lenient bool
}

// Tokenize converts input to tokens, validating operators against mapping.
// An unknown operator or an unclosed string is a *ParseError.
func Tokenize(input string) ([]Token, error) {
	t := &Tokenizer{input: input, line: 1, column: 1}
	return t.tokenize()
}

// TokenizeLenient converts input to tokens without ever failing.
// Used to locate keyword anchors in statements whose clauses are split textually.
func TokenizeLenient(input string) []Token {
	t := &Tokenizer{input: input, line: 1, column: 1, lenient: true}
	tokens, _ := t.tokenize()
	return tokens
}

func (t *Tokenizer) tokenize() ([]Token, error) {
	for t.pos < len(t.input) {
		// Skip whitespace
		if t.skipWhitespace() {
			continue
		}

		ch := t.input[t.pos]

		// Single character tokens
		switch ch {
		case '(':
			t.addToken(TOKEN_LPAREN, "(")
			t.advance()
			continue
		case ')':
			t.addToken(TOKEN_RPAREN, ")")
			t.advance()
			continue
		case ',':
			t.addToken(TOKEN_COMMA, ",")
			t.advance()
			continue
		case ';':
			t.addToken(TOKEN_SEMICOLON, ";")
			t.advance()
			continue
		case '\'', '"':
			token, err := t.scanString(ch)
			if err != nil {
				return nil, err
			}
			t.tokens = append(t.tokens, token)
			continue
		}

		// Operators: =, !=, >, <, >=, <=
		if isOperatorChar(ch) {
			token, err := t.scanOperator()
			if err != nil {
				return nil, err
			}
			t.tokens = append(t.tokens, token)
			continue
		}

		t.tokens = append(t.tokens, t.scanWord())
	}

	// Add EOF token
	t.addToken(TOKEN_EOF, "")

	return t.tokens, nil
}

func (t *Tokenizer) skipWhitespace() bool {
	skipped := false
	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		if ch == ' ' || ch == '\t' {
			t.column++
			t.pos++
			skipped = true
		} else if ch == '\n' {
			t.line++
			t.column = 1
			t.pos++
			skipped = true
		} else if ch == '\r' {
			t.pos++
			skipped = true
		} else {
			break
		}
	}
	return skipped
}

func (t *Tokenizer) advance() {
	t.pos++
	t.column++
}

func (t *Tokenizer) addToken(tokenType TokenType, value string) {
	t.tokens = append(t.tokens, Token{
		Type:     tokenType,
		Value:    value,
		Position: t.pos,
		End:      t.pos + len(value),
		Line:     t.line,
		Column:   t.column,
	})
}

func (t *Tokenizer) scanString(quote byte) (Token, error) {
	startPos := t.pos
	startLine := t.line
	startCol := t.column

	t.advance() // Skip opening quote

	var value strings.Builder
	for t.pos < len(t.input) {
		ch := t.input[t.pos]

		if ch == '\\' && t.pos+1 < len(t.input) {
			// Escape sequence
			t.advance()
			switch t.input[t.pos] {
			case 'n':
				value.WriteByte('\n')
			case 't':
				value.WriteByte('\t')
			default:
				value.WriteByte(t.input[t.pos])
			}
			t.advance()
			continue
		}

		if ch == quote {
			t.advance() // Skip closing quote
			return Token{
				Type:     TOKEN_STRING,
				Value:    value.String(),
				Position: startPos,
				End:      t.pos,
				Line:     startLine,
				Column:   startCol,
			}, nil
		}

		if ch == '\n' {
			t.line++
			t.column = 0
		}
		value.WriteByte(ch)
		t.advance()
	}

	if t.lenient {
		return Token{
			Type:     TOKEN_WORD,
			Value:    t.input[startPos:],
			Position: startPos,
			End:      t.pos,
			Line:     startLine,
			Column:   startCol,
		}, nil
	}
	return Token{}, &ParseError{
		Message:  fmt.Sprintf("unclosed string, expected %c", quote),
		Position: startPos,
		Line:     startLine,
		Column:   startCol,
	}
}

// scanWord reads a bare run up to the next whitespace, delimiter, quote or operator
// and classifies it as keyword, number, identifier or word.
func (t *Tokenizer) scanWord() Token {
	startPos := t.pos
	startCol := t.column

	for t.pos < len(t.input) && !isDelimiter(t.input[t.pos]) {
		t.advance()
	}

	word := t.input[startPos:t.pos]
	return Token{
		Type:     classifyWord(word),
		Value:    word,
		Position: startPos,
		End:      t.pos,
		Line:     t.line,
		Column:   startCol,
	}
}

func classifyWord(word string) TokenType {
	switch {
	case numberPattern.MatchString(word):
		return TOKEN_NUMBER
	case mapping.IsStatementKeyword(word), mapping.IsClauseKeyword(word):
		return TOKEN_KEYWORD
	case identifierPattern.MatchString(word):
		return TOKEN_IDENTIFIER
	default:
		return TOKEN_WORD
	}
}

func (t *Tokenizer) scanOperator() (Token, error) {
	startPos := t.pos
	startCol := t.column

	// Collect operator characters
	for t.pos < len(t.input) && isOperatorChar(t.input[t.pos]) {
		t.advance()
	}

	op := t.input[startPos:t.pos]
	token := Token{
		Type:     TOKEN_OPERATOR,
		Value:    op,
		Position: startPos,
		End:      t.pos,
		Line:     t.line,
		Column:   startCol,
	}

	// Validate operator exists in mapping
	if mapping.IsComparisonOperator(op) {
		return token, nil
	}
	if t.lenient {
		token.Type = TOKEN_WORD
		return token, nil
	}
	return Token{}, &ParseError{
		Message:  fmt.Sprintf("unknown operator '%s'", op),
		Position: startPos,
		Line:     t.line,
		Column:   startCol,
		Token:    op,
	}
}

func isOperatorChar(ch byte) bool {
	return ch == '=' || ch == '!' || ch == '<' || ch == '>'
}

func isDelimiter(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '(', ')', ',', ';', '\'', '"':
		return true
	}
	return isOperatorChar(ch)
}

func upper(s string) string {
	return strings.ToUpper(s)
}
