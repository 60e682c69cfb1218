package lexer

// TokenType represents the category of a token
type TokenType int

const (
	TOKEN_UNKNOWN    TokenType = iota
	TOKEN_KEYWORD              // SELECT, FROM, WHERE... (from mapping)
	TOKEN_IDENTIFIER           // users, age, first_name
	TOKEN_WORD                 // any other bare run: *, a.b, @x
	TOKEN_STRING               // 'John', "hello" (quotes removed)
	TOKEN_NUMBER               // 25, -3, 2.5
	TOKEN_OPERATOR             // =, !=, >, <, >=, <=
	TOKEN_LPAREN               // (
	TOKEN_RPAREN               // )
	TOKEN_COMMA                // ,
	TOKEN_SEMICOLON            // ;
	TOKEN_EOF                  // End of input
)

// Token represents a single token with position info
type Token struct {
	Type     TokenType
	Value    string // Original value (string contents for TOKEN_STRING)
	Position int    // Byte offset of the token start in input
	End      int    // Byte offset just past the token in input
	Line     int    // Line number (1-indexed)
	Column   int    // Column number (1-indexed)
}

// String returns human-readable token type name
func (t TokenType) String() string {
	names := []string{
		"UNKNOWN",
		"KEYWORD",
		"IDENTIFIER",
		"WORD",
		"STRING",
		"NUMBER",
		"OPERATOR",
		"LPAREN",
		"RPAREN",
		"COMMA",
		"SEMICOLON",
		"EOF",
	}
	if int(t) < len(names) {
		return names[t]
	}
	return "UNKNOWN"
}

// Is reports whether the token is the keyword kw. kw must be upper case.
func (t Token) Is(kw string) bool {
	return t.Type == TOKEN_KEYWORD && upper(t.Value) == kw
}
