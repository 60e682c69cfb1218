package parser

import (
	"strings"

	"github.com/omniql-engine/queryguard/engine/errs"
	"github.com/omniql-engine/queryguard/engine/lexer"
	"github.com/omniql-engine/queryguard/engine/models"
)

// Parser extracts the clauses of one statement using keyword anchors.
// It is not a SQL grammar: only the anchors of the statement kind are located
// and the text between them is kept verbatim for the predicate translator.
type Parser struct {
	input  string
	tokens []lexer.Token
	end    int // byte offset where the statement text ends (trailing ';' excluded)
}

// Parse is the package-level entry point: it classifies input by its leading
// keyword and extracts the collection and clause texts.
func Parse(input string) (*models.Statement, error) {
	return New(input).Parse()
}

// New creates a new parser from input string
func New(input string) *Parser {
	tokens := lexer.TokenizeLenient(input)

	// Trailing semicolons are not part of any clause.
	last := len(tokens) - 1 // EOF
	end := len(input)
	for last > 0 && tokens[last-1].Type == lexer.TOKEN_SEMICOLON {
		last--
		end = tokens[last].Position
	}

	return &Parser{
		input:  input,
		tokens: tokens[:last],
		end:    end,
	}
}

// Parse parses the input and returns the Statement
func (p *Parser) Parse() (*models.Statement, error) {
	var lead lexer.Token
	if len(p.tokens) > 0 {
		lead = p.tokens[0]
	} else {
		lead = lexer.Token{Type: lexer.TOKEN_EOF}
	}

	kind, ok := models.ParseKind(strings.ToUpper(lead.Value))
	if lead.Type != lexer.TOKEN_KEYWORD || !ok {
		return nil, &errs.Error{
			Kind:   errs.Parse,
			Op:     "parse",
			Reason: errs.UnsupportedStatement,
			Err:    lexer.NewUnsupportedStatementError(lead),
		}
	}

	switch kind {
	case models.Select:
		return p.parseSelect(), nil
	case models.Insert:
		return p.parseInsert()
	case models.Update:
		return p.parseUpdate()
	default:
		return p.parseDelete()
	}
}

// parseSelect handles: SELECT ... FROM <collection> [WHERE <predicate>]
// A missing collection is reported by the translator.
func (p *Parser) parseSelect() *models.Statement {
	stmt := &models.Statement{Kind: models.Select}
	stmt.Collection = p.nameAfter(p.find("FROM", 1))
	if where := p.find("WHERE", 1); where != -1 {
		stmt.Predicate = p.textAfter(where)
	}
	return stmt
}

// parseInsert handles: INSERT INTO <collection> VALUES ( <values> )
func (p *Parser) parseInsert() (*models.Statement, error) {
	stmt := &models.Statement{Kind: models.Insert}
	stmt.Collection = p.nameAfter(p.find("INTO", 1))

	values := p.find("VALUES", 1)
	open, closing := -1, -1
	if values != -1 && values+1 < len(p.tokens) && p.tokens[values+1].Type == lexer.TOKEN_LPAREN {
		open = values + 1
		closing = p.lastOf(lexer.TOKEN_RPAREN, open+1)
	}

	if stmt.Collection == "" || closing == -1 {
		return nil, errs.New(errs.Parse, "parse", errs.MalformedInsert,
			"missing collection name or VALUES clause")
	}
	stmt.Values = strings.TrimSpace(p.input[p.tokens[open].End:p.tokens[closing].Position])
	return stmt, nil
}

// parseUpdate handles: UPDATE <collection> SET <assignments> WHERE <predicate>
func (p *Parser) parseUpdate() (*models.Statement, error) {
	stmt := &models.Statement{Kind: models.Update}
	stmt.Collection = p.nameAfter(0)

	set := p.find("SET", 1)
	where := -1
	if set != -1 {
		where = p.find("WHERE", set+1)
	}
	if where != -1 {
		stmt.Set = p.textBetween(set, where)
		stmt.Predicate = p.textAfter(where)
	}

	if stmt.Collection == "" || stmt.Set == "" || stmt.Predicate == "" {
		return nil, errs.New(errs.Parse, "parse", errs.MalformedUpdate,
			"missing collection name, SET clause, or WHERE clause")
	}
	return stmt, nil
}

// parseDelete handles: DELETE FROM <collection> WHERE <predicate>
func (p *Parser) parseDelete() (*models.Statement, error) {
	stmt := &models.Statement{Kind: models.Delete}
	stmt.Collection = p.nameAfter(p.find("FROM", 1))
	if where := p.find("WHERE", 1); where != -1 {
		stmt.Predicate = p.textAfter(where)
	}

	if stmt.Collection == "" || stmt.Predicate == "" {
		return nil, errs.New(errs.Parse, "parse", errs.MalformedDelete,
			"missing collection name or WHERE clause")
	}
	return stmt, nil
}

// =============================================================================
// ANCHOR NAVIGATION
// =============================================================================

// find returns the index of the first keyword kw at or after from, or -1.
func (p *Parser) find(kw string, from int) int {
	if from < 0 {
		return -1
	}
	for i := from; i < len(p.tokens); i++ {
		if p.tokens[i].Is(kw) {
			return i
		}
	}
	return -1
}

// lastOf returns the index of the last token of type typ at or after from, or -1.
func (p *Parser) lastOf(typ lexer.TokenType, from int) int {
	for i := len(p.tokens) - 1; i >= from; i-- {
		if p.tokens[i].Type == typ {
			return i
		}
	}
	return -1
}

// nameAfter returns the identifier following the anchor at idx, or "".
func (p *Parser) nameAfter(idx int) string {
	if idx < 0 || idx+1 >= len(p.tokens) {
		return ""
	}
	next := p.tokens[idx+1]
	if next.Type != lexer.TOKEN_IDENTIFIER {
		return ""
	}
	return next.Value
}

// textBetween returns the trimmed input between the anchors at from and to.
func (p *Parser) textBetween(from, to int) string {
	return strings.TrimSpace(p.input[p.tokens[from].End:p.tokens[to].Position])
}

// textAfter returns the trimmed input after the anchor at idx up to the end of the statement.
func (p *Parser) textAfter(idx int) string {
	start := p.tokens[idx].End
	if start >= p.end {
		return ""
	}
	return strings.TrimSpace(p.input[start:p.end])
}
