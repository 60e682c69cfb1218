package mapping

import "strings"

// ClauseKeywords lists the keyword anchors that delimit the clauses of a statement.
//
//	SELECT ... FROM <name> [WHERE <predicate>]
//	INSERT INTO <name> VALUES (<values>)
//	UPDATE <name> SET <assignments> WHERE <predicate>
//	DELETE FROM <name> WHERE <predicate>
var ClauseKeywords = []string{"FROM", "INTO", "VALUES", "SET", "WHERE"}

// IsClauseKeyword reports whether word (any case) is a keyword anchor.
func IsClauseKeyword(word string) bool {
	for _, kw := range ClauseKeywords {
		if strings.EqualFold(word, kw) {
			return true
		}
	}
	return false
}
