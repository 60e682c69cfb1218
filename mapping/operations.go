package mapping

import "strings"

// StatementKeywords lists the leading keywords of the accepted statements.
var StatementKeywords = []string{"SELECT", "INSERT", "UPDATE", "DELETE"}

// OperationMap maps a statement keyword to the MongoDB collection method that executes it.
// Usage: OperationMap["UPDATE"] returns "updateMany"
var OperationMap = map[string]string{
	"SELECT": "find",
	"INSERT": "insertOne",
	"UPDATE": "updateMany",
	"DELETE": "deleteMany",
}

// IsStatementKeyword reports whether word (any case) starts an accepted statement.
func IsStatementKeyword(word string) bool {
	_, ok := OperationMap[strings.ToUpper(word)]
	return ok
}
