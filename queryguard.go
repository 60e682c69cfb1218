// Package queryguard turns SQL-subset statements into document store operations.
//
// Translate is the pure half (parse, map, validate); Client executes the result
// against a MongoDB database.
package queryguard

import (
	"github.com/omniql-engine/queryguard/engine/models"
	"github.com/omniql-engine/queryguard/engine/parser"
	"github.com/omniql-engine/queryguard/engine/translator"
)

// Translate parses one statement and maps it to a store operation.
// Failures are *errs.Error of kind Parse or Translation.
func Translate(input string) (models.Operation, error) {
	stmt, err := parser.Parse(input)
	if err != nil {
		return nil, err
	}
	return translator.Translate(stmt)
}
