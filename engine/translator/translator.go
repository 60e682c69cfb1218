package translator

import (
	"fmt"

	"github.com/omniql-engine/queryguard/engine/errs"
	"github.com/omniql-engine/queryguard/engine/models"
	"github.com/omniql-engine/queryguard/engine/parser"
	"github.com/omniql-engine/queryguard/engine/validator"
)

// Translate builds the store operation for a parsed statement.
//
//	SELECT -> Find       (rich comparisons)
//	INSERT -> InsertOne  (values zipped with field1..fieldN)
//	UPDATE -> UpdateMany (equality filter, equality assignments)
//	DELETE -> DeleteMany (equality filter)
func Translate(stmt *models.Statement) (models.Operation, error) {
	if stmt.Collection == "" {
		return nil, errs.New(errs.Translation, "translate", errs.MissingCollection,
			"%s statement has no collection name", stmt.Kind)
	}

	op, err := translate(stmt)
	if err != nil {
		return nil, err
	}

	if err := validator.Validate(op); err != nil {
		return nil, &errs.Error{Kind: errs.Translation, Op: "translate", Reason: errs.InvalidName, Err: err}
	}
	return op, nil
}

func translate(stmt *models.Statement) (models.Operation, error) {
	switch stmt.Kind {
	case models.Select:
		filter, err := parser.ParsePredicate(stmt.Predicate)
		if err != nil {
			return nil, err
		}
		return models.Find{Collection: stmt.Collection, Filter: filter}, nil

	case models.Insert:
		values := parser.ParseValues(stmt.Values)
		if len(values) == 0 {
			return nil, errs.New(errs.Translation, "translate", errs.EmptyValueList,
				"INSERT into %s has no values", stmt.Collection)
		}
		return models.InsertOne{Collection: stmt.Collection, Document: positionalDocument(values)}, nil

	case models.Update:
		filter, err := requiredEqualities(stmt)
		if err != nil {
			return nil, err
		}
		update, err := parser.ParseAssignments(stmt.Set)
		if err != nil {
			return nil, err
		}
		if len(update) == 0 {
			return nil, errs.New(errs.Translation, "translate", errs.EmptyAssignments,
				"UPDATE of %s sets no field", stmt.Collection)
		}
		return models.UpdateMany{Collection: stmt.Collection, Filter: filter, Update: update}, nil

	case models.Delete:
		filter, err := requiredEqualities(stmt)
		if err != nil {
			return nil, err
		}
		return models.DeleteMany{Collection: stmt.Collection, Filter: filter}, nil
	}

	return nil, errs.New(errs.Translation, "translate", "", "unknown statement kind %v", stmt.Kind)
}

// requiredEqualities parses the WHERE clause of UPDATE and DELETE, which must not be empty.
func requiredEqualities(stmt *models.Statement) (models.Predicate, error) {
	filter, err := parser.ParseEqualities(stmt.Predicate)
	if err != nil {
		return nil, err
	}
	if len(filter) == 0 {
		return nil, errs.New(errs.Translation, "translate", errs.EmptyPredicate,
			"%s requires a WHERE predicate", stmt.Kind)
	}
	return filter, nil
}

// positionalDocument names the values field1, field2, ... in order.
func positionalDocument(values []any) []models.Field {
	doc := make([]models.Field, len(values))
	for i, v := range values {
		doc[i] = models.Field{Name: fmt.Sprintf("field%d", i+1), Value: v}
	}
	return doc
}
