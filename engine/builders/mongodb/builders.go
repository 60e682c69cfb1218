package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/omniql-engine/queryguard/engine/models"
	"github.com/omniql-engine/queryguard/mapping"
)

// ============================================================================
// FILTER BUILDING
// ============================================================================

// BuildFilter builds a BSON filter from a SELECT predicate.
// Every comparison becomes {field: {$op: value}} inside a single $and, so repeated
// fields keep all their bounds. An empty predicate matches every document.
func BuildFilter(pred models.Predicate) bson.D {
	if len(pred) == 0 {
		return bson.D{}
	}

	and := make(bson.A, 0, len(pred))
	for _, c := range pred {
		op, ok := mapping.MongoOperator(string(c.Operator))
		if !ok {
			op = "$eq"
		}
		and = append(and, bson.D{{Key: c.Field, Value: bson.D{{Key: op, Value: c.Value}}}})
	}
	return bson.D{{Key: "$and", Value: and}}
}

// BuildEqualityFilter builds {field: value, ...} for UPDATE and DELETE.
// A predicate holding any other operator is rendered with [BuildFilter] instead,
// so no comparison is ever loosened to an equality.
func BuildEqualityFilter(pred models.Predicate) bson.D {
	if !pred.EqualityOnly() {
		return BuildFilter(pred)
	}
	filter := make(bson.D, 0, len(pred))
	for _, c := range pred {
		filter = append(filter, bson.E{Key: c.Field, Value: c.Value})
	}
	return filter
}

// ============================================================================
// DOCUMENT BUILDING
// ============================================================================

// BuildDocument builds an ordered document from fields.
func BuildDocument(fields []models.Field) bson.D {
	doc := make(bson.D, 0, len(fields))
	for _, f := range fields {
		doc = append(doc, bson.E{Key: f.Name, Value: f.Value})
	}
	return doc
}

// BuildSetUpdate builds {$set: {...}} from UPDATE assignments.
func BuildSetUpdate(fields []models.Field) bson.D {
	return bson.D{{Key: "$set", Value: BuildDocument(fields)}}
}
