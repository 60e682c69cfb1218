// client.go

package queryguard

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	mongobuilders "github.com/omniql-engine/queryguard/engine/builders/mongodb"
	"github.com/omniql-engine/queryguard/engine/errs"
	"github.com/omniql-engine/queryguard/engine/models"
)

// ============================================
// CLIENT STRUCT
// ============================================

// Client executes operations against a MongoDB database.
type Client struct {
	mongoDB *mongo.Database
}

// ============================================
// RESULTS
// ============================================

// InsertResult is the outcome of an InsertOne.
type InsertResult struct {
	InsertedID any `json:"insertedId"`
}

// UpdateResult is the outcome of an UpdateMany.
type UpdateResult struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// DeleteResult is the outcome of a DeleteMany.
type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}

// ============================================
// CONSTRUCTORS
// ============================================

// WrapMongo wraps a MongoDB database connection.
func WrapMongo(db *mongo.Database) *Client {
	return &Client{mongoDB: db}
}

// ============================================
// QUERY EXECUTION
// ============================================

// Query translates and executes one statement.
func (c *Client) Query(ctx context.Context, input string) (any, error) {
	op, err := Translate(input)
	if err != nil {
		return nil, err
	}
	return c.Execute(ctx, op)
}

// Execute runs op. The result is []map[string]any for a Find, or one of
// InsertResult, UpdateResult and DeleteResult. Driver failures are errs.Store.
func (c *Client) Execute(ctx context.Context, op models.Operation) (any, error) {
	coll := c.mongoDB.Collection(op.CollectionName())

	switch op := op.(type) {
	case models.Find:
		return c.mongoFind(ctx, coll, op)
	case models.InsertOne:
		return c.mongoInsert(ctx, coll, op)
	case models.UpdateMany:
		return c.mongoUpdate(ctx, coll, op)
	case models.DeleteMany:
		return c.mongoDelete(ctx, coll, op)
	default:
		return nil, errs.Wrap(errs.Store, "execute", fmt.Errorf("unsupported operation %T", op))
	}
}

func (c *Client) mongoFind(ctx context.Context, coll *mongo.Collection, op models.Find) ([]map[string]any, error) {
	cursor, err := coll.Find(ctx, mongobuilders.BuildFilter(op.Filter))
	if err != nil {
		return nil, errs.Wrap(errs.Store, "find", err)
	}
	defer cursor.Close(ctx)

	results := []map[string]any{}
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, errs.Wrap(errs.Store, "find", fmt.Errorf("decoding document: %w", err))
		}
		results = append(results, bsonToMap(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, errs.Wrap(errs.Store, "find", err)
	}

	return results, nil
}

func (c *Client) mongoInsert(ctx context.Context, coll *mongo.Collection, op models.InsertOne) (InsertResult, error) {
	result, err := coll.InsertOne(ctx, mongobuilders.BuildDocument(op.Document))
	if err != nil {
		return InsertResult{}, errs.Wrap(errs.Store, "insertOne", err)
	}
	return InsertResult{InsertedID: result.InsertedID}, nil
}

func (c *Client) mongoUpdate(ctx context.Context, coll *mongo.Collection, op models.UpdateMany) (UpdateResult, error) {
	result, err := coll.UpdateMany(ctx,
		mongobuilders.BuildEqualityFilter(op.Filter),
		mongobuilders.BuildSetUpdate(op.Update))
	if err != nil {
		return UpdateResult{}, errs.Wrap(errs.Store, "updateMany", err)
	}
	return UpdateResult{MatchedCount: result.MatchedCount, ModifiedCount: result.ModifiedCount}, nil
}

func (c *Client) mongoDelete(ctx context.Context, coll *mongo.Collection, op models.DeleteMany) (DeleteResult, error) {
	result, err := coll.DeleteMany(ctx, mongobuilders.BuildEqualityFilter(op.Filter))
	if err != nil {
		return DeleteResult{}, errs.Wrap(errs.Store, "deleteMany", err)
	}
	return DeleteResult{DeletedCount: result.DeletedCount}, nil
}

// ============================================
// HELPERS
// ============================================

func bsonToMap(doc bson.M) map[string]any {
	result := make(map[string]any, len(doc))
	for k, v := range doc {
		result[k] = v
	}
	return result
}
