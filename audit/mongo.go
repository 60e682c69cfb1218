package audit

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/omniql-engine/queryguard/engine/errs"
)

// Mongo is a Log backed by a MongoDB collection.
// Aggregations run on the server; tie order of MostFrequent is the server's.
type Mongo struct {
	coll *mongo.Collection
}

// NewMongo creates a log on the Collection collection of db.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{coll: db.Collection(Collection)}
}

type mongoRecord struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Query string             `bson:"query"`
	Date  string             `bson:"date"`
	IP    string             `bson:"ip"`
}

type mongoGroup struct {
	ID    string `bson:"_id"`
	Count int64  `bson:"count"`
}

func (r mongoRecord) record() Record {
	rec := Record{Query: r.Query, Date: r.Date, IP: r.IP}
	if !r.ID.IsZero() {
		rec.ID = r.ID.Hex()
	}
	return rec
}

func dateRange(from, to string) bson.D {
	return bson.D{{Key: "date", Value: bson.D{{Key: "$gte", Value: from}, {Key: "$lte", Value: to}}}}
}

var groupByQuery = bson.D{{Key: "$group", Value: bson.D{
	{Key: "_id", Value: "$query"},
	{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
}}}

// Append inserts r.
func (m *Mongo) Append(ctx context.Context, r Record) error {
	_, err := m.coll.InsertOne(ctx, mongoRecord{Query: r.Query, Date: r.Date, IP: r.IP})
	return errs.Wrap(errs.Store, "audit.append", err)
}

// Count counts the records in [from, to].
func (m *Mongo) Count(ctx context.Context, from, to string) (int64, error) {
	n, err := m.coll.CountDocuments(ctx, dateRange(from, to))
	if err != nil {
		return 0, errs.Wrap(errs.Store, "audit.count", err)
	}
	return n, nil
}

// Recent returns the newest records first.
func (m *Mongo) Recent(ctx context.Context, limit int) ([]Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}}).SetLimit(int64(limit))
	return m.find(ctx, "audit.recent", opts)
}

// All returns every record.
func (m *Mongo) All(ctx context.Context) ([]Record, error) {
	return m.find(ctx, "audit.all", options.Find())
}

func (m *Mongo) find(ctx context.Context, op string, opts *options.FindOptions) ([]Record, error) {
	cursor, err := m.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, errs.Wrap(errs.Store, op, err)
	}
	var docs []mongoRecord
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errs.Wrap(errs.Store, op, err)
	}
	records := make([]Record, len(docs))
	for i, d := range docs {
		records[i] = d.record()
	}
	return records, nil
}

// MostFrequent groups by query text and keeps the largest group.
func (m *Mongo) MostFrequent(ctx context.Context) (QueryCount, bool, error) {
	groups, err := m.aggregate(ctx, "audit.mostFrequent", mongo.Pipeline{
		groupByQuery,
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		{{Key: "$limit", Value: 1}},
	})
	if err != nil || len(groups) == 0 {
		return QueryCount{}, false, err
	}
	return QueryCount{Query: groups[0].ID, Count: groups[0].Count}, true, nil
}

// Frequent groups by query text and keeps the groups above threshold.
func (m *Mongo) Frequent(ctx context.Context, threshold int64) ([]QueryCount, error) {
	groups, err := m.aggregate(ctx, "audit.frequent", mongo.Pipeline{
		groupByQuery,
		{{Key: "$match", Value: bson.D{{Key: "count", Value: bson.D{{Key: "$gt", Value: threshold}}}}}},
	})
	if err != nil {
		return nil, err
	}
	res := make([]QueryCount, len(groups))
	for i, g := range groups {
		res[i] = QueryCount{Query: g.ID, Count: g.Count}
	}
	return res, nil
}

// CountByDay groups the records in [from, to] by the first 10 characters of their date.
func (m *Mongo) CountByDay(ctx context.Context, from, to string) ([]DayCount, error) {
	groups, err := m.aggregate(ctx, "audit.countByDay", mongo.Pipeline{
		{{Key: "$match", Value: dateRange(from, to)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$substr", Value: bson.A{"$date", 0, 10}}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	})
	if err != nil {
		return nil, err
	}
	res := make([]DayCount, len(groups))
	for i, g := range groups {
		res[i] = DayCount{Day: g.ID, Count: g.Count}
	}
	return res, nil
}

func (m *Mongo) aggregate(ctx context.Context, op string, pipeline mongo.Pipeline) ([]mongoGroup, error) {
	cursor, err := m.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errs.Wrap(errs.Store, op, err)
	}
	var groups []mongoGroup
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, errs.Wrap(errs.Store, op, err)
	}
	return groups, nil
}
