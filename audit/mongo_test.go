package audit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/omniql-engine/queryguard/audit"
	"github.com/omniql-engine/queryguard/engine/errs"
)

const ns = "test.maliciousactions"

func TestMongo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("append", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		if err := audit.NewMongo(mt.DB).Append(ctx, fixture[0]); err != nil {
			t.Fatalf("Append: %v", err)
		}
	})

	mt.Run("append failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error",
		}))
		err := audit.NewMongo(mt.DB).Append(ctx, fixture[0])
		if !errors.Is(err, errs.Store) {
			t.Fatalf("got %v; want a store error", err)
		}
	})

	mt.Run("count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(3)}}))
		got, err := audit.NewMongo(mt.DB).Count(ctx, "2024-01-01 00:00:00", "2024-01-01 23:59:59")
		if err != nil {
			t.Fatalf("Count: %v", err)
		}
		if got != 3 {
			t.Fatalf("got %d; want 3", got)
		}
	})

	mt.Run("recent", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: id},
				{Key: "query", Value: "DROP TABLE users"},
				{Key: "date", Value: "2024-01-02 00:00:00"},
				{Key: "ip", Value: "10.0.0.1"},
			}))
		got, err := audit.NewMongo(mt.DB).Recent(ctx, 100)
		if err != nil {
			t.Fatalf("Recent: %v", err)
		}
		want := []audit.Record{{ID: id.Hex(), Query: "DROP TABLE users", Date: "2024-01-02 00:00:00", IP: "10.0.0.1"}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("Recent mismatch (-want +got):\n%s", diff)
		}
	})

	mt.Run("most frequent", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "DROP TABLE users"}, {Key: "count", Value: int32(4)}}))
		got, ok, err := audit.NewMongo(mt.DB).MostFrequent(ctx)
		if err != nil || !ok {
			t.Fatalf("MostFrequent: %v, %v", ok, err)
		}
		if diff := cmp.Diff(audit.QueryCount{Query: "DROP TABLE users", Count: 4}, got); diff != "" {
			t.Fatalf("MostFrequent mismatch (-want +got):\n%s", diff)
		}
	})

	mt.Run("most frequent empty", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		_, ok, err := audit.NewMongo(mt.DB).MostFrequent(ctx)
		if err != nil {
			t.Fatalf("MostFrequent: %v", err)
		}
		if ok {
			t.Fatal("empty aggregation reported a result")
		}
	})

	mt.Run("frequent", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "DROP TABLE users"}, {Key: "count", Value: int32(12)}}))
		got, err := audit.NewMongo(mt.DB).Frequent(ctx, 10)
		if err != nil {
			t.Fatalf("Frequent: %v", err)
		}
		if diff := cmp.Diff([]audit.QueryCount{{Query: "DROP TABLE users", Count: 12}}, got); diff != "" {
			t.Fatalf("Frequent mismatch (-want +got):\n%s", diff)
		}
	})

	mt.Run("count by day", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "2024-01-01"}, {Key: "count", Value: int32(2)}},
			bson.D{{Key: "_id", Value: "2024-01-02"}, {Key: "count", Value: int32(1)}}))
		got, err := audit.NewMongo(mt.DB).CountByDay(ctx, "2023-12-26 00:00:00", "2024-01-02 23:59:59")
		if err != nil {
			t.Fatalf("CountByDay: %v", err)
		}
		want := []audit.DayCount{{Day: "2024-01-01", Count: 2}, {Day: "2024-01-02", Count: 1}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("CountByDay mismatch (-want +got):\n%s", diff)
		}
	})

	mt.Run("aggregate failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 13, Name: "Unauthorized", Message: "not authorized",
		}))
		_, err := audit.NewMongo(mt.DB).Frequent(ctx, 10)
		if !errors.Is(err, errs.Store) {
			t.Fatalf("got %v; want a store error", err)
		}
	})
}
