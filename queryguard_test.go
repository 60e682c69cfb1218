package queryguard_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/omniql-engine/queryguard"
	"github.com/omniql-engine/queryguard/engine/errs"
	"github.com/omniql-engine/queryguard/engine/models"
)

func TestTranslate(t *testing.T) {
	cases := []struct {
		input string
		want  models.Operation
	}{
		{
			input: `SELECT * FROM T WHERE a > 5 AND b = "x"`,
			want: models.Find{Collection: "T", Filter: models.Predicate{
				{Field: "a", Operator: models.Gt, Value: int64(5)},
				{Field: "b", Operator: models.Eq, Value: "x"},
			}},
		},
		{
			input: `SELECT * FROM users WHERE address.city != "Paris" AND a.b > 5`,
			want: models.Find{Collection: "users", Filter: models.Predicate{
				{Field: "address.city", Operator: models.Ne, Value: "Paris"},
				{Field: "a.b", Operator: models.Gt, Value: int64(5)},
			}},
		},
		{
			input: `INSERT INTO T VALUES (1, "a", 2.5)`,
			want: models.InsertOne{Collection: "T", Document: []models.Field{
				{Name: "field1", Value: int64(1)},
				{Name: "field2", Value: "a"},
				{Name: "field3", Value: 2.5},
			}},
		},
		{
			input: `UPDATE users SET age = 31 WHERE name = 'bo';`,
			want: models.UpdateMany{
				Collection: "users",
				Filter:     models.Predicate{{Field: "name", Operator: models.Eq, Value: "bo"}},
				Update:     []models.Field{{Name: "age", Value: int64(31)}},
			},
		},
		{
			input: `DELETE FROM users WHERE note = >5`,
			want: models.DeleteMany{
				Collection: "users",
				Filter:     models.Predicate{{Field: "note", Operator: models.Eq, Value: ">5"}},
			},
		},
	}

	for _, c := range cases {
		t.Run(c.input, func(t *testing.T) {
			got, err := queryguard.Translate(c.input)
			if err != nil {
				t.Fatalf("Translate: %v", err)
			}
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTranslateErrors(t *testing.T) {
	cases := []struct {
		input  string
		kind   errs.Kind
		reason errs.Reason
	}{
		{"DROP TABLE users", errs.Parse, errs.UnsupportedStatement},
		{"INSERT INTO users", errs.Parse, errs.MalformedInsert},
		{"DELETE FROM users", errs.Parse, errs.MalformedDelete},
		{"SELECT * WHERE a = 1", errs.Translation, errs.MissingCollection},
		{"INSERT INTO users VALUES ()", errs.Translation, errs.EmptyValueList},
		{"SELECT * FROM users WHERE a..b > 5", errs.Parse, errs.MalformedPredicate},
		{"SELECT * FROM users WHERE age >", errs.Parse, errs.MalformedPredicate},
	}

	for _, c := range cases {
		t.Run(c.input, func(t *testing.T) {
			_, err := queryguard.Translate(c.input)
			if !errors.Is(err, c.kind) {
				t.Fatalf("got %v; want kind %q", err, c.kind)
			}
			if got := errs.ReasonOf(err); got != c.reason {
				t.Fatalf("got reason %q; want %q", got, c.reason)
			}
		})
	}
}
