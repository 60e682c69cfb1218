package audit

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/omniql-engine/queryguard/engine/errs"
)

// Redis is a Log backed by Redis.
//
// Each record is a hash at <prefix>:<id>. The sorted set <prefix>:by_date holds
// one member "<date>\x00<id>" per record, all with score 0, so ZRANGEBYLEX walks
// the records in date order. Grouping by query text loads the records and groups
// them in process; ties of MostFrequent go to the oldest record.
type Redis struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedis creates a log whose keys start with Collection.
func NewRedis(rdb redis.UniversalClient) *Redis {
	return NewRedisWithPrefix(rdb, Collection)
}

// NewRedisWithPrefix creates a log whose keys start with prefix.
func NewRedisWithPrefix(rdb redis.UniversalClient, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

const memberSep = "\x00"

func (r *Redis) indexKey() string {
	return r.prefix + ":by_date"
}

func (r *Redis) recordKey(id string) string {
	return r.prefix + ":" + id
}

func indexMember(date, id string) string {
	return date + memberSep + id
}

func splitMember(member string) (date, id string) {
	date, id, _ = strings.Cut(member, memberSep)
	return date, id
}

// lexRange returns the ZRANGEBYLEX bounds matching dates in [from, to].
// Every member of a date d sorts after "d" and before "d\x01".
func lexRange(from, to string) (lo, hi string) {
	return "[" + from, "(" + to + "\x01"
}

// Append stores r in a single transaction.
func (r *Redis) Append(ctx context.Context, rec Record) error {
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.recordKey(id), "query", rec.Query, "date", rec.Date, "ip", rec.IP)
		pipe.ZAdd(ctx, r.indexKey(), redis.Z{Score: 0, Member: indexMember(rec.Date, id)})
		return nil
	})
	return errs.Wrap(errs.Store, "audit.append", err)
}

// Count counts the records in [from, to].
func (r *Redis) Count(ctx context.Context, from, to string) (int64, error) {
	lo, hi := lexRange(from, to)
	n, err := r.rdb.ZLexCount(ctx, r.indexKey(), lo, hi).Result()
	if err != nil {
		return 0, errs.Wrap(errs.Store, "audit.count", err)
	}
	return n, nil
}

// Recent returns the newest records first.
func (r *Redis) Recent(ctx context.Context, limit int) ([]Record, error) {
	members, err := r.rdb.ZRevRangeByLex(ctx, r.indexKey(), &redis.ZRangeBy{
		Min: "-", Max: "+", Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, errs.Wrap(errs.Store, "audit.recent", err)
	}
	return r.load(ctx, "audit.recent", members)
}

// All returns every record, oldest first.
func (r *Redis) All(ctx context.Context) ([]Record, error) {
	members, err := r.rdb.ZRangeByLex(ctx, r.indexKey(), &redis.ZRangeBy{Min: "-", Max: "+"}).Result()
	if err != nil {
		return nil, errs.Wrap(errs.Store, "audit.all", err)
	}
	return r.load(ctx, "audit.all", members)
}

// load fetches the hashes of the index members in one pipeline.
func (r *Redis) load(ctx context.Context, op string, members []string) ([]Record, error) {
	if len(members) == 0 {
		return []Record{}, nil
	}
	cmds := make([]*redis.MapStringStringCmd, len(members))
	_, err := r.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, m := range members {
			_, id := splitMember(m)
			cmds[i] = pipe.HGetAll(ctx, r.recordKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.Store, op, err)
	}

	records := make([]Record, 0, len(members))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		_, id := splitMember(members[i])
		records = append(records, Record{ID: id, Query: fields["query"], Date: fields["date"], IP: fields["ip"]})
	}
	return records, nil
}

// MostFrequent returns the most repeated query text.
func (r *Redis) MostFrequent(ctx context.Context) (QueryCount, bool, error) {
	records, err := r.All(ctx)
	if err != nil {
		return QueryCount{}, false, err
	}
	top, ok := Top(GroupByQuery(records))
	return top, ok, nil
}

// Frequent returns the query texts repeated more than threshold times.
func (r *Redis) Frequent(ctx context.Context, threshold int64) ([]QueryCount, error) {
	records, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	return Above(GroupByQuery(records), threshold), nil
}

// CountByDay counts the records in [from, to] per day. Only the index is read.
func (r *Redis) CountByDay(ctx context.Context, from, to string) ([]DayCount, error) {
	lo, hi := lexRange(from, to)
	members, err := r.rdb.ZRangeByLex(ctx, r.indexKey(), &redis.ZRangeBy{Min: lo, Max: hi}).Result()
	if err != nil {
		return nil, errs.Wrap(errs.Store, "audit.countByDay", err)
	}
	dates := make([]string, len(members))
	for i, m := range members {
		dates[i], _ = splitMember(m)
	}
	return GroupByDay(dates), nil
}
