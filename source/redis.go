package source

import (
	"context"
	"slices"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/shrek82/dbutils/core"
)

// RedisHashes reads one Redis hash per row. Hash fields are the columns and
// their string values the cells. A missing key reads as a row without columns.
type RedisHashes struct {
	ctx    context.Context
	client redis.Cmdable
	keys   []string
	pos    int
	cur    map[string]string
	err    error
}

// NewRedisHashes returns a cursor over keys, in the given order. Each call to
// Next issues one HGETALL with ctx.
func NewRedisHashes(ctx context.Context, client redis.Cmdable, keys ...string) *RedisHashes {
	return &RedisHashes{
		ctx:    ctx,
		client: client,
		keys:   keys,
		pos:    -1,
	}
}

func (r *RedisHashes) Next() bool {
	r.cur = nil
	if r.err != nil || r.pos+1 >= len(r.keys) {
		return false
	}
	r.pos++

	key := r.keys[r.pos]
	vals, err := r.client.HGetAll(r.ctx, key).Result()
	if err != nil {
		r.err = errors.Wrapf(err, "dbutils: hgetall %s", key)
		return false
	}
	r.cur = vals
	return true
}

// Key returns the key of the current row.
func (r *RedisHashes) Key() string {
	if r.pos < 0 || r.pos >= len(r.keys) {
		return ""
	}
	return r.keys[r.pos]
}

func (r *RedisHashes) HasColumn(name string) bool {
	_, ok := r.cur[name]
	return ok
}

func (r *RedisHashes) Value(name string) any {
	v, ok := r.cur[name]
	if !ok {
		return core.Absent
	}
	return v
}

func (r *RedisHashes) Err() error {
	return r.err
}

// ScanKeys returns every key matching pattern, sorted and without the
// duplicates SCAN may report.
func ScanKeys(ctx context.Context, client redis.Cmdable, pattern string) ([]string, error) {
	var keys []string
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(err, "dbutils: scan %s", pattern)
	}
	slices.Sort(keys)
	return slices.Compact(keys), nil
}
