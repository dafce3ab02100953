package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tbourn/go-salesbot-backend/internal/domain"
)

const (
	sessionKeyPrefix = "quota:session:"
	sessionIndexKey  = "quota:sessions"

	fieldCount     = "count"
	fieldUpdatedAt = "updated_at"
)

// RedisSessions keeps session counters in Redis so several backend replicas
// share one quota. Each user is a hash {count, updated_at}; a set indexes the
// known users for listing. Reserve and Release run as Lua scripts so the
// ceiling check and the increment are one step on the server.
type RedisSessions struct {
	client *redis.Client
}

var (
	reserveScript = redis.NewScript(`
local n = tonumber(redis.call('HGET', KEYS[1], 'count') or '0')
if n >= tonumber(ARGV[1]) then
  return {0, n}
end
n = redis.call('HINCRBY', KEYS[1], 'count', 1)
redis.call('HSET', KEYS[1], 'updated_at', ARGV[2])
redis.call('SADD', KEYS[2], ARGV[3])
return {1, n}
`)

	releaseScript = redis.NewScript(`
local n = tonumber(redis.call('HGET', KEYS[1], 'count') or '0')
if n > 0 then
  n = redis.call('HINCRBY', KEYS[1], 'count', -1)
  redis.call('HSET', KEYS[1], 'updated_at', ARGV[1])
end
return n
`)
)

// NewRedisSessions wraps a connected client.
func NewRedisSessions(client *redis.Client) *RedisSessions {
	return &RedisSessions{client: client}
}

func (r *RedisSessions) key(userID string) string { return sessionKeyPrefix + userID }

// Count implements SessionStore.
func (r *RedisSessions) Count(ctx context.Context, userID string) (int, error) {
	n, err := r.client.HGet(ctx, r.key(userID), fieldCount).Int()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

// Increment implements SessionStore. HINCRBY is atomic on the server.
func (r *RedisSessions) Increment(ctx context.Context, userID string) (int, error) {
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.HIncrBy(ctx, r.key(userID), fieldCount, 1)
		pipe.HSet(ctx, r.key(userID), fieldUpdatedAt, time.Now().UTC().Format(time.RFC3339Nano))
		pipe.SAdd(ctx, sessionIndexKey, userID)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}

// Reserve implements SlotReserver.
func (r *RedisSessions) Reserve(ctx context.Context, userID string, max int) (int, bool, error) {
	res, err := reserveScript.Run(ctx, r.client,
		[]string{r.key(userID), sessionIndexKey},
		max, time.Now().UTC().Format(time.RFC3339Nano), userID,
	).Int64Slice()
	if err != nil {
		return 0, false, err
	}
	if len(res) != 2 {
		return 0, false, fmt.Errorf("store: unexpected reserve reply %v", res)
	}
	return int(res[1]), res[0] == 1, nil
}

// Release implements SlotReserver. The count never drops below zero, so a
// reset that lands between Reserve and Release is not undone.
func (r *RedisSessions) Release(ctx context.Context, userID string) (int, error) {
	n, err := releaseScript.Run(ctx, r.client,
		[]string{r.key(userID)},
		time.Now().UTC().Format(time.RFC3339Nano),
	).Int()
	return n, err
}

// Reset implements SessionStore.
func (r *RedisSessions) Reset(ctx context.Context, userID string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.key(userID),
			fieldCount, 0,
			fieldUpdatedAt, time.Now().UTC().Format(time.RFC3339Nano))
		pipe.SAdd(ctx, sessionIndexKey, userID)
		return nil
	})
	return err
}

// List implements SessionStore.
func (r *RedisSessions) List(ctx context.Context) ([]domain.Session, error) {
	users, err := r.client.SMembers(ctx, sessionIndexKey).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(users)

	cmds := make([]*redis.MapStringStringCmd, len(users))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, u := range users {
			cmds[i] = pipe.HGetAll(ctx, r.key(u))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.Session, 0, len(users))
	for i, u := range users {
		fields := cmds[i].Val()
		s := domain.Session{UserID: u}
		s.Count, _ = strconv.Atoi(fields[fieldCount])
		if ts, err := time.Parse(time.RFC3339Nano, fields[fieldUpdatedAt]); err == nil {
			s.UpdatedAt = ts
		}
		out = append(out, s)
	}
	return out, nil
}

// Len implements SessionStore.
func (r *RedisSessions) Len(ctx context.Context) (int, error) {
	n, err := r.client.SCard(ctx, sessionIndexKey).Result()
	return int(n), err
}

// Close closes the client.
func (r *RedisSessions) Close() error { return r.client.Close() }
