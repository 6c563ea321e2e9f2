package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/warp/farm-ledger/attendance"
)

// Redis is a Cache shared by every process pointing at the same server.
//
// Keys embed a generation number. Flush increments the generation, which
// orphans every existing entry at once; orphans age out through the TTL.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

type redisRecord struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

// NewRedisClient connects to redis with short timeouts.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
}

// NewRedis creates a Redis cache. ttl <= 0 defaults to one hour so orphaned
// generations don't accumulate.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if prefix == "" {
		prefix = "farm-ledger"
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.client == nil {
		return false
	}
	return r.client.Ping(ctx).Err() == nil
}

func (r *Redis) generationKey() string {
	return r.prefix + ":attendance:gen"
}

// Generation returns the current flush generation, 0 before the first flush.
func (r *Redis) Generation(ctx context.Context) (int64, error) {
	gen, err := r.client.Get(ctx, r.generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (r *Redis) entryKey(gen int64, key Key) string {
	return fmt.Sprintf("%s:attendance:%d:%s", r.prefix, gen, key)
}

func (r *Redis) Get(ctx context.Context, key Key) ([]attendance.Record, bool, error) {
	gen, err := r.Generation(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("redis generation: %w", err)
	}

	raw, err := r.client.Get(ctx, r.entryKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var stored []redisRecord
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, false, fmt.Errorf("redis decode: %w", err)
	}
	records := make([]attendance.Record, 0, len(stored))
	for _, s := range stored {
		records = append(records, attendance.Record{
			WorkerID: key.WorkerID,
			Date:     s.Date,
			Status:   attendance.Status(s.Status),
		})
	}
	return records, true, nil
}

// Set writes under gen. A stale gen lands in an orphaned keyspace that no
// reader looks at.
func (r *Redis) Set(ctx context.Context, gen int64, key Key, records []attendance.Record) error {
	stored := make([]redisRecord, 0, len(records))
	for _, rec := range records {
		stored = append(stored, redisRecord{Date: rec.Date, Status: string(rec.Status)})
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.entryKey(gen, key), raw, r.ttl).Err()
}

func (r *Redis) Flush(ctx context.Context) error {
	return r.client.Incr(ctx, r.generationKey()).Err()
}
