// Package redisstore persists a freqtable.Counter's binary serialization
// payload to Redis, the same metadata-hash-plus-blob-value pattern
// github.com/kwertop/gostatix uses for its Redis-backed bitsets and
// sketches (see bitset_redis.go, count_min_sketch_redis.go): a metadata
// hash records the parameters needed to reconstruct the structure, and a
// second key holds the raw bytes.
package redisstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kwertop/freqtable"
	"github.com/redis/go-redis/v9"
)

// Store saves and restores Counter snapshots under Redis keys.
type Store struct {
	client *redis.Client
}

// New wraps an existing *redis.Client. The caller owns the client's
// lifecycle (connection pool, TLS config, etc.) exactly as
// gostatix.MakeRedisClient leaves connection management to its caller.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Save writes counter's serialization payload to a Redis key and records
// its bucket count in a companion metadata hash at metadataKey, so a later
// Load can be driven purely from that single key.
func (s *Store) Save(ctx context.Context, metadataKey string, counter *Counter) error {
	data, err := counter.Export()
	if err != nil {
		return fmt.Errorf("freqtable/redisstore: error exporting counter: %w", err)
	}

	metadata := map[string]any{
		"buckets": counter.Buckets(),
	}
	if err := s.client.HSet(ctx, metadataKey, metadata).Err(); err != nil {
		return fmt.Errorf("freqtable/redisstore: error writing metadata: %w", err)
	}

	blobKey := blobKeyFor(metadataKey)
	if err := s.client.Set(ctx, blobKey, data, 0).Err(); err != nil {
		return fmt.Errorf("freqtable/redisstore: error writing payload: %w", err)
	}
	return nil
}

// Load reconstructs a Counter from the payload previously saved at
// metadataKey by Save.
func (s *Store) Load(ctx context.Context, metadataKey string) (*Counter, error) {
	values, err := s.client.HGetAll(ctx, metadataKey).Result()
	if err != nil {
		return nil, fmt.Errorf("freqtable/redisstore: error reading metadata: %w", err)
	}
	if _, err := strconv.Atoi(values["buckets"]); err != nil {
		return nil, fmt.Errorf("freqtable/redisstore: no counter stored at key %q", metadataKey)
	}

	blobKey := blobKeyFor(metadataKey)
	data, err := s.client.Get(ctx, blobKey).Bytes()
	if err != nil {
		return nil, fmt.Errorf("freqtable/redisstore: error reading payload: %w", err)
	}

	counter, err := Import(data)
	if err != nil {
		return nil, fmt.Errorf("freqtable/redisstore: error decoding payload: %w", err)
	}
	return counter, nil
}

func blobKeyFor(metadataKey string) string {
	return metadataKey + ":blob"
}

// Counter and Import are re-exported so callers of this package don't need
// a second import of the root package just to name the type they're
// passing to Save or receiving from Load.
type Counter = freqtable.Counter

var Import = freqtable.Import
