package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/ZaguanLabs/gotmemo"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKeyPrefix is prepended to every key written by RedisStore.
const DefaultRedisKeyPrefix = "gotmemo:"

// RedisStore is a Redis-backed translation store. Records are stored as JSON
// without expiry.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds configuration for the Redis store.
type RedisConfig struct {
	URL       string // Redis connection URL (e.g., "redis://localhost:6379/0")
	KeyPrefix string // Prefix for all keys (default: "gotmemo:")
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewRedisStoreFromClient(client, cfg.KeyPrefix), nil
}

// NewRedisStoreFromClient creates a RedisStore from an existing Redis client.
func NewRedisStoreFromClient(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = DefaultRedisKeyPrefix
	}

	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get retrieves a record from Redis.
func (s *RedisStore) Get(ctx context.Context, key string) (Record, bool, error) {
	val, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, &gotmemo.StoreError{Op: "get", Key: key, Cause: err}
	}

	var rec Record
	if err := json.Unmarshal(val, &rec); err != nil {
		return Record{}, false, &gotmemo.StoreError{Op: "decode", Key: key, Cause: err}
	}
	return rec, true, nil
}

// Put stores a record in Redis.
func (s *RedisStore) Put(ctx context.Context, key string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return &gotmemo.StoreError{Op: "encode", Key: key, Cause: err}
	}
	if err := s.client.Set(ctx, s.keyPrefix+key, string(data), 0).Err(); err != nil {
		return &gotmemo.StoreError{Op: "put", Key: key, Cause: err}
	}
	return nil
}

// Records scans every key under the prefix and returns the decoded records.
func (s *RedisStore) Records(ctx context.Context) ([]KeyedRecord, error) {
	var keys []string
	var cursor uint64
	for {
		page, next, err := s.client.Scan(ctx, cursor, s.keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, &gotmemo.StoreError{Op: "list", Cause: err}
		}
		keys = append(keys, page...)
		if next == 0 {
			break
		}
		cursor = next
	}
	sort.Strings(keys)

	result := make([]KeyedRecord, 0, len(keys))
	for _, fullKey := range keys {
		key := strings.TrimPrefix(fullKey, s.keyPrefix)
		rec, ok, err := s.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Deleted between SCAN and GET.
			continue
		}
		result = append(result, KeyedRecord{Key: key, Record: rec})
	}
	return result, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping tests the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Verify RedisStore implements Lister
var _ Lister = (*RedisStore)(nil)
