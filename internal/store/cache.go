package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache holds encoded snapshots by key. Clear drops every snapshot at once
// and advances the generation, so a snapshot fetched before a Clear can never
// be stored after it.
type Cache interface {
	// Get returns the snapshot stored under key; ok is false on a miss.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	// Generation returns the current generation. Read it before fetching the
	// data passed to Set.
	Generation(ctx context.Context) (uint64, error)
	// Set stores data under key if the generation is still gen and reports
	// whether it did.
	Set(ctx context.Context, key string, data []byte, gen uint64) (bool, error)
	Clear(ctx context.Context) error
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu    sync.RWMutex
	gen   uint64
	items map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string][]byte)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.items[key]
	return data, ok, nil
}

func (m *MemoryCache) Generation(_ context.Context) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gen, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, data []byte, gen uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return false, nil
	}
	m.items[key] = data
	return true, nil
}

func (m *MemoryCache) Clear(_ context.Context) error {
	m.mu.Lock()
	m.items = make(map[string][]byte)
	m.gen++
	m.mu.Unlock()
	return nil
}

// snapshotTTL bounds how long an abandoned snapshot survives in Redis.
const snapshotTTL = 5 * time.Minute

// RedisCache shares snapshots between terminals. All snapshots live in one
// hash so Clear is a single DEL; the generation is a counter next to it that
// every terminal's Set is checked against.
type RedisCache struct {
	client *redis.Client
	key    string
	genKey string
}

// NewRedisCache stores snapshots in the hash named key and the generation in
// key + ":gen".
func NewRedisCache(client *redis.Client, key string) *RedisCache {
	return &RedisCache{client: client, key: key, genKey: key + ":gen"}
}

func (r *RedisCache) Get(ctx context.Context, field string) ([]byte, bool, error) {
	data, err := r.client.HGet(ctx, r.key, field).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis hget %s: %w", field, err)
	}
	return data, true, nil
}

func (r *RedisCache) Generation(ctx context.Context) (uint64, error) {
	gen, err := generation(ctx, r.client, r.genKey)
	if err != nil {
		return 0, fmt.Errorf("redis get %s: %w", r.genKey, err)
	}
	return gen, nil
}

// Set watches the generation key, so a Clear from any terminal between the
// check and the write aborts the transaction.
func (r *RedisCache) Set(ctx context.Context, field string, data []byte, gen uint64) (bool, error) {
	stored := false
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := generation(ctx, tx, r.genKey)
		if err != nil {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, r.key, field, data)
			pipe.Expire(ctx, r.key, snapshotTTL)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, r.genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis hset %s: %w", field, err)
	}
	return stored, nil
}

func (r *RedisCache) Clear(ctx context.Context) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key)
		pipe.Incr(ctx, r.genKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// getter is satisfied by *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func generation(ctx context.Context, c getter, key string) (uint64, error) {
	gen, err := c.Get(ctx, key).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}
