package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoRecord is returned by a KV when no value exists under the key.
var ErrNoRecord = errors.New("session: no record")

// KV is the persistence port of the session store. A session is always one
// value under one key, so a KV with atomic Set/Del is enough to keep the
// principal/role/token triple consistent.
type KV interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
}

// RedisKV backs sessions with Redis so they survive dashboard restarts.
type RedisKV struct {
	client redis.UniversalClient
}

func NewRedisKV(addr, password string) *RedisKV {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	return &RedisKV{client: rdb}
}

func (r *RedisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoRecord
	}
	return val, err
}

func (r *RedisKV) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// MemKV is an in-process KV used in tests and when no Redis address is
// configured. Sessions then last only as long as the process.
type MemKV struct {
	mu   sync.RWMutex
	data map[string]memEntry
}

type memEntry struct {
	value     string
	expiresAt time.Time
}

func NewMemKV() *MemKV {
	return &MemKV{data: make(map[string]memEntry)}
}

func (m *MemKV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memEntry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	m.data[key] = e
	return nil
}

func (m *MemKV) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	e, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return "", ErrNoRecord
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.data, key)
		m.mu.Unlock()
		return "", ErrNoRecord
	}
	return e.value, nil
}

func (m *MemKV) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
