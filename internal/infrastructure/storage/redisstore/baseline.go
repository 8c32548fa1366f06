// Package redisstore keeps sequence baselines in Redis so that several BFF
// instances behind one load balancer share the same fallback.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	corenumerator "inventra/internal/core/numerator"
)

// DefaultNamespace prefixes every key.
const DefaultNamespace = "inventra:"

// Ensure compile-time interface compliance.
var _ corenumerator.BaselineStore = (*BaselineStore)(nil)

// Options configures the Redis connection.
type Options struct {
	Addr      string
	Password  string
	DB        int
	Namespace string
}

// BaselineStore implements corenumerator.BaselineStore on plain string keys.
type BaselineStore struct {
	rdb       redis.Cmdable
	namespace string
}

// New wraps an existing client.
func New(rdb redis.Cmdable, namespace string) *BaselineStore {
	return &BaselineStore{rdb: rdb, namespace: namespace}
}

// Connect creates a client and checks it with PING.
func Connect(ctx context.Context, opts Options) (*BaselineStore, *redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     10,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	ns := opts.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	return New(rdb, ns), rdb, nil
}

func (s *BaselineStore) key(k string) string {
	return s.namespace + k
}

// Load implements corenumerator.BaselineStore.
func (s *BaselineStore) Load(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

// Save implements corenumerator.BaselineStore. Baselines never expire.
func (s *BaselineStore) Save(ctx context.Context, key, code string) error {
	if err := s.rdb.Set(ctx, s.key(key), code, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete implements corenumerator.BaselineStore.
func (s *BaselineStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
