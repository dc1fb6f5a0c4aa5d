// Copyright (c) 2026 ToeiRei
// Keyledger - key custody tracker
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces Keyledger keys in a shared Redis.
const DefaultRedisPrefix = "keyledger"

// RedisStore persists each collection as one Redis string.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to the redis:// URL in dsn and verifies the
// connection with a PING.
func NewRedisStore(dsn, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid redis dsn: %w", err)
	}
	return newRedisStoreWithClient(redis.NewClient(opts), prefix)
}

func newRedisStoreWithClient(client *redis.Client, prefix string) (*RedisStore, error) {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	dbLogf("db: connected to redis %s (prefix %q)", client.Options().Addr, prefix)
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) key(name string) string {
	return s.prefix + ":" + name
}

// Load returns the payload of the named collection.
func (s *RedisStore) Load(ctx context.Context, name string) ([]byte, bool, error) {
	b, err := s.client.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", name, err)
	}
	return b, true, nil
}

// Save replaces the named collection.
func (s *RedisStore) Save(ctx context.Context, name string, payload []byte) error {
	if err := s.client.Set(ctx, s.key(name), payload, 0).Err(); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

// Remove deletes the named collection.
func (s *RedisStore) Remove(ctx context.Context, name string) error {
	if err := s.client.Del(ctx, s.key(name)).Err(); err != nil {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

// Close closes the client connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
