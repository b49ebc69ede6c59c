package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists each document as a plain Redis string.
type RedisStore struct {
	client    redis.Cmdable
	namespace string
}

// NewRedisStore builds a store on top of an existing client. Keys are
// prefixed with namespace when it is not empty.
func NewRedisStore(client redis.Cmdable, namespace string) *RedisStore {
	return &RedisStore{client: client, namespace: namespace}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return raw, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) key(key string) string {
	if s.namespace == "" {
		return key
	}
	return s.namespace + ":" + key
}
