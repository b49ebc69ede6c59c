package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/eduflow-api/pkg/config"
)

const pingTimeout = 5 * time.Second

// NewRedis returns a configured Redis client. The same client backs the
// dashboard cache and, when STORE_DRIVER=redis, the entity store.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  pingTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}
