// Package bootstrap assembles process-level dependencies shared by the API
// server and the admin CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/eduflow-api/pkg/config"
	"github.com/noah-isme/eduflow-api/pkg/database"
	"github.com/noah-isme/eduflow-api/pkg/kvstore"
)

// OpenStore selects the key-value backend named by STORE_DRIVER. The returned
// *sqlx.DB is non-nil only for the postgres driver and must be closed by the caller.
func OpenStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (kvstore.Store, *sqlx.DB, error) {
	switch cfg.Store.Driver {
	case "", config.StoreDriverMemory:
		return kvstore.NewMemoryStore(), nil, nil
	case config.StoreDriverRedis:
		if redisClient == nil {
			return nil, nil, errors.New("redis client not configured")
		}
		return kvstore.NewRedisStore(redisClient, cfg.Store.Namespace), nil, nil
	case config.StoreDriverPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		pg, err := kvstore.NewPostgresStore(db, cfg.Store.Table)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return pg, db, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
