package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/eduflow-api/internal/bootstrap"
	"github.com/noah-isme/eduflow-api/pkg/cache"
	"github.com/noah-isme/eduflow-api/pkg/config"
	"github.com/noah-isme/eduflow-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx := context.Background()

	var redisClient *redis.Client
	if cfg.Store.Driver == config.StoreDriverRedis {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect redis", "error", err)
		}
		defer redisClient.Close() //nolint:errcheck
	}

	store, db, err := bootstrap.OpenStore(ctx, cfg, redisClient)
	if err != nil {
		logr.Sugar().Fatalw("failed to open store", "driver", cfg.Store.Driver, "error", err)
	}
	if db != nil {
		defer db.Close() //nolint:errcheck
	}

	a := &admin{
		store:  store,
		out:    os.Stdout,
		errOut: os.Stderr,
		logger: logr,
		topN:   cfg.Finance.TopN,
	}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		logr.Sugar().Errorw("command failed", "error", err)
		os.Exit(1)
	}
}
