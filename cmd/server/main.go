package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"simple-chat/internal/config"
	"simple-chat/internal/health"
	"simple-chat/internal/logging"
	"simple-chat/internal/server"
	"simple-chat/internal/session"
	"simple-chat/internal/tracing"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

// run owns every resource so that its defers flush the logger, stop the
// tracer and close redis before main exits.
func run() error {
	// 1. Config & Flags
	configFlag := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(config.DeterminePath(*configFlag))
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return err
	}

	// 2. Logger
	logger, err := logging.New(logging.Config{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		FilePath:   cfg.Logger.FilePath,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAgeDays: cfg.Logger.MaxAgeDays,
	})
	if err != nil {
		log.Printf("failed to build logger: %v", err)
		return err
	}
	defer logger.Sync()

	// 3. Tracing
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(context.Background(), tracing.Config{
			ServiceName: cfg.App.Name,
			Environment: cfg.App.Env,
			Endpoint:    cfg.Tracing.Endpoint,
			SampleRatio: cfg.Tracing.SampleRatio,
		})
		if err != nil {
			logger.Errorw("failed to init tracer", "error", err)
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				logger.Warnw("tracer shutdown failed", "error", err)
			}
		}()
		logger.Infow("tracing enabled", "endpoint", cfg.Tracing.Endpoint)
	}

	// 4. Session store
	sessions, checks, closeStore, err := openSessionStore(cfg, logger)
	if err != nil {
		logger.Errorw("failed to open session store", "store", cfg.Session.Store, "error", err)
		return err
	}
	defer closeStore()

	// 5. Stores, services, routes
	app, err := server.Wire(cfg, sessions, checks, logger)
	if err != nil {
		logger.Errorw("failed to wire application", "error", err)
		return err
	}

	if err := app.Run(app.Mount()); err != nil {
		logger.Errorw("server stopped with error", "error", err)
		return err
	}
	return nil
}

func openSessionStore(cfg *config.Config, logger *zap.SugaredLogger) (session.Store, map[string]health.Check, func(), error) {
	if cfg.Session.Store != "redis" {
		logger.Infow("using in-memory sessions")
		return session.NewMemoryStore(cfg.Session.TTL), nil, func() {}, nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		_ = redisClient.Close()
		return nil, nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	logger.Infow("connected to redis", "addr", cfg.Redis.Addr)

	checks := map[string]health.Check{
		"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}

	return session.NewRedisStore(redisClient, cfg.Session.TTL), checks, func() {
		if err := redisClient.Close(); err != nil {
			logger.Warnw("failed to close redis client", "error", err)
		}
	}, nil
}
