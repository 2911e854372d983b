package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/KirkDiggler/tactics-engine/internal/config"
	"github.com/KirkDiggler/tactics-engine/internal/content"
	"github.com/KirkDiggler/tactics-engine/internal/errors"
	"github.com/KirkDiggler/tactics-engine/internal/repositories/outcomes"
	"github.com/KirkDiggler/tactics-engine/internal/telemetry"
)

// appOptions are the flags shared by every command
type appOptions struct {
	seed        int64
	contentPath string
}

// app is everything a command needs once configuration is loaded
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	catalog *content.Catalog
	journal outcomes.Repository
	seed    int64

	redis    *redis.Client
	shutdown telemetry.Shutdown
}

func newApp(ctx context.Context, opts *appOptions) (*app, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.contentPath != "" {
		cfg.Engine.ContentPath = opts.contentPath
	}
	if opts.seed != 0 {
		cfg.Engine.Seed = opts.seed
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		seed:   cfg.Engine.Seed,
	}
	if a.seed == 0 {
		a.seed = time.Now().UnixNano()
	}

	if a.shutdown, err = telemetry.Setup(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint); err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	}

	if a.catalog, err = loadCatalog(cfg.Engine.ContentPath); err != nil {
		return nil, err
	}

	a.journal = a.openJournal(ctx)
	return a, nil
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "LOG_LEVEL")
	}

	zcfg := zap.NewDevelopmentConfig()
	if cfg.Format == "json" {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = level

	logger, err := zcfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "building logger")
	}
	return logger, nil
}

func loadCatalog(path string) (*content.Catalog, error) {
	catalog, err := content.Default()
	if err != nil {
		return nil, errors.Wrap(err, "loading built-in content")
	}
	if path == "" {
		return catalog, nil
	}

	extra, err := content.LoadDir(path)
	if err != nil {
		return nil, err
	}
	catalog.Merge(extra)
	return catalog, nil
}

// openJournal connects to redis when configured and falls back to memory
func (a *app) openJournal(ctx context.Context) outcomes.Repository {
	if !a.cfg.JournalEnabled() {
		a.logger.Debug("no REDIS_URL, journaling in memory")
		return outcomes.NewInMemoryRepository()
	}

	opts, err := redis.ParseURL(a.cfg.Redis.URL)
	if err != nil {
		a.logger.Warn("invalid REDIS_URL, journaling in memory", zap.Error(err))
		return outcomes.NewInMemoryRepository()
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		a.logger.Warn("redis unreachable, journaling in memory", zap.Error(err))
		_ = client.Close()
		return outcomes.NewInMemoryRepository()
	}

	a.redis = client
	a.logger.Info("journaling outcomes to redis", zap.String("addr", opts.Addr))
	return outcomes.NewRedisRepository(&outcomes.RedisRepoConfig{
		Client: client,
		TTL:    a.cfg.Redis.JournalTTL,
	})
}

func (a *app) close(ctx context.Context) {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("closing redis", zap.Error(err))
		}
	}
	if a.shutdown != nil {
		if err := a.shutdown(ctx); err != nil {
			a.logger.Warn("flushing spans", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
