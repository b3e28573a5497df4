// Package bootstrap wires the curator's components together for the
// HTTP server entrypoint.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/curator/internal/api"
	"github.com/jonesrussell/north-cloud/curator/internal/config"
	"github.com/jonesrussell/north-cloud/curator/internal/logger"
	"github.com/jonesrussell/north-cloud/curator/internal/metrics"
	"github.com/jonesrussell/north-cloud/curator/internal/parser"
	"github.com/jonesrussell/north-cloud/curator/internal/pipeline"
	"github.com/jonesrussell/north-cloud/curator/internal/source"
	"github.com/jonesrussell/north-cloud/curator/internal/store"
)

const defaultHTTPTimeout = 30 * time.Second

// Components holds everything the HTTP entrypoint needs to run and
// shut down cleanly.
type Components struct {
	DB      *sqlx.DB
	Redis   *redis.Client
	Server  *api.Server
	Logger  logger.Logger
	Metrics *metrics.Metrics
}

// NewComponents creates all components for the HTTP server.
func NewComponents(cfg *config.Config, log logger.Logger) (*Components, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	comps := &Components{Logger: log, Metrics: m}

	configs, err := comps.setupStorage(cfg, log)
	if err != nil {
		return nil, err
	}

	src := source.NewClient(source.Config{
		BaseURL:   cfg.Source.BaseURL,
		Timeout:   cfg.Source.Timeout,
		RateLimit: cfg.Source.RateLimit,
		Burst:     cfg.Source.Burst,
	}, log)

	feedPipeline := pipeline.New(src, log, m, pipeline.Options{
		FetchLimit: cfg.Pipeline.FetchLimit,
		BatchSize:  cfg.Pipeline.BatchSize,
		ContextTTL: cfg.Pipeline.ContextTTL,
	})

	ready := comps.readyChecks(src)
	handler := api.NewHandler(configs, parser.New(log), feedPipeline, cfg.Pipeline.UserDID, m, log, ready...)

	comps.Server = api.NewServer(handler, api.ServerConfig{
		Port:         cfg.Service.Port,
		ReadTimeout:  defaultHTTPTimeout,
		WriteTimeout: defaultHTTPTimeout,
		Debug:        cfg.Service.Debug,
	}, registry, log)

	return comps, nil
}

// setupStorage builds the configured ConfigStore, layering the Redis
// cache on top when enabled.
func (c *Components) setupStorage(cfg *config.Config, log logger.Logger) (store.ConfigStore, error) {
	var backing store.ConfigStore

	switch cfg.Service.Storage {
	case config.StorageMemory:
		log.Info("using in-memory feed config store")
		backing = store.NewMemoryStore()

	case config.StoragePostgres:
		db, err := store.NewPostgresConnection(store.PostgresConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.Database,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			return nil, fmt.Errorf("setup database: %w", err)
		}
		c.DB = db
		backing = store.NewFeedConfigRepository(db)
		log.Info("connected to postgres",
			logger.String("host", cfg.Database.Host),
			logger.String("database", cfg.Database.Database))

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Service.Storage)
	}

	if !cfg.Redis.Enabled {
		return backing, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})
	c.Redis = client
	log.Info("feed config cache enabled",
		logger.String("addr", cfg.Redis.Addr),
		logger.Duration("ttl", cfg.Redis.CacheTTL))

	return store.NewCachedStore(backing, client, cfg.Redis.CacheTTL, log), nil
}

// readyChecks assembles the dependency probes for /ready.
func (c *Components) readyChecks(src *source.Client) []api.ReadyChecker {
	checks := []api.ReadyChecker{
		func(ctx context.Context) error {
			_, err := src.Health(ctx)
			return err
		},
	}
	if c.DB != nil {
		db := c.DB
		checks = append(checks, func(ctx context.Context) error {
			return db.PingContext(ctx)
		})
	}
	if c.Redis != nil {
		rdb := c.Redis
		checks = append(checks, func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	return checks
}

// Close releases held connections.
func (c *Components) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("redis close failed", logger.Error(err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Warn("database close failed", logger.Error(err))
		}
	}
}
