package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gator-hub/gator-hub/config"
	"github.com/gator-hub/gator-hub/internal/application/store"
	"github.com/gator-hub/gator-hub/internal/infrastructure/metrics"
	"github.com/gator-hub/gator-hub/internal/infrastructure/persistence/memory"
	"github.com/gator-hub/gator-hub/internal/infrastructure/persistence/postgres"
	"github.com/gator-hub/gator-hub/internal/infrastructure/persistence/redis"
	"github.com/gator-hub/gator-hub/internal/infrastructure/persistence/resilient"
	"github.com/gator-hub/gator-hub/internal/infrastructure/scheduler/jobs"
	"github.com/gator-hub/gator-hub/pkg/circuitbreaker"
	"github.com/gator-hub/gator-hub/pkg/logger"
	"github.com/gator-hub/gator-hub/pkg/retry"
)

// backend bundles the state storage with the reminder ledger of the same
// backing service.
type backend struct {
	storage store.Storage
	ledger  jobs.ReminderLedger
	pinger  resilient.Pinger
	closers []func()
}

// Ping reports connectivity of the backing service.
func (b *backend) Ping(ctx context.Context) error {
	if b.pinger == nil {
		return nil
	}
	return b.pinger.Ping(ctx)
}

// Close releases connections in reverse order of opening.
func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackend connects the configured storage backend. Remote backends are
// dialed with retries and wrapped in a circuit breaker.
func openBackend(ctx context.Context, cfg *config.Config, m *metrics.Metrics, log *logger.Logger) (*backend, error) {
	onRetry := func(attempt int, err error, delay time.Duration) {
		log.Warn("storage connect failed, retrying",
			logger.String("backend", cfg.Storage.Backend),
			logger.Int("attempt", attempt),
			logger.Duration("delay", delay),
			logger.Err(err),
		)
	}
	onBreaker := func(name string, from, to circuitbreaker.State) {
		log.Warn("circuit breaker state changed",
			logger.String("breaker", name),
			logger.String("from", from.String()),
			logger.String("to", to.String()),
		)
		m.SetCircuitOpen(name, to == circuitbreaker.StateOpen)
	}

	switch cfg.Storage.Backend {
	case config.StorageMemory, "":
		storage := memory.NewStorage()
		log.Info("using in-memory state storage")
		return &backend{
			storage: storage,
			ledger:  memory.NewReminderLedger(),
			pinger:  storage,
		}, nil

	case config.StorageRedis:
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.URL = cfg.Redis.URL
		if cfg.Redis.Host != "" {
			redisCfg.Host = cfg.Redis.Host
		}
		if cfg.Redis.Port > 0 {
			redisCfg.Port = cfg.Redis.Port
		}
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		if cfg.Redis.PoolSize > 0 {
			redisCfg.PoolSize = cfg.Redis.PoolSize
		}
		if cfg.Redis.MinIdleConns > 0 {
			redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		}
		if cfg.Redis.DialTimeout > 0 {
			redisCfg.DialTimeout = cfg.Redis.DialTimeout
		}
		if cfg.Redis.ReadTimeout > 0 {
			redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		}
		if cfg.Redis.WriteTimeout > 0 {
			redisCfg.WriteTimeout = cfg.Redis.WriteTimeout
		}

		var cache *redis.Cache
		err := retry.ConnectRetrier(onRetry).Do(ctx, func(ctx context.Context) error {
			c, err := redis.NewCache(redisCfg)
			if err != nil {
				return err
			}
			cache = c
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Info("Redis connection established")

		stateStorage := redis.NewStateStorage(cache)
		return &backend{
			storage: resilient.New(stateStorage, onBreaker, resilient.WithLogger(log.Slog())),
			ledger:  redis.NewReminderLedger(cache),
			pinger:  stateStorage,
			closers: []func(){func() {
				log.Info("closing Redis connection...")
				_ = cache.Close()
			}},
		}, nil

	case config.StoragePostgres:
		log.Info("connecting to database...")
		pgCfg := postgres.DefaultConfig()
		pgCfg.URL = cfg.Database.URL
		if cfg.Database.MaxConns > 0 {
			pgCfg.MaxConns = int32(cfg.Database.MaxConns)
		}
		if cfg.Database.MinConns > 0 {
			pgCfg.MinConns = int32(cfg.Database.MinConns)
		}
		if cfg.Database.ConnMaxLifetime > 0 {
			pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
		}
		if cfg.Database.ConnMaxIdleTime > 0 {
			pgCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime
		}

		var conn *postgres.Connection
		err := retry.ConnectRetrier(onRetry).Do(ctx, func(ctx context.Context) error {
			c, err := postgres.NewConnection(ctx, pgCfg)
			if err != nil {
				return err
			}
			conn = c
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Info("database connection established")

		closeConn := func() {
			log.Info("closing database connection...")
			conn.Close()
		}

		if cfg.Database.AutoMigrate {
			applied, err := postgres.NewMigrator(conn).Migrate(ctx)
			if err != nil {
				closeConn()
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
			log.Info("database schema is up to date", logger.Int("applied", applied))
		}

		return &backend{
			storage: resilient.New(postgres.NewStateRepository(conn), onBreaker, resilient.WithLogger(log.Slog())),
			ledger:  postgres.NewReminderRepository(conn),
			pinger:  conn,
			closers: []func(){closeConn},
		}, nil
	}

	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}
