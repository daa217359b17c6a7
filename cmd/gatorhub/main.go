// Package main is the entry point of the Gator Hub portal API.
//
// One process serves the JSON API, owns the persisted state record and runs
// the background jobs. Startup order:
//
//   - configuration, logging and the campus timezone
//   - metrics and the in-process event bus
//   - state storage (memory, Redis or PostgreSQL)
//   - state store, catalogs and the chat assistant
//   - readiness gate, scheduler and the HTTP server
//
// The HTTP server starts listening immediately; every /api/v1 route answers
// 503 until the gate has hydrated the store.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/gator-hub/gator-hub/config"
	chatapp "github.com/gator-hub/gator-hub/internal/application/chat"
	"github.com/gator-hub/gator-hub/internal/application/query"
	"github.com/gator-hub/gator-hub/internal/application/readiness"
	"github.com/gator-hub/gator-hub/internal/application/store"
	"github.com/gator-hub/gator-hub/internal/domain/catalog"
	"github.com/gator-hub/gator-hub/internal/domain/chat"
	"github.com/gator-hub/gator-hub/internal/infrastructure/external/anthropic"
	"github.com/gator-hub/gator-hub/internal/infrastructure/messaging"
	"github.com/gator-hub/gator-hub/internal/infrastructure/metrics"
	"github.com/gator-hub/gator-hub/internal/infrastructure/scheduler"
	"github.com/gator-hub/gator-hub/internal/infrastructure/scheduler/jobs"
	httpapi "github.com/gator-hub/gator-hub/internal/interface/http"
	"github.com/gator-hub/gator-hub/internal/interface/http/handlers"
	"github.com/gator-hub/gator-hub/pkg/circuitbreaker"
	"github.com/gator-hub/gator-hub/pkg/logger"
	"github.com/gator-hub/gator-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING & TIMEZONE
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	if err := timeutil.SetLocation(cfg.App.Timezone); err != nil {
		return err
	}
	log.Info("starting Gator Hub",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.String("timezone", timeutil.SchoolTZ.String()),
		logger.String("storage", cfg.Storage.Backend),
		logger.String("chat_strategy", cfg.Chat.Strategy),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. METRICS & EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	m := metrics.New(prometheus.DefaultRegisterer)

	busConfig := messaging.DefaultInMemoryEventBusConfig()
	busConfig.AsyncMode = true
	busConfig.Logger = log
	busConfig.Observer = m
	bus := messaging.NewInMemoryEventBus(busConfig)
	bus.Use(messaging.RecoveryMiddleware(log))
	bus.Use(messaging.LoggingMiddleware(log))
	if err := m.Subscribe(bus); err != nil {
		return fmt.Errorf("failed to subscribe metrics: %w", err)
	}
	defer func() {
		log.Info("closing event bus...")
		_ = bus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 4. STATE STORAGE
	// ─────────────────────────────────────────────────────────────────────────
	persistence, err := openBackend(ctx, cfg, m, log)
	if err != nil {
		return err
	}
	defer persistence.Close()

	// ─────────────────────────────────────────────────────────────────────────
	// 5. STORE & CATALOGS
	// ─────────────────────────────────────────────────────────────────────────
	storeConfig := store.DefaultConfig()
	if cfg.Storage.Key != "" {
		storeConfig.Key = cfg.Storage.Key
	}
	if cfg.Storage.WriteTimeout > 0 {
		storeConfig.WriteTimeout = cfg.Storage.WriteTimeout
	}
	st := store.New(persistence.storage, bus, log, storeConfig)
	st.Subscribe(m.ObserveState)

	catalogs := catalog.New(timeutil.Now())
	log.Info("catalogs built",
		logger.Time("reference_date", catalogs.BuiltAt()),
		logger.Int("resources", len(catalogs.Resources())),
		logger.Int("events", len(catalogs.Events())),
		logger.Int("news", len(catalogs.News())),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. CHAT ASSISTANT
	// ─────────────────────────────────────────────────────────────────────────
	resolver, err := setupResolver(cfg, m, log)
	if err != nil {
		return err
	}
	chatService := chatapp.NewService(st, resolver, catalogs, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. READINESS GATE
	// ─────────────────────────────────────────────────────────────────────────
	// A storage read failure does not fail the gate; the store serves
	// defaults and the persistence health check reports it.
	gate := readiness.New(st, bus, log, readiness.Config{
		InitDelay:   cfg.Gate.InitDelay,
		MaxAttempts: cfg.Gate.MaxAttempts,
		RetryDelay:  cfg.Gate.RetryDelay,
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 8. SCHEDULER
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.New(scheduler.Config{
		Logger:   log,
		Observer: m,
		Guard:    gate,
		Timezone: timeutil.SchoolTZ,
		Tick:     cfg.Scheduler.Tick,
		Clock:    time.Now,
	})
	if cfg.Features.IsEnabled(config.FeatureEventReminders) {
		job := jobs.NewEventReminderJob(catalogs, st, persistence.ledger, timeutil.Now, log)
		if err := sched.Register(job, scheduler.NewIntervalSchedule(cfg.Scheduler.EventRemindersInterval)); err != nil {
			return fmt.Errorf("failed to register %s: %w", job.Name(), err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	health := handlers.NewCompositeHealthChecker(cfg.App.Version)
	health.AddCheck("storage", handlers.NewPingCheck(persistence))
	health.AddCheck("readiness", handlers.NewGateCheck(gate))
	health.AddCheck("persistence", handlers.NewPersistenceCheck(st))

	server, err := httpapi.NewServer(httpapi.ConfigFrom(cfg), httpapi.Dependencies{
		Store:         st,
		Chat:          chatService,
		Catalog:       catalogs,
		Gate:          gate,
		HomeFeed:      query.NewGetHomeFeedHandler(st, catalogs),
		Notifications: query.NewGetNotificationsHandler(st),
		Jobs:          sched,
		Features:      cfg.Features,
		Gatherer:      prometheus.DefaultGatherer,
		HealthChecker: health,
		Clock:         timeutil.Now,
		Logger:        log,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. RUN
	// ─────────────────────────────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := gate.Run(gctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			// The API keeps answering 503 with the failed state.
			log.Error("readiness gate failed", logger.Err(err))
		}
		return nil
	})

	if cfg.Scheduler.Enabled {
		g.Go(func() error {
			select {
			case <-gate.Ready():
			case <-gctx.Done():
				return nil
			}
			return sched.Run(gctx)
		})
	}

	g.Go(func() error {
		return server.Run(gctx, cfg.App.ShutdownTimeout)
	})

	log.Info("Gator Hub is running", logger.String("address", cfg.HTTP.Addr))
	runErr := g.Wait()

	// ─────────────────────────────────────────────────────────────────────────
	// 11. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("shutting down...")
	flushCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if st.Dirty() {
		if err := st.Flush(flushCtx); err != nil {
			log.Error("failed to persist state on shutdown", logger.Err(err))
		}
	}
	bus.Wait()

	if runErr != nil {
		return runErr
	}
	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger builds the process logger and makes it the slog default.
func setupLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	if cfg.App.Debug {
		opts.Level = logger.LevelDebug
	}
	opts.JSON = cfg.Observability.LogFormat != "text"

	log := logger.New(opts)
	slog.SetDefault(log.Slog())
	return log
}

// setupResolver picks the reply strategy. The remote strategy needs an API
// key; its breaker state is exported as a metric.
func setupResolver(cfg *config.Config, m *metrics.Metrics, log *logger.Logger) (*chatapp.Resolver, error) {
	local := chat.NewLocalStrategy(cfg.Chat.LocalDelay)

	var remote chat.Strategy
	if cfg.Chat.APIKey != "" {
		client := anthropic.NewClient(anthropic.ClientConfig{
			APIKey:    cfg.Chat.APIKey,
			BaseURL:   cfg.Chat.BaseURL,
			Model:     cfg.Chat.Model,
			MaxTokens: int64(cfg.Chat.MaxTokens),
			Timeout:   cfg.Chat.Timeout,
			Logger:    log,
		})
		breaker := circuitbreaker.ChatBackendBreaker(
			cfg.Chat.CircuitBreakerThreshold,
			cfg.Chat.CircuitBreakerTimeout,
			func(name string, from, to circuitbreaker.State) {
				log.Warn("circuit breaker state changed",
					logger.String("breaker", name),
					logger.String("from", from.String()),
					logger.String("to", to.String()),
				)
				m.SetCircuitOpen(name, to == circuitbreaker.StateOpen)
			},
		)
		remote = anthropic.NewRemoteStrategy(client, breaker, m, log)
	}

	strategy, err := chatapp.SelectStrategy(chat.StrategyName(cfg.Chat.Strategy), local, remote)
	if err != nil {
		return nil, fmt.Errorf("failed to select chat strategy: %w", err)
	}
	return chatapp.NewResolver(strategy, m, log), nil
}
