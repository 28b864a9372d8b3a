package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	answerservice "qaboard/contexts/community-experience/answer-service"
	postgresadapter "qaboard/contexts/community-experience/answer-service/adapters/postgres"
	"qaboard/contexts/community-experience/answer-service/application/workers"
	"qaboard/contexts/community-experience/answer-service/ports"
	"qaboard/internal/platform/config"
	"qaboard/internal/platform/db"
	"qaboard/internal/platform/httpserver"
	"qaboard/internal/platform/messaging"

	"golang.org/x/sync/errgroup"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const poolStatsInterval = 15 * time.Second

type APIApp struct {
	server          *httpserver.Server
	metrics         *httpserver.Metrics
	postgres        *db.Postgres
	redis           *messaging.RedisPublisher
	relay           *workers.EventRelay
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

func BuildAPI(ctx context.Context, cfg config.Config) (*APIApp, error) {
	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(ctx, cfg.PostgresDSN, db.DefaultOptions())
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	if err := repo.Migrate(ctx); err != nil {
		_ = pg.Close()
		return nil, err
	}

	app := &APIApp{
		postgres:        pg,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}

	var events ports.EventPublisher
	if cfg.EnableAnswerEvents {
		bus := messaging.NewBus(256, logger)
		events = bus
		if cfg.RedisAddr != "" {
			redisPublisher, err := messaging.NewRedisPublisher(ctx, messaging.RedisOptions{
				Addr:          cfg.RedisAddr,
				Password:      cfg.RedisPassword,
				DB:            cfg.RedisDB,
				ChannelPrefix: cfg.ServiceName + ".",
			}, logger)
			if err != nil {
				_ = app.Close()
				return nil, err
			}
			app.redis = redisPublisher
			app.relay = &workers.EventRelay{
				Subscriber: bus,
				Publisher:  redisPublisher,
				Logger:     logger,
			}
		}
	}

	module := answerservice.NewModule(answerservice.Dependencies{
		Answers:         repo,
		Questions:       repo,
		Users:           repo,
		Events:          events,
		Clock:           postgresadapter.SystemClock{},
		IDGen:           postgresadapter.UUIDGenerator{},
		DefaultPageSize: cfg.AnswerPageSize,
		Logger:          logger,
	})

	app.metrics = httpserver.NewMetrics("qaboard")
	app.server = httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort), httpserver.Options{
		Metrics: app.metrics,
		Health:  pg.Ping,
	})
	return app, nil
}

// Run serves until ctx is cancelled or a component fails, then shuts the
// HTTP server down within the configured timeout.
func (a *APIApp) Run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)

	if a.relay != nil {
		if err := a.relay.Start(groupCtx); err != nil {
			return err
		}
	}

	group.Go(a.server.Start)
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.timeout())
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})
	group.Go(func() error {
		a.samplePoolStats(groupCtx)
		return nil
	})

	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"events_relayed", a.relay != nil,
	)
	return group.Wait()
}

func (a *APIApp) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.postgres != nil {
		errs = append(errs, a.postgres.Close())
	}
	return errors.Join(errs...)
}

func (a *APIApp) samplePoolStats(ctx context.Context) {
	if a.postgres == nil || a.metrics == nil {
		return
	}
	sqlDB, err := a.postgres.DB.DB()
	if err != nil {
		return
	}
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()
	for {
		a.metrics.RecordDBPoolStats(sqlDB.Stats())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (a *APIApp) timeout() time.Duration {
	if a.shutdownTimeout <= 0 {
		return 10 * time.Second
	}
	return a.shutdownTimeout
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
