package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/cascaoconcurseiro/diariofinanceiro/internal/adapter/http"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/adapter/http/handler"
	postgresRepo "github.com/cascaoconcurseiro/diariofinanceiro/internal/adapter/repository/postgres"
	redisRepo "github.com/cascaoconcurseiro/diariofinanceiro/internal/adapter/repository/redis"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/domain"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/infrastructure/config"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/infrastructure/logger"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/infrastructure/metrics"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/infrastructure/postgres"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/infrastructure/redis"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx := context.Background()

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if cfg.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.DatabaseURL, "migrations", log); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	// Redis is optional; an empty REDIS_URL disables both the redis snapshot
	// backend and idempotency replay.
	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")
	}

	retrier := postgresRepo.NewRetrier(log)
	entryRepo := postgresRepo.NewEntryRepository(pool, retrier)

	var snapshots usecase.SnapshotStore
	switch cfg.SnapshotBackend {
	case "redis":
		if redisClient == nil {
			return fmt.Errorf("snapshot backend %q requires REDIS_URL", cfg.SnapshotBackend)
		}
		snapshots = redisRepo.NewSnapshotStore(redisClient)
	case "postgres":
		snapshots = postgresRepo.NewSnapshotRepository(pool, retrier)
	default:
		return fmt.Errorf("unknown snapshot backend %q", cfg.SnapshotBackend)
	}

	recalcAmount, err := domain.ParseMoney(cfg.FullRecalcAmount)
	if err != nil {
		return fmt.Errorf("parse FULL_RECALC_AMOUNT: %w", err)
	}

	engine := usecase.NewLedgerEngine(entryRepo, snapshots, postgresRepo.NewULIDGenerator(), log, usecase.Config{
		HorizonYears:         cfg.HorizonYears,
		FullRecalcAmount:     recalcAmount,
		FullRecalcSpanMonths: cfg.FullRecalcSpanMonths,
	})

	m := metrics.New()

	routerCfg := httpAdapter.RouterConfig{
		EntryHandler:   handler.NewEntryHandler(engine, m),
		LedgerHandler:  handler.NewLedgerHandler(engine, m),
		HealthHandler:  handler.NewHealthHandler(pool, redisClient),
		Logger:         log,
		Metrics:        m,
		IdempotencyTTL: cfg.IdempotencyTTL,
	}
	if redisClient != nil {
		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	stopStats := startPoolStats(pool, m)
	defer stopStats()

	stopIntegrity := startIntegritySweep(ctx, engine, m, cfg.IntegrityInterval, log)
	defer stopIntegrity()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info().Msg("server stopped")

	return nil
}

// startPoolStats samples connection pool usage into the gauge.
func startPoolStats(pool *pgxpool.Pool, m *metrics.Metrics) func() {
	done := make(chan struct{})
	ticker := time.NewTicker(15 * time.Second)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				m.DBConnections.Set(float64(pool.Stat().TotalConns()))
			}
		}
	}()

	return func() { close(done) }
}

// startIntegritySweep runs periodic background validation when an interval
// is configured.
func startIntegritySweep(ctx context.Context, engine *usecase.LedgerEngine, m *metrics.Metrics, interval time.Duration, log zerolog.Logger) func() {
	if interval <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				report, err := engine.ValidateIntegrity(ctx)
				if err != nil {
					log.Error().Err(err).Msg("background integrity check failed")
					continue
				}

				m.IntegrityChecks.Inc()
				m.IntegrityScore.Set(float64(report.Score))
				log.Info().
					Int("score", report.Score).
					Bool("valid", report.IsValid).
					Bool("corrected", report.CorrectionApplied).
					Msg("background integrity check")
			}
		}
	}()

	return func() { close(done) }
}
