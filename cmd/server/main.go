package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/fintrack/internal/adapter/http"
	"github.com/iho/fintrack/internal/adapter/http/handler"
	"github.com/iho/fintrack/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/fintrack/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/fintrack/internal/adapter/repository/redis"
	"github.com/iho/fintrack/internal/infrastructure/auth"
	"github.com/iho/fintrack/internal/infrastructure/config"
	"github.com/iho/fintrack/internal/infrastructure/eventpublisher"
	"github.com/iho/fintrack/internal/infrastructure/logger"
	"github.com/iho/fintrack/internal/infrastructure/metrics"
	"github.com/iho/fintrack/internal/infrastructure/postgres"
	"github.com/iho/fintrack/internal/infrastructure/redis"
	"github.com/iho/fintrack/internal/usecase"
)

const limiterIdleTTL = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.Connect(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: 5 * time.Second,
	}, cfg.DatabaseTimeout, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.Connect(ctx, cfg.RedisURL, cfg.DatabaseTimeout, log)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	var outboxRepo usecase.OutboxRepository = postgresRepo.NewDiscardOutbox()
	if cfg.OutboxEnabled {
		outboxRepo = postgresRepo.NewOutboxRepository(pool)
	}

	// Initialize use cases
	policy := cfg.Policy()
	reconciler := usecase.NewReconciliationUseCase(txManager, accountRepo, transactionRepo, outboxRepo, auditRepo, idGen, policy, m)
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, outboxRepo, auditRepo, idGen, m)
	transactionUC := usecase.NewTransactionUseCase(txManager, accountRepo, transactionRepo, reconciler, outboxRepo, auditRepo, idGen, policy, m)
	statisticsUC := usecase.NewStatisticsUseCase(accountRepo, transactionRepo, cfg.Location(), m)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(accountUC, reconciler),
		TransactionHandler: handler.NewTransactionHandler(transactionUC, cfg.Location()),
		StatisticsHandler:  handler.NewStatisticsHandler(statisticsUC),
		HealthHandler:      handler.NewHealthHandler(readinessChecks(pool, redisClient)),
		TokenVerifier:      auth.NewJWTManager(cfg.JWTSecret),
		IdempotencyStore:   redisRepo.NewIdempotencyStore(redisClient),
		IdempotencyTTL:     cfg.IdempotencyTTL,
		RateLimiter:        rateLimiter,
		Logger:             log,
		Metrics:            m,
		HTTPMetrics:        middleware.NewHTTPMetrics(reg),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	if cfg.OutboxEnabled {
		worker := eventpublisher.NewWorker(eventpublisher.Config{
			OutboxRepo: outboxRepo,
			Publisher:  redisRepo.NewEventPublisher(redisClient, cfg.EventsChannel),
			Logger:     log,
			Metrics:    m,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxInterval,
		})
		go func() {
			if err := worker.Start(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("outbox worker stopped")
			}
		}()
	}

	go cleanupLimiters(workerCtx, rateLimiter, limiterIdleTTL, log)

	server := newHTTPServer(cfg, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")
	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

func readinessChecks(pool pinger, client goredis.UniversalClient) map[string]handler.Check {
	return map[string]handler.Check{
		"postgres": pool.Ping,
		"redis": func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
	}
}

func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter, idle time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(idle)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := rl.CleanupLimiters(idle); removed > 0 {
				log.Debug().Int("removed", removed).Msg("dropped idle rate limiters")
			}
		}
	}
}
