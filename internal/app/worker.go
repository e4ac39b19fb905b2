package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/reputation-service/internal/config"
	"github.com/utafrali/reputation-service/internal/event"
	"github.com/utafrali/reputation-service/internal/migrations"
	"github.com/utafrali/reputation-service/internal/push"
	"github.com/utafrali/reputation-service/internal/repository/postgres"
	"github.com/utafrali/reputation-service/internal/service"
	"github.com/utafrali/reputation-service/internal/signer"
	"github.com/utafrali/reputation-service/pkg/database"
	"github.com/utafrali/reputation-service/pkg/health"
	pkgkafka "github.com/utafrali/reputation-service/pkg/kafka"
)

const idempotencyTTL = 24 * time.Hour

// Worker runs the push delivery consumer plus a small operational HTTP
// server for health probes and metrics.
type Worker struct {
	cfg      *config.Config
	logger   *slog.Logger
	pool     *pgxpool.Pool
	redis    *redis.Client
	consumer *pkgkafka.Consumer
	opsSrv   *http.Server

	tracerShutdown func(context.Context) error
}

// NewWorker creates the push worker with all dependencies wired.
func NewWorker(cfg *config.Config, logger *slog.Logger) (*Worker, error) {
	if !cfg.PushEnabled() {
		return nil, fmt.Errorf("push worker requires PUSH_URLS, SIGNING_ADDRESS and SIGNING_KEY")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tracerShutdown, err := initTracing(ctx, cfg, "reputation-worker")
	if err != nil {
		return nil, err
	}

	pool, err := connectPostgres(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	reputationService := service.NewReputationService(postgres.NewReviewRepository(pool), logger)

	httpClient := &http.Client{Timeout: 15 * time.Second}
	deliverer := push.NewDeliverer(
		httpClient,
		signer.NewHMACSigner(cfg.SigningAddress, []byte(cfg.SigningKey)),
		logger,
	)
	deliverers := map[string]event.Pusher{cfg.PushCredentialRef: deliverer}

	pushHandler := event.NewPushHandler(reputationService, deliverers, logger)

	// Redis-backed idempotency when configured, in-memory otherwise.
	var (
		redisClient *redis.Client
		store       pkgkafka.IdempotencyStore
	)
	if cfg.RedisHost != "" {
		redisClient, err = database.NewRedisClient(ctx, database.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		store = pkgkafka.NewRedisIdempotencyStore(redisClient, "reputation-worker", idempotencyTTL)
		logger.Info("redis idempotency store initialized",
			slog.String("host", cfg.RedisHost), slog.Int("port", cfg.RedisPort))
	} else {
		store = pkgkafka.NewMemoryIdempotencyStore(idempotencyTTL)
		logger.Warn("no redis configured, using in-memory idempotency store")
	}

	consumer := pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   event.TopicPushRequested,
		GroupID: cfg.ConsumerGroup,
	}, pkgkafka.IdempotentHandler(store, pushHandler, logger), logger)

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", pool.Ping)
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
	})
	if redisClient != nil {
		healthHandler.Register("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	mux := http.NewServeMux()
	mux.Handle("/health/live", healthHandler.LivenessHandler())
	mux.Handle("/health/ready", healthHandler.ReadinessHandler())
	mux.Handle("/metrics", promhttp.Handler())

	opsSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return &Worker{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redis:          redisClient,
		consumer:       consumer,
		opsSrv:         opsSrv,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the consumer and the ops server, then blocks until the
// context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		w.logger.Info("starting push consumer",
			slog.String("topic", event.TopicPushRequested),
			slog.String("group", w.cfg.ConsumerGroup))
		if err := w.consumer.Start(ctx); err != nil && ctx.Err() == nil {
			errCh <- fmt.Errorf("kafka consumer: %w", err)
		}
	}()

	go func() {
		w.logger.Info("starting ops server", slog.String("addr", w.opsSrv.Addr))
		if err := w.opsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("ops server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		w.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return w.Shutdown()
}

// Shutdown gracefully stops all components.
func (w *Worker) Shutdown() error {
	w.logger.Info("shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := w.opsSrv.Shutdown(shutdownCtx); err != nil {
		w.logger.Error("ops server shutdown error", slog.String("error", err.Error()))
	}

	if err := w.consumer.Close(); err != nil {
		w.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
	}

	if w.redis != nil {
		if err := w.redis.Close(); err != nil {
			w.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	w.pool.Close()

	if err := w.tracerShutdown(shutdownCtx); err != nil {
		w.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	w.logger.Info("worker shutdown complete")
	return nil
}
