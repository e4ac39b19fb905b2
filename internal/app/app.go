// Package app wires the dependency graph for the API server and the push
// worker.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/utafrali/reputation-service/internal/config"
	"github.com/utafrali/reputation-service/internal/event"
	handler "github.com/utafrali/reputation-service/internal/handler/http"
	"github.com/utafrali/reputation-service/internal/location"
	"github.com/utafrali/reputation-service/internal/migrations"
	"github.com/utafrali/reputation-service/internal/repository"
	"github.com/utafrali/reputation-service/internal/repository/postgres"
	"github.com/utafrali/reputation-service/internal/service"
	"github.com/utafrali/reputation-service/internal/signer"
	"github.com/utafrali/reputation-service/pkg/database"
	"github.com/utafrali/reputation-service/pkg/health"
	"github.com/utafrali/reputation-service/pkg/httpclient"
	pkgkafka "github.com/utafrali/reputation-service/pkg/kafka"
	"github.com/utafrali/reputation-service/pkg/tracing"
)

// App runs the reputation API server.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	producer   *pkgkafka.Producer
	dispatcher *event.Dispatcher
	reviews    *service.ReviewService
	httpServer *http.Server
	stop       chan struct{}

	tracerShutdown func(context.Context) error
}

// NewApp creates the API server with all dependencies wired.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tracerShutdown, err := initTracing(ctx, cfg, "reputation-service")
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

	prometheus.MustRegister(database.NewPoolStatsCollector(pool, "reputation-service"))
	database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	reviewRepo := postgres.NewReviewRepository(pool)

	var (
		locationRepo repository.LocationRepository
		resolver     location.Resolver
	)
	if cfg.LocationEnabled {
		locationRepo = postgres.NewLocationRepository(pool)
		ip2cClient := httpclient.NewCircuitBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultCircuitBreakerConfig("ip2c"),
			logger,
		)
		resolver = location.Chain{
			location.NewGeoIPResolver(pool),
			location.NewIP2CResolver(ip2cClient),
		}
	}

	var credentialRef string
	if cfg.PushEnabled() {
		credentialRef = cfg.PushCredentialRef
	} else {
		logger.Warn("push disabled, subscriber urls or signing credential missing")
	}
	dispatcher := event.NewDispatcher(producer, cfg.PushURLs, credentialRef, logger)

	reviewService := service.NewReviewService(reviewRepo, locationRepo, resolver, dispatcher, logger)
	reputationService := service.NewReputationService(reviewRepo, logger)

	verifier := signer.NewVerifier(
		staticKeyResolver(cfg),
		time.Duration(cfg.SignatureSkewSecs)*time.Second,
	)

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", pool.Ping)
	healthHandler.Register("kafka", producer.Ping)

	stop := make(chan struct{})
	router := handler.NewRouter(reviewService, reputationService, verifier, healthHandler, handler.RouterConfig{
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
		Stop:           stop,
	}, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		producer:       producer,
		dispatcher:     dispatcher,
		reviews:        reviewService,
		httpServer:     httpServer,
		stop:           stop,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")
	close(a.stop)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	// Let queued push dispatches and location lookups drain.
	a.dispatcher.Wait()
	a.reviews.Wait()

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	a.pool.Close()

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}

// --- shared wiring helpers ---

func connectPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	return pool, nil
}

func initTracing(ctx context.Context, cfg *config.Config, serviceName string) (func(context.Context) error, error) {
	shutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	return shutdown, nil
}

// staticKeyResolver accepts the single configured signing identity. The
// credential store is config for now; the resolver signature leaves room
// for a real key registry.
func staticKeyResolver(cfg *config.Config) signer.KeyResolver {
	return func(address string) ([]byte, bool) {
		if cfg.SigningAddress != "" && address == cfg.SigningAddress {
			return []byte(cfg.SigningKey), true
		}
		return nil, false
	}
}
