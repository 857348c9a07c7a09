// Package app wires together all storefront components.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/apexplus/storefront/internal/assistant"
	"github.com/apexplus/storefront/internal/config"
	"github.com/apexplus/storefront/internal/event"
	handlerhttp "github.com/apexplus/storefront/internal/handler/http"
	"github.com/apexplus/storefront/internal/repository/postgres"
	redisrepo "github.com/apexplus/storefront/internal/repository/redis"
	"github.com/apexplus/storefront/internal/service"
	"github.com/apexplus/storefront/migrations"
	"github.com/apexplus/storefront/pkg/database"
	"github.com/apexplus/storefront/pkg/health"
	"github.com/apexplus/storefront/pkg/httpclient"
	pkgkafka "github.com/apexplus/storefront/pkg/kafka"
	"github.com/apexplus/storefront/pkg/middleware"
)

// App holds the storefront service and its dependencies.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	pool        *pgxpool.Pool
	redisClient *redis.Client
	producer    *pkgkafka.Producer
	httpServer  *http.Server
}

// NewApp builds the full dependency graph: connections, repositories,
// services, handlers and the HTTP server.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	kafkaProducer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	events := event.NewProducer(kafkaProducer, logger)

	categories := postgres.NewCategoryRepository(pool)
	products := postgres.NewProductRepository(pool)
	orders := postgres.NewOrderRepository(pool)
	carts := redisrepo.NewCartRepository(redisClient, cfg.CartTTL())

	catalogService := service.NewCatalogService(categories, products, events, logger)
	cartService := service.NewCartService(carts, products, logger)
	orderService := service.NewOrderService(orders, events, logger)
	checkoutService := service.NewCheckoutService(carts, orderService, events, cfg.CheckoutDelay(), logger)

	assistantHTTP := httpclient.New(httpclient.Config{
		Timeout:         cfg.AssistantTimeout(),
		MaxRetries:      1,
		RetryWaitMin:    100 * time.Millisecond,
		RetryWaitMax:    time.Second,
		MaxConnsPerHost: 10,
	})
	assistantCB := httpclient.NewCircuitBreakerClient(assistantHTTP, httpclient.CircuitBreakerConfig{
		Name:         "assistant-backend",
		MaxRequests:  cfg.CBMaxRequests,
		Interval:     time.Duration(cfg.CBInterval) * time.Second,
		Timeout:      time.Duration(cfg.CBTimeout) * time.Second,
		FailureRatio: cfg.CBFailureRatio,
		MinRequests:  cfg.CBMinRequests,
	}, logger)
	assistantClient := assistant.NewClient(assistantCB, cfg.AssistantURL, logger)

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", pool.Ping)
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", kafkaProducer.Ping)

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.CORSAllowedOrigins) > 0 && cfg.CORSAllowedOrigins[0] != "" {
		corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	}

	router := handlerhttp.NewRouter(handlerhttp.RouterConfig{
		Catalog:   catalogService,
		Cart:      cartService,
		Orders:    orderService,
		Checkout:  checkoutService,
		Assistant: assistantClient,
		Health:    healthHandler,
		CORS:      corsCfg,
		Logger:    logger,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:         cfg,
		logger:      logger,
		pool:        pool,
		redisClient: redisClient,
		producer:    kafkaProducer,
		httpServer:  httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is cancelled or
// the server fails.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("environment", a.cfg.Environment),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
		return a.Shutdown()
	}
}

// Shutdown drains the HTTP server and closes all connections in order.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error

	if err := a.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}

	if err := a.producer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close kafka producer: %w", err))
	}

	if err := a.redisClient.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close redis client: %w", err))
	}

	a.pool.Close()

	a.logger.Info("shutdown complete")

	return errors.Join(errs...)
}
