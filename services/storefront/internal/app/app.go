package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/EcommerceGo/pkg/database"
	"github.com/utafrali/EcommerceGo/pkg/health"
	"github.com/utafrali/EcommerceGo/pkg/httpclient"
	pkgkafka "github.com/utafrali/EcommerceGo/pkg/kafka"
	"github.com/utafrali/EcommerceGo/pkg/tracing"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/commerce"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/config"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/event"
	handler "github.com/utafrali/EcommerceGo/services/storefront/internal/handler/http"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/region"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/repository"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/repository/cookie"
	redisrepo "github.com/utafrali/EcommerceGo/services/storefront/internal/repository/redis"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/service"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tcfg := tracing.DefaultConfig("storefront")
	tcfg.Environment = cfg.Environment
	tcfg.OTLPEndpoint = cfg.OTELEndpoint
	tcfg.SampleRate = cfg.OTELSampleRate
	tcfg.Enabled = cfg.OTELEnabled
	tracerShutdown, err := tracing.InitTracer(ctx, tcfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Redis holds the session mapping.
	rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
		Addr:          cfg.RedisAddr,
		Password:      cfg.RedisPass,
		DB:            cfg.RedisDB,
		SlowThreshold: cfg.RedisSlowThreshold,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	// Commerce API client behind a circuit breaker.
	hcfg := httpclient.DefaultConfig()
	hcfg.Timeout = cfg.CommerceAPITimeout
	hcfg.MaxRetries = cfg.CommerceAPIMaxRetries
	doer := httpclient.NewCircuitBreakerClient(httpclient.New(hcfg), commerceBreakerConfig(cfg), logger)
	api := commerce.NewClient(doer, cfg.CommerceAPIURL, cfg.CommerceAPIToken, logger)

	// Events.
	var (
		producer  *pkgkafka.Producer
		publisher service.EventPublisher = event.Noop{}
	)
	if cfg.EventsEnabled {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewProducer(producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Build the dependency graph.
	regions := region.ContextResolver{Default: cfg.DefaultRegion}
	cartService := service.NewCartService(api, regions, publisher, logger)
	checkoutService := service.NewCheckoutService(api, regions, publisher, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	if producer != nil {
		healthHandler.RegisterOptional("kafka", producer.Ping)
	}

	sessions := redisrepo.NewSessionRepository(rdb, cfg.SessionDuration)
	router := handler.NewRouter(cartService, checkoutService, healthHandler, handler.RouterConfig{
		Session: handler.SessionConfig{
			CookieName:   cfg.SessionCookieName,
			CookieSecure: cfg.CookieSecure,
			TokenTTL:     cfg.SessionDuration,
			Sessions: func(id string) repository.SessionStore {
				return sessions.For(id)
			},
			Tokens: tokenStoreFactory(cfg, rdb),
		},
		DefaultRegion: cfg.DefaultRegion,
		CORSOrigins:   cfg.CORSAllowedOrigins,
		CheckoutRPS:   cfg.CheckoutRPS,
		CheckoutBurst: cfg.CheckoutBurst,
	}, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		rdb:            rdb,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// tokenStoreFactory picks where the active cart pointer lives.
func tokenStoreFactory(cfg *config.Config, rdb *redis.Client) func(http.ResponseWriter, *http.Request, string) repository.TokenStore {
	if cfg.ActiveCartStore == config.ActiveCartStoreRedis {
		return func(_ http.ResponseWriter, _ *http.Request, sessionID string) repository.TokenStore {
			return redisrepo.NewTokenStore(rdb, sessionID)
		}
	}
	return func(w http.ResponseWriter, r *http.Request, _ string) repository.TokenStore {
		return cookie.NewTokenStore(w, r, cfg.CookieSecure)
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}

// commerceBreakerConfig starts from the breaker defaults and applies the
// configured values. Zero values keep the default.
func commerceBreakerConfig(cfg *config.Config) httpclient.CircuitBreakerConfig {
	cb := httpclient.DefaultCircuitBreakerConfig("commerce-api")
	if cfg.CBMaxRequests > 0 {
		cb.MaxRequests = cfg.CBMaxRequests
	}
	if cfg.CBInterval > 0 {
		cb.Interval = time.Duration(cfg.CBInterval) * time.Second
	}
	if cfg.CBTimeout > 0 {
		cb.Timeout = time.Duration(cfg.CBTimeout) * time.Second
	}
	if cfg.CBFailureRatio > 0 {
		cb.FailureRatio = cfg.CBFailureRatio
	}
	if cfg.CBMinRequests > 0 {
		cb.MinRequests = cfg.CBMinRequests
	}
	return cb
}
