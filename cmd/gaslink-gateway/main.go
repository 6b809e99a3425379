package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/platinummonkey/gaslink/pkg/async"
	"github.com/platinummonkey/gaslink/pkg/catalog"
	"github.com/platinummonkey/gaslink/pkg/config"
	"github.com/platinummonkey/gaslink/pkg/gateway"
	"github.com/platinummonkey/gaslink/pkg/middleware"
	"github.com/platinummonkey/gaslink/pkg/observability"
	"github.com/platinummonkey/gaslink/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

var version = "dev"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	ctx := context.Background()
	otelProviders, err := observability.InitOTel(ctx, cfg.Observability.OTel(), logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize OpenTelemetry")
	}

	var (
		metrics  *observability.Metrics
		gatherer prometheus.Gatherer
	)
	if cfg.Observability.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = observability.NewMetrics(registry)
		gatherer = registry
	}

	checker := observability.NewHealthChecker(version,
		observability.HTTPPinger(&http.Client{Timeout: cfg.API.Timeout}, cfg.API.BaseURL))

	var rdb *redis.Client
	if cfg.RateLimit.Store == config.SessionStoreRedis {
		rdb, err = session.NewRedisClient(ctx, cfg.Session.RedisURL, cfg.Session.RedisDB)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable at startup")
			redisErr := err
			checker.AddOptional("redis", observability.PingFunc(func(context.Context) error { return redisErr }))
		} else {
			checker.AddOptional("redis", observability.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }))
			defer rdb.Close()
		}
	}

	server := gateway.NewServer(gateway.Config{
		Clients:     gateway.NewClientFactory(cfg.API.BaseURL, cfg.API.Timeout, logger, metrics),
		Catalog:     catalog.Config{TTL: cfg.Catalog.TTL, Size: cfg.Catalog.Size, FetchTimeout: cfg.API.Timeout},
		Logger:      logger,
		Metrics:     metrics,
		Gatherer:    gatherer,
		RateLimiter: newRateLimiter(ctx, cfg.RateLimit, rdb, logger),

		TrustProxyHeaders: cfg.Server.TrustProxy,
	})

	// Plans are public, so the cache can be filled before the first quote.
	async.SafeGo(ctx, logger, cfg.API.Timeout, "plan catalog warm-up", func(ctx context.Context) error {
		_, err := server.Catalog().List(ctx)
		return err
	})

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, checker)
	if gatherer != nil {
		healthMux.Handle("/metrics", observability.MetricsHandler(gatherer))
	}
	healthServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler:      healthMux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	for _, srv := range []*http.Server{httpServer, healthServer} {
		go func(srv *http.Server) {
			logger.WithField("addr", srv.Addr).Info("Listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).WithField("addr", srv.Addr).Fatal("Server failed")
			}
		}(srv)
	}

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout, httpServer, healthServer)
	if otelProviders != nil {
		shutdown.RegisterShutdownFunc(otelProviders.Shutdown)
	}
	if err := shutdown.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("Shutdown finished with errors")
		os.Exit(1)
	}
}

// newRateLimiter returns nil when limiting is disabled. A redis store that
// could not connect falls back to per-process limits.
func newRateLimiter(ctx context.Context, cfg config.RateLimitConfig, rdb *redis.Client, logger *logrus.Logger) middleware.Limiter {
	if cfg.RequestsPerMinute == 0 {
		return nil
	}
	limits := middleware.RateLimitConfig{
		RequestsPerWindow: cfg.RequestsPerMinute,
		WindowDuration:    time.Minute,
		BurstSize:         cfg.Burst,
	}
	if cfg.Store == config.SessionStoreRedis && rdb != nil {
		return middleware.NewDistributedRateLimiter(rdb, limits, "")
	}
	if cfg.Store == config.SessionStoreRedis {
		logger.Warn("Rate limiting per process until redis is reachable")
	}
	limiter := middleware.NewRateLimiter(limits)
	limiter.StartCleanup(ctx)
	return limiter
}
