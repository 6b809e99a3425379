package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/platinummonkey/gaslink/pkg/catalog"
	"github.com/platinummonkey/gaslink/pkg/client"
	"github.com/platinummonkey/gaslink/pkg/contextkeys"
	"github.com/platinummonkey/gaslink/pkg/dashboard"
	"github.com/platinummonkey/gaslink/pkg/httputil"
	"github.com/platinummonkey/gaslink/pkg/middleware"
	"github.com/platinummonkey/gaslink/pkg/observability"
	"github.com/platinummonkey/gaslink/pkg/pricing"
	"github.com/platinummonkey/gaslink/pkg/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxBodyBytes = 1 << 20

// ClientFactory builds a platform client that authenticates as token. An
// empty token means an anonymous client.
type ClientFactory func(token string) *client.Client

// NewClientFactory returns a factory sharing one HTTP client across requests
func NewClientFactory(baseURL string, timeout time.Duration, logger *logrus.Logger, metrics *observability.Metrics) ClientFactory {
	shared := &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	return func(token string) *client.Client {
		opts := []client.Option{
			client.WithHTTPClient(shared),
			client.WithTimeout(timeout),
			client.WithLogger(logger),
			client.WithMetrics(metrics),
		}
		if token != "" {
			opts = append(opts, client.WithBearerToken(token))
		}
		return client.New(baseURL, opts...)
	}
}

// Config wires a gateway Server
type Config struct {
	Clients ClientFactory
	Catalog catalog.Config
	Logger  *logrus.Logger
	// Metrics and Gatherer may be nil to disable /metrics and instrumentation
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
	// RateLimiter throttles /api/v1 per caller; nil disables it
	RateLimiter middleware.Limiter
	// TrustProxyHeaders keys anonymous callers by X-Forwarded-For
	TrustProxyHeaders bool
	// Now overrides the clock used to build boards
	Now func() time.Time
}

// Server serves the gateway API: price quotes, delivery boards and the
// dashboard, computed from the caller's view of the platform
type Server struct {
	router  *mux.Router
	handler http.Handler
	clients ClientFactory
	catalog *catalog.Catalog
	logger  *logrus.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// NewServer creates a gateway server with all routes registered
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Server{
		router:  mux.NewRouter(),
		clients: cfg.Clients,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		now:     cfg.Now,
	}
	s.catalog = catalog.New(planSource{clients: cfg.Clients}, cfg.Catalog, cfg.Metrics)

	s.router.Use(httputil.BearerMiddleware)
	if cfg.Metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(cfg.Metrics))
	}
	s.setupRoutes(cfg)

	chain := httputil.Chain(
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(cfg.Logger),
		httputil.RecoveryMiddleware(cfg.Logger),
		httputil.MaxBytesMiddleware(maxBodyBytes),
	)
	s.handler = otelhttp.NewHandler(chain(s.router), "gaslink-gateway",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
	return s
}

func (s *Server) setupRoutes(cfg Config) {
	s.router.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	if cfg.Gatherer != nil {
		s.router.Handle("/metrics", observability.MetricsHandler(cfg.Gatherer)).Methods(http.MethodGet)
	}

	swagger.NewHandlers().RegisterRoutes(s.router)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	if cfg.RateLimiter != nil {
		api.Use(middleware.NewRateLimitMiddleware(cfg.RateLimiter, cfg.Logger, cfg.Metrics,
			middleware.WithTrustedProxyHeaders(cfg.TrustProxyHeaders)).Handler)
	}
	api.HandleFunc("/plans", s.listPlans).Methods(http.MethodGet)
	api.HandleFunc("/plans/{id}/options", s.planOptions).Methods(http.MethodGet)
	api.HandleFunc("/quote", s.quoteFromQuery).Methods(http.MethodGet)
	api.HandleFunc("/quote", s.quoteFromBody).Methods(http.MethodPost)
	api.HandleFunc("/deliveries/board", s.requireToken(s.deliveryBoard)).Methods(http.MethodGet)
	api.HandleFunc("/dashboard", s.requireToken(s.dashboard)).Methods(http.MethodGet)

	// mux resolves misses inside a subrouter with that subrouter's handlers
	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteNotFoundError(w, "Route not found")
	})
	methodNotAllowed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteFailure(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	for _, router := range []*mux.Router{s.router, api} {
		router.NotFoundHandler = notFound
		router.MethodNotAllowedHandler = methodNotAllowed
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Catalog exposes the plan cache, for invalidation and stats
func (s *Server) Catalog() *catalog.Catalog {
	return s.catalog
}

// requestClient returns a platform client acting as the caller
func (s *Server) requestClient(ctx context.Context) *client.Client {
	return s.clients(contextkeys.GetBearerToken(ctx))
}

func (s *Server) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if contextkeys.GetBearerToken(r.Context()) == "" {
			httputil.WriteUnauthorized(w, "Authentication required")
			return
		}
		next(w, r)
	}
}

func (s *Server) dashboardService(ctx context.Context) *dashboard.Service {
	return dashboard.NewService(s.requestClient(ctx), s.logger, s.metrics)
}

// planSource reads plans with the token of whichever request missed the
// cache. Plans are the same for every user, so the result is shared.
type planSource struct {
	clients ClientFactory
}

func (p planSource) ListPlans(ctx context.Context) ([]pricing.Plan, error) {
	return p.clients(contextkeys.GetBearerToken(ctx)).ListPlans(ctx)
}

func (p planSource) GetPlan(ctx context.Context, id string) (*pricing.Plan, error) {
	return p.clients(contextkeys.GetBearerToken(ctx)).GetPlan(ctx, id)
}
