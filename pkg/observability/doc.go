// Package observability provides structured logging, Prometheus metrics, OpenTelemetry
// setup, health checks and graceful shutdown for gaslink processes.
//
// # Structured Logging
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stderr)
//	logger.WithField("plan_id", id).Info("Quote computed")
//
// Request-scoped logging:
//
//	observability.FromContext(r.Context()).WithError(err).Warn("Upstream call failed")
//
// # Prometheus Metrics
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.ObserveUpstream("GET", "/api/v1/subscription-plans", 200, elapsed)
//
// # Health Checks
//
//	checker := observability.NewHealthChecker(version, observability.HTTPPinger(http.DefaultClient, apiURL))
//	checker.AddOptional("redis", observability.PingFunc(pingRedis))
//
// # Related Packages
//
//   - pkg/config: Observability configuration
//   - pkg/httputil: Request logging middleware
package observability
