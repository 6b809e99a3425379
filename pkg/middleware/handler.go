package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/platinummonkey/gaslink/pkg/httputil"
	"github.com/platinummonkey/gaslink/pkg/observability"
	"github.com/sirupsen/logrus"
)

// RateLimitMiddleware rejects callers over their allowance with 429. Callers
// are identified by bearer token when present, otherwise by client IP.
type RateLimitMiddleware struct {
	limiter    Limiter
	logger     *logrus.Logger
	metrics    *observability.Metrics
	trustProxy bool
}

// MiddlewareOption configures a RateLimitMiddleware
type MiddlewareOption func(*RateLimitMiddleware)

// WithTrustedProxyHeaders takes the client IP from X-Forwarded-For and
// X-Real-IP. Only enable it behind a proxy that overwrites those headers.
func WithTrustedProxyHeaders(trust bool) MiddlewareOption {
	return func(m *RateLimitMiddleware) { m.trustProxy = trust }
}

// NewRateLimitMiddleware wraps limiter. metrics may be nil.
func NewRateLimitMiddleware(limiter Limiter, logger *logrus.Logger, metrics *observability.Metrics, opts ...MiddlewareOption) *RateLimitMiddleware {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	m := &RateLimitMiddleware{limiter: limiter, logger: logger, metrics: metrics}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handler wraps an HTTP handler with rate limiting. Limiter errors fail open.
func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, kind := callerKey(r, m.trustProxy)
		d, err := m.limiter.Allow(r.Context(), key)
		if err != nil {
			m.logger.WithError(err).WithField("caller", kind).Warn("Rate limiter unavailable, allowing request")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			if m.metrics != nil {
				m.metrics.RateLimitedTotal.WithLabelValues(kind).Inc()
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(d.RetryAfter)))
			httputil.WriteFailure(w, http.StatusTooManyRequests, "Too many requests, please try again shortly")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// callerKey hashes bearer tokens before they are used as limiter keys
func callerKey(r *http.Request, trustProxy bool) (key, kind string) {
	if token := httputil.BearerToken(r); token != "" {
		sum := sha256.Sum256([]byte(token))
		return "token:" + hex.EncodeToString(sum[:12]), "token"
	}
	return "ip:" + clientIP(r, trustProxy), "ip"
}

// clientIP ignores forwarding headers unless trustProxy is set, since any
// direct caller can write them
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			return strings.TrimSpace(first)
		}
		if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			return realIP
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
