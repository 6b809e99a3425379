// Package middleware provides gateway rate limiting.
//
// Two limiters implement Limiter: RateLimiter, an in-process token bucket,
// and DistributedRateLimiter, a fixed window in redis shared across gateway
// replicas. RateLimitMiddleware keys callers by a hash of their bearer token,
// falling back to client IP, and answers over-limit requests with 429 in the
// platform envelope plus Retry-After. X-Forwarded-For is only read when the
// middleware is built WithTrustedProxyHeaders(true).
//
//	limiter := middleware.NewRateLimiter(middleware.DefaultRateLimitConfig())
//	limiter.StartCleanup(ctx)
//	router.Use(middleware.NewRateLimitMiddleware(limiter, logger, metrics).Handler)
package middleware
