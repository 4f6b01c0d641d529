package api

import (
	"net"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/cadenceapp/cadence-server/internal/errors"
	"github.com/cadenceapp/cadence-server/internal/metrics"
)

// rateLimitAuth limits login and signup attempts per client IP.
// Returns 429 Too Many Requests when the limit is exceeded.
func (s *Server) rateLimitAuth(operation string) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if s.authRateLimiter == nil {
			next(ctx)
			return
		}

		key := clientIP(ctx.RemoteAddr())
		if !s.authRateLimiter.Allow(key) {
			s.logger.Warn("rate limit exceeded",
				"ip", key,
				"path", ctx.URL().Path,
			)
			s.recordAuth(operation, metrics.OutcomeLimited)
			ctx.SetHeader("Retry-After", "1")
			_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "",
				domainerrors.RateLimited("too many requests, please try again later"))
			return
		}

		next(ctx)
	}
}

// clientIP strips the port from a remote address. chi's RealIP middleware has
// already replaced it with X-Forwarded-For / X-Real-IP when present.
func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
