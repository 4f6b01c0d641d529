package providers

import (
	"github.com/samber/do/v2"

	"github.com/cadenceapp/cadence-server/internal/config"
	"github.com/cadenceapp/cadence-server/internal/ratelimit"
)

// AuthRateLimiterHandle wraps the login/signup limiter with shutdown capability.
type AuthRateLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *AuthRateLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideAuthRateLimiter provides the per-IP limiter for login and signup.
func ProvideAuthRateLimiter(i do.Injector) (*AuthRateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	limiter := ratelimit.New(cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst)
	return &AuthRateLimiterHandle{KeyedRateLimiter: limiter}, nil
}
