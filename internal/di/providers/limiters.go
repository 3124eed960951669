package providers

import (
	"github.com/samber/do/v2"

	"github.com/thumblifyapp/thumblify-server/internal/config"
	"github.com/thumblifyapp/thumblify-server/internal/ratelimit"
)

// LoginLimiter throttles login attempts per client IP.
type LoginLimiter struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (l *LoginLimiter) Shutdown() error {
	l.Stop()
	return nil
}

// ProvideLoginLimiter provides the per-IP login rate limiter.
func ProvideLoginLimiter(i do.Injector) (*LoginLimiter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &LoginLimiter{
		KeyedRateLimiter: ratelimit.New(cfg.RateLimit.LoginPerSecond, cfg.RateLimit.LoginBurst),
	}, nil
}

// GenerationLimiter throttles generation requests per owner, below the
// provider's own quota so one user cannot exhaust it.
type GenerationLimiter struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (l *GenerationLimiter) Shutdown() error {
	l.Stop()
	return nil
}

// ProvideGenerationLimiter provides the per-owner generation rate limiter.
func ProvideGenerationLimiter(i do.Injector) (*GenerationLimiter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &GenerationLimiter{
		KeyedRateLimiter: ratelimit.New(float64(cfg.Provider.RequestsPerMinute)/60.0, cfg.Provider.Burst),
	}, nil
}
