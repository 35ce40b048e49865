package session

import (
	"log/slog"
	"time"
)

// Option is a functional option for configuring the Registry.
type Option func(*Registry)

// WithConfig sets custom configuration.
func WithConfig(cfg Config) Option {
	return func(r *Registry) {
		r.config = cfg
	}
}

// WithLogger sets the logger for policy warnings.
func WithLogger(log *slog.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// WithClock injects the time source, used by tests to drive expiry.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithWindow sets the rolling session lifetime.
func WithWindow(window time.Duration) Option {
	return func(r *Registry) {
		if window > 0 {
			r.config.Window = window
		}
	}
}

// WithLimits sets the per-window quotas for both owner kinds.
func WithLimits(anonymous, authenticated int64) Option {
	return func(r *Registry) {
		if anonymous > 0 {
			r.config.AnonymousLimit = anonymous
		}
		if authenticated > 0 {
			r.config.AuthenticatedLimit = authenticated
		}
	}
}

// WithFailOpen switches the store-failure policy to allow-with-warning.
// Development-only; production fails closed.
func WithFailOpen(failOpen bool) Option {
	return func(r *Registry) {
		r.config.FailOpen = failOpen
	}
}

// WithCacheTTL bounds the local read cache staleness.
func WithCacheTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		if ttl > 0 {
			r.config.CacheTTL = ttl
		}
	}
}
