package session

import "time"

// Config holds session registry configuration.
type Config struct {
	// Window is the rolling session lifetime; each successful lookup
	// extends expiry up to Window from now, never beyond.
	Window time.Duration `env:"SESSION_WINDOW" envDefault:"24h"`

	// AnonymousLimit and AuthenticatedLimit are requests per window.
	AnonymousLimit     int64 `env:"SESSION_ANON_LIMIT" envDefault:"600"`
	AuthenticatedLimit int64 `env:"SESSION_AUTH_LIMIT" envDefault:"1200"`

	// CacheTTL bounds how stale the local read cache may be. Keep it
	// sub-minute: the cache accelerates lookups, it is never truth.
	CacheTTL time.Duration `env:"SESSION_CACHE_TTL" envDefault:"30s"`

	// CacheSize caps the local read cache entry count.
	CacheSize int `env:"SESSION_CACHE_SIZE" envDefault:"10000"`

	// CookieName is the client-held token cookie (default: "sid").
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"sid"`

	// SecureCookies enables the Secure flag (required in production).
	SecureCookies bool `env:"SESSION_SECURE_COOKIES" envDefault:"false"`

	// FailOpen allows requests when the durable store is unreachable.
	// Development-only escape hatch; production fails closed.
	FailOpen bool `env:"SESSION_FAIL_OPEN" envDefault:"false"`

	// IdentitySalt feeds anonymous owner key hashing.
	IdentitySalt string `env:"SESSION_IDENTITY_SALT" envDefault:""`
}

// DefaultConfig returns production session settings.
func DefaultConfig() Config {
	return Config{
		Window:             24 * time.Hour,
		AnonymousLimit:     600,
		AuthenticatedLimit: 1200,
		CacheTTL:           30 * time.Second,
		CacheSize:          10000,
		CookieName:         "sid",
		SecureCookies:      false,
		FailOpen:           false,
	}
}

// LimitFor returns the quota ceiling for an owner kind.
func (c Config) LimitFor(kind OwnerKind) int64 {
	if kind == OwnerAuthenticated {
		return c.AuthenticatedLimit
	}
	return c.AnonymousLimit
}
