package challenge

import "time"

// Config holds challenge settings.
type Config struct {
	// TTL bounds how long a client has to complete verification.
	TTL time.Duration `env:"CHALLENGE_TTL" envDefault:"15m"`

	// SoftThreshold and HardThreshold are the decision cutoffs.
	SoftThreshold int `env:"CHALLENGE_SOFT_THRESHOLD" envDefault:"40"`
	HardThreshold int `env:"CHALLENGE_HARD_THRESHOLD" envDefault:"60"`

	// ResourcePrefix is the URL path prefix for issued resource paths.
	// The paths are routed by the caller; they carry no file content.
	ResourcePrefix string `env:"CHALLENGE_RESOURCE_PREFIX" envDefault:"/challenge/r"`
}

// DefaultConfig returns production challenge settings.
func DefaultConfig() Config {
	return Config{
		TTL:            15 * time.Minute,
		SoftThreshold:  40,
		HardThreshold:  60,
		ResourcePrefix: "/challenge/r",
	}
}

// thresholds converts config cutoffs into engine thresholds.
func (c Config) thresholds() Thresholds {
	return Thresholds{Soft: c.SoftThreshold, Hard: c.HardThreshold}
}
