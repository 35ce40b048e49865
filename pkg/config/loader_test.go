package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/botwall/pkg/config"
)

type testConfig struct {
	Name    string        `env:"BOTWALL_TEST_NAME" envDefault:"fallback"`
	Window  time.Duration `env:"BOTWALL_TEST_WINDOW" envDefault:"24h"`
	Limit   int64         `env:"BOTWALL_TEST_LIMIT" envDefault:"600"`
	Secured bool          `env:"BOTWALL_TEST_SECURED" envDefault:"false"`
}

type requiredConfig struct {
	Salt string `env:"BOTWALL_TEST_SALT,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults apply", func(t *testing.T) {
		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "fallback", cfg.Name)
		assert.Equal(t, 24*time.Hour, cfg.Window)
		assert.Equal(t, int64(600), cfg.Limit)
		assert.False(t, cfg.Secured)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("BOTWALL_TEST_NAME", "from-env")
		t.Setenv("BOTWALL_TEST_WINDOW", "90s")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "from-env", cfg.Name)
		assert.Equal(t, 90*time.Second, cfg.Window)
	})

	t.Run("missing required value fails", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer rejected", func(t *testing.T) {
		var cfg *testConfig
		assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	})

	t.Run("must load panics on failure", func(t *testing.T) {
		var cfg requiredConfig
		assert.Panics(t, func() { config.MustLoad(&cfg) })
	})
}
