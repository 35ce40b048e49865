package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/botwall/pkg/logger"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json output with static attrs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithAttr(slog.String("service", "botwall")),
		)
		log.Info("hello", logger.Component("test"))

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "hello", record["msg"])
		assert.Equal(t, "botwall", record["service"])
		assert.Equal(t, "test", record["component"])
	})

	t.Run("level filters records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelWarn))
		log.Info("dropped")
		assert.Zero(t, buf.Len())
		log.Warn("kept")
		assert.NotZero(t, buf.Len())
	})

	t.Run("invalid format panics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			logger.New(logger.WithFormat("xml"))
		})
	})

	t.Run("development preset uses text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithDevelopment("botwall"), logger.WithOutput(&buf))
		log.Debug("visible at debug level")
		assert.Contains(t, buf.String(), "visible at debug level")
		assert.Contains(t, buf.String(), "service=botwall")
	})
}

func TestAttrHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.Error(nil))
	assert.Equal(t, "error", logger.Error(assert.AnError).Key)
	assert.Equal(t, int64(42), logger.RiskScore(42).Value.Int64())
	assert.Equal(t, "anonymous", logger.OwnerKind("anonymous").Value.String())
}
