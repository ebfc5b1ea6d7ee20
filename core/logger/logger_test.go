package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/multicast/core/logger"
)

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithProduction("orders"),
		logger.WithOutput(&buf),
		logger.WithAttr(slog.String("region", "eu")),
	)

	log.Debug("hidden")
	log.Info("subject completed", logger.Subject("orders"), logger.Subscribers(2))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "subject completed", record["msg"])
	assert.Equal(t, "orders", record["service"])
	assert.Equal(t, "production", record["env"])
	assert.Equal(t, "eu", record["region"])
	assert.Equal(t, "orders", record["subject"])
	assert.Equal(t, float64(2), record["subscribers"])
}

func TestNew_TextDevelopment(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithDevelopment("demo"), logger.WithOutput(&buf))

	log.Debug("listener attached", logger.SubscriptionID("sub-1"))

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "service=demo")
	assert.Contains(t, out, "subscription_id=sub-1")
}

func TestNew_Level(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithJSONFormatter(),
		logger.WithTextFormatter(),
		logger.WithLevel(slog.LevelWarn),
		logger.WithOutput(&buf),
	)

	log.Info("dropped")
	assert.Empty(t, buf.String())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "msg=kept")
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	log := logger.Discard()
	assert.False(t, log.Enabled(t.Context(), slog.LevelError))
}
