package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("test message", slog.String("key", "value"))
		logger.Error("error message", slog.Int("code", 500))

		assert.Equal(t, 2, handler.Count())
		assert.True(t, handler.ContainsMessage("test message"))
		assert.True(t, handler.ContainsAttr("key", "value"))
		assert.True(t, handler.ContainsAttr("code", 500))
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")
		logger.Error("error msg")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
		AssertLogContains(t, handler, slog.LevelWarn, "warn")
	})

	t.Run("with attrs share the buffer", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With(slog.String("component", "loader")).Info("loaded", slog.Int("rows", 3))

		rec, ok := handler.Find("loaded")
		require.True(t, ok)
		assert.Equal(t, "loader", rec.Attrs["component"])
		AssertLogAttr(t, handler, "rows", 3)
	})

	t.Run("groups flatten keys", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("missing", slog.Group("missing", slog.Int("total_cases", 1)))
		logger.WithGroup("stats").Info("filled", slog.Int("new_cases", 2))

		assert.True(t, handler.ContainsAttr("stats.new_cases", 2))
		rec, _ := handler.Find("missing")
		assert.Contains(t, rec.Attrs, "missing")
	})

	t.Run("clear", func(t *testing.T) {
		logger, handler := NewTestLogger(t)
		logger.Info("one")
		handler.Clear()
		assert.Zero(t, handler.Count())
		AssertNoErrors(t, handler)
	})
}
