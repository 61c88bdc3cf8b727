package sl_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
)

func TestErr_ReturnsCorrectAttr(t *testing.T) {
	attr := sl.Err(errors.New("something went wrong"))

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.StringValue("something went wrong"), attr.Value)
}

func TestErr_NilError(t *testing.T) {
	assert.Panics(t, func() {
		_ = sl.Err(nil)
	})
}

func TestNew(t *testing.T) {
	t.Run("local is text with debug", func(t *testing.T) {
		var buf bytes.Buffer
		log := sl.New(sl.EnvLocal, &buf)
		log.Debug("hello", slog.String("op", "test"))
		assert.Contains(t, buf.String(), "level=DEBUG")
		assert.Contains(t, buf.String(), "op=test")
	})

	t.Run("prod is json without debug", func(t *testing.T) {
		var buf bytes.Buffer
		log := sl.New(sl.EnvProd, &buf)
		assert.False(t, log.Enabled(context.Background(), slog.LevelDebug))

		log.Info("hello", sl.Err(errors.New("boom")))
		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "boom", entry["error"])
	})

	t.Run("dev is json with debug", func(t *testing.T) {
		var buf bytes.Buffer
		assert.True(t, sl.New(sl.EnvDev, &buf).Enabled(context.Background(), slog.LevelDebug))
	})
}
