package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_Levels(t *testing.T) {
	t.Run("Should respect configured level", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger(&Config{Level: WarnLevel, Output: &buf})
		log.Debug("debug message")
		log.Info("info message")
		log.Warn("warn message")
		out := buf.String()
		assert.NotContains(t, out, "debug message")
		assert.NotContains(t, out, "info message")
		assert.Contains(t, out, "warn message")
	})

	t.Run("Should emit JSON when configured", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger(&Config{Level: InfoLevel, Output: &buf, JSON: true})
		log.Info("hello", "key", "value")
		out := buf.String()
		assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "{"))
		assert.Contains(t, out, `"key":"value"`)
	})

	t.Run("Should carry fields added via With", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger(&Config{Level: InfoLevel, Output: &buf}).With("component", "test")
		log.Info("hello")
		assert.Contains(t, buf.String(), "component")
	})
}

func TestLogger_Context(t *testing.T) {
	t.Run("Should round-trip logger through context", func(t *testing.T) {
		log := NewForTests()
		ctx := ContextWithLogger(context.Background(), log)
		assert.Same(t, log, FromContext(ctx))
	})

	t.Run("Should fall back to default logger", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})
}
