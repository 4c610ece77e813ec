package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Should load defaults without environment", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, 9100, cfg.Server.Port)
		assert.Equal(t, "chemgate", cfg.Broker.KeyPrefix)
		assert.Equal(t, 30*time.Second, cfg.Broker.SyncTimeout)
		assert.True(t, cfg.Auth.Enabled)
	})

	t.Run("Should override defaults from environment", func(t *testing.T) {
		t.Setenv("CHEMGATE_SERVER_PORT", "8080")
		t.Setenv("CHEMGATE_BROKER_SYNC_TIMEOUT", "5s")
		t.Setenv("CHEMGATE_REDIS_HOST", "redis.internal")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, 5*time.Second, cfg.Broker.SyncTimeout)
		assert.Equal(t, "redis.internal", cfg.Redis.Host)
	})

	t.Run("Should reject invalid port", func(t *testing.T) {
		t.Setenv("CHEMGATE_SERVER_PORT", "99999")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestTransformEnvKey(t *testing.T) {
	t.Run("Should map section and field correctly", func(t *testing.T) {
		assert.Equal(t, "broker.sync_timeout", transformEnvKey("BROKER_SYNC_TIMEOUT"))
		assert.Equal(t, "server.port", transformEnvKey("SERVER_PORT"))
		assert.Equal(t, "redis", transformEnvKey("REDIS"))
		assert.Equal(t, "", transformEnvKey(""))
	})
}

func TestContext(t *testing.T) {
	t.Run("Should round-trip config through context", func(t *testing.T) {
		cfg := Default()
		ctx := ContextWithConfig(context.Background(), cfg)
		assert.Same(t, cfg, FromContext(ctx))
	})

	t.Run("Should return nil when absent", func(t *testing.T) {
		assert.Nil(t, FromContext(context.Background()))
	})
}
