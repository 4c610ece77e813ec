package cli

import (
	"testing"

	"github.com/chemgate/chemgate/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd(t *testing.T) {
	t.Run("Should expose the serve command", func(t *testing.T) {
		cmd := RootCmd()
		names := make([]string, 0, len(cmd.Commands()))
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		assert.Contains(t, names, "serve")
	})

	t.Run("Should build a logger from persistent flags", func(t *testing.T) {
		cmd := RootCmd()
		require.NoError(t, cmd.PersistentFlags().Set("log-level", "debug"))
		require.NoError(t, cmd.PersistentFlags().Set("log-json", "true"))
		log, err := buildLogger(cmd)
		require.NoError(t, err)
		assert.Implements(t, (*logger.Logger)(nil), log)
	})
}
