package cli

import (
	"fmt"

	"github.com/chemgate/chemgate/engine/infra/server"
	"github.com/chemgate/chemgate/pkg/config"
	"github.com/chemgate/chemgate/pkg/logger"
	"github.com/spf13/cobra"
)

func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the prediction gateway HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := buildLogger(cmd)
			if err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			ctx := cmd.Context()
			ctx = logger.ContextWithLogger(ctx, log)
			ctx = config.ContextWithConfig(ctx, cfg)

			srv, err := server.NewServer(ctx)
			if err != nil {
				return err
			}
			return srv.Run()
		},
	}
	return cmd
}

func buildLogger(cmd *cobra.Command) (logger.Logger, error) {
	flags := cmd.Root().PersistentFlags()
	level, err := flags.GetString("log-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-level flag: %w", err)
	}
	asJSON, err := flags.GetBool("log-json")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-json flag: %w", err)
	}
	cfg := logger.DefaultConfig()
	cfg.Level = logger.LogLevel(level)
	cfg.JSON = asJSON
	return logger.NewLogger(cfg), nil
}
