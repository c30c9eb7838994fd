package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/docker-version-fetcher/internal/config"
)

// newWatchCmd crea el comando watch
func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run update checks periodically",
		Long: `Run update checks in a fixed-interval loop. Each pass runs to completion
before the next interval starts; passes never overlap. The interval comes
from check.interval_hours in the configuration, or the --seconds override.`,
		RunE: runWatch,
	}

	cmd.Flags().Int("seconds", 0, "Override the check interval in seconds (for testing)")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	interval := time.Duration(cfg.Check.IntervalHours) * time.Hour
	if seconds, _ := cmd.Flags().GetInt("seconds"); seconds > 0 {
		interval = time.Duration(seconds) * time.Second
	}

	ctx := cmd.Context()
	logger.Info("Starting periodic checks", "interval", interval)

	// Los clientes se construyen una vez y se comparten entre pasadas, de modo
	// que la caché de tags sobrevive de una pasada a la siguiente
	svc, cleanup, err := buildChecker(ctx, logger, cfg, "")
	if err != nil {
		return err
	}
	defer cleanup()

	for {
		start := time.Now()
		result, err := svc.Run(ctx, checkOptions(cfg, false))
		if err != nil {
			// Una pasada fallida no detiene el bucle; la siguiente vuelve a
			// intentarlo
			logger.Error("Check pass failed", "error", err)
		} else {
			logger.Info("Check pass completed",
				"duration", time.Since(start).Round(time.Millisecond),
				"summary", result.Summary())
		}

		logger.Info("Sleeping until next check", "interval", interval)
		select {
		case <-ctx.Done():
			logger.Info("Shutting down watch loop")
			return nil
		case <-time.After(interval):
		}
	}
}
