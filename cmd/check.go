package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/docker-version-fetcher/internal/cache"
	"github.com/user/docker-version-fetcher/internal/checker"
	"github.com/user/docker-version-fetcher/internal/compose"
	"github.com/user/docker-version-fetcher/internal/config"
	"github.com/user/docker-version-fetcher/internal/docker"
	"github.com/user/docker-version-fetcher/internal/notifier"
	"github.com/user/docker-version-fetcher/internal/registry"
	"github.com/user/docker-version-fetcher/internal/report"
	"github.com/user/docker-version-fetcher/internal/resolver"
	"github.com/user/docker-version-fetcher/internal/state"
	"github.com/user/docker-version-fetcher/pkg/types"
)

// newCheckCmd crea el comando check
func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a single update check over running containers",
		Long: `Run one full pass: list running containers, query the configured registry
for newer tags, and notify about available updates. Reminder state is read
before the pass and persisted afterwards.`,
		RunE: runCheck,
	}

	cmd.Flags().Bool("dry-run", false, "Report updates without notifying or persisting state")
	cmd.Flags().Bool("fail-on-updates", false, "Exit with non-zero code if updates are found")
	cmd.Flags().String("compose", "", "Check images declared in a compose file or directory instead of running containers")
	cmd.Flags().StringP("output", "o", "console", "Output format (console, json)")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	failOnUpdates, _ := cmd.Flags().GetBool("fail-on-updates")
	composePath, _ := cmd.Flags().GetString("compose")
	outputFormat, _ := cmd.Flags().GetString("output")

	result, err := executeCheck(cmd.Context(), logger, cfg, composePath, dryRun)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		formatter := &report.JSONFormatter{}
		output, err := formatter.Format(result)
		if err != nil {
			return fmt.Errorf("failed to format result: %w", err)
		}
		cmd.Println(output)
	} else {
		printResult(cmd, result)
	}

	if failOnUpdates && result.HasUpdates() {
		return fmt.Errorf("found %d image updates", len(result.Updates))
	}

	return nil
}

// executeCheck ejecuta una pasada completa de verificación
func executeCheck(ctx context.Context, logger *slog.Logger, cfg *types.Config, composePath string, dryRun bool) (*types.RunResult, error) {
	svc, cleanup, err := buildChecker(ctx, logger, cfg, composePath)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return svc.Run(ctx, checkOptions(cfg, dryRun))
}

// buildChecker construye el servicio de verificación con sus colaboradores.
// El comando watch lo construye una sola vez y reutiliza los clientes (y la
// caché de tags) entre pasadas. Con composePath el inventario sale de los
// archivos compose en lugar del daemon de Docker.
func buildChecker(ctx context.Context, logger *slog.Logger, cfg *types.Config, composePath string) (*checker.Service, func(), error) {
	var inventory types.InventorySource
	cleanup := func() {}

	if composePath != "" {
		inventory = compose.NewSource(composePath, logger)
	} else {
		dockerClient, err := docker.NewClient(logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Docker client: %w", err)
		}

		if err := dockerClient.Ping(ctx); err != nil {
			_ = dockerClient.Close()
			return nil, nil, fmt.Errorf("failed to connect to Docker daemon: %w", err)
		}
		inventory = dockerClient
		cleanup = func() { _ = dockerClient.Close() }
	}

	registryClient, closeRegistry, err := createRegistryClient(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	closeAll := func() {
		closeRegistry()
		cleanup()
	}

	states := state.NewManager(cfg.State.Path, cfg.Check.NotificationFrequencyDays, logger)
	notifySvc := createNotificationService(cfg)
	res := resolver.New(logger)

	svc := checker.NewService(inventory, registryClient, res, states, notifySvc, logger)
	return svc, closeAll, nil
}

func checkOptions(cfg *types.Config, dryRun bool) checker.Options {
	return checker.Options{
		SelfImage: cfg.Check.SelfImage,
		Priority:  cfg.Gotify.Priority,
		Title:     cfg.Gotify.Title,
		DryRun:    dryRun,
	}
}

// createRegistryClient construye el cliente de registro según el proveedor
// configurado, envuelto en caché cuando cache_ttl > 0.
func createRegistryClient(cfg *types.Config) (types.RegistryClient, func(), error) {
	requestDelay := time.Duration(cfg.Registry.RequestDelay) * time.Second

	var client types.RegistryClient
	switch cfg.Registry.Provider {
	case config.ProviderHub:
		timeout := providerTimeout(cfg.Registry.Hub.Timeout, cfg.Registry.Timeout)
		client = registry.NewHubClient(timeout, requestDelay)
	case config.ProviderOCI:
		timeout := providerTimeout(cfg.Registry.OCI.Timeout, cfg.Registry.Timeout)
		client = registry.NewOCIClient(timeout, requestDelay)
	default:
		return nil, nil, fmt.Errorf("unknown registry provider: %s", cfg.Registry.Provider)
	}

	if cfg.Registry.CacheTTL > 0 {
		tagCache := cache.NewTagCache(cache.Config{
			DefaultTTL:      time.Duration(cfg.Registry.CacheTTL) * time.Second,
			CleanupInterval: 5 * time.Minute,
		})
		return cache.NewCachedRegistryClient(client, tagCache), tagCache.Close, nil
	}

	return client, func() {}, nil
}

func providerTimeout(specific, fallback int) time.Duration {
	if specific > 0 {
		return time.Duration(specific) * time.Second
	}
	return time.Duration(fallback) * time.Second
}

func createNotificationService(cfg *types.Config) *notifier.Service {
	notifySvc := notifier.NewService()

	// Agregar cliente de Gotify si está configurado
	if cfg.Gotify.Enabled && cfg.Gotify.URL != "" && cfg.Gotify.Token != "" {
		timeout := time.Duration(cfg.Registry.Timeout) * time.Second
		notifySvc.AddClient(notifier.NewGotifyClient(cfg.Gotify.URL, cfg.Gotify.Token, timeout))
	}

	return notifySvc
}

func printResult(cmd *cobra.Command, result *types.RunResult) {
	cmd.Printf("Check completed: %s\n", result.Timestamp.Format("2006-01-02 15:04:05"))
	cmd.Printf("Images checked: %d\n", result.ImagesChecked)
	cmd.Printf("Up to date: %d\n", len(result.UpToDate))
	cmd.Printf("Skipped: %d\n", len(result.Skipped))
	cmd.Printf("Suppressed by reminder window: %d\n", len(result.Suppressed))

	if len(result.Updates) > 0 {
		cmd.Printf("\nAvailable Updates (%d):\n", len(result.Updates))
		for _, update := range result.Updates {
			cmd.Printf("  %s (%s -> %s) [%s]\n",
				update.Repository,
				update.CurrentTag,
				update.LatestTag,
				update.Kind)
		}
	}

	if len(result.Errors) > 0 {
		cmd.Printf("\nErrors (%d):\n", len(result.Errors))
		for _, err := range result.Errors {
			cmd.Printf("  - %s\n", err)
		}
	}
}
