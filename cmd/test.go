package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/docker-version-fetcher/internal/config"
	"github.com/user/docker-version-fetcher/internal/notifier"
	"github.com/user/docker-version-fetcher/pkg/types"
)

// newTestCmd crea el comando test
func newTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test connectivity to services",
		Long: `Test connectivity to configured services including the Gotify server
and the image registry.`,
		RunE: runTest,
	}

	cmd.Flags().Bool("gotify", false, "Test Gotify server connectivity")
	cmd.Flags().Bool("registry", false, "Test registry connectivity")
	cmd.Flags().Bool("all", false, "Test all services")

	return cmd
}

func runTest(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	gotify, _ := cmd.Flags().GetBool("gotify")
	testRegistry, _ := cmd.Flags().GetBool("registry")
	all, _ := cmd.Flags().GetBool("all")

	if all || gotify {
		if err := testGotify(cmd, cfg); err != nil {
			logger.Error("Gotify test failed", "error", err)
		}
	}

	if all || testRegistry {
		if err := testRegistryConnectivity(cmd, cfg); err != nil {
			logger.Error("Registry test failed", "error", err)
		}
	}

	if !gotify && !testRegistry && !all {
		cmd.Println("Use --gotify, --registry, or --all flags to specify what to test")
		cmd.Println("\nAvailable test options:")
		cmd.Println("  --gotify    Test Gotify server connectivity")
		cmd.Println("  --registry  Test registry connectivity")
		cmd.Println("  --all       Test all services")
	}

	return nil
}

func testGotify(cmd *cobra.Command, cfg *types.Config) error {
	cmd.Println("🔄 Testing Gotify connectivity...")

	if !cfg.Gotify.Enabled {
		cmd.Println("⚠️  Gotify is disabled in configuration")
		return nil
	}

	if cfg.Gotify.URL == "" {
		cmd.Println("❌ Gotify server URL is not configured")
		return fmt.Errorf("gotify server URL is required")
	}

	if cfg.Gotify.Token == "" {
		cmd.Println("❌ Gotify application token is not configured")
		return fmt.Errorf("gotify application token is required")
	}

	client := notifier.NewGotifyClient(cfg.Gotify.URL, cfg.Gotify.Token, 10*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.CheckHealth(ctx); err != nil {
		cmd.Printf("❌ Gotify health check failed: %v\n", err)
		cmd.Println("💡 Make sure the server URL is reachable and correct")
		return err
	}

	testMessage := fmt.Sprintf("Test message sent at %s\n\n✅ Gotify connectivity successful!",
		time.Now().Format("2006-01-02 15:04:05"))

	if err := client.Send(ctx, "🧪 Docker Version Fetcher Test", testMessage, cfg.Gotify.Priority); err != nil {
		cmd.Printf("❌ Gotify test failed: %v\n", err)
		cmd.Println("💡 Make sure your application token is correct")
		return err
	}

	cmd.Println("✅ Gotify connectivity successful")
	cmd.Println("📨 Test message sent to configured server")
	return nil
}

func testRegistryConnectivity(cmd *cobra.Command, cfg *types.Config) error {
	cmd.Println("🔄 Testing registry connectivity...")

	client, closeClient, err := createRegistryClient(cfg)
	if err != nil {
		return err
	}
	defer closeClient()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	testRepository := "library/alpine"
	if cfg.Registry.Provider == config.ProviderOCI {
		testRepository = "registry.k8s.io/pause"
	}

	cmd.Printf("🔍 Testing %s...\n", client.Name())

	tags, err := client.ListTags(ctx, testRepository)
	if err != nil {
		cmd.Printf("❌ Registry test failed: %v\n", err)
		return err
	}

	cmd.Printf("✅ Registry connectivity successful\n")
	cmd.Printf("📦 Found %d tags for %s\n", len(tags), testRepository)
	return nil
}
