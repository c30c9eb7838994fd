package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd crea el comando raíz de la aplicación
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docker-version-fetcher",
		Short: "Docker Version Fetcher - Check running containers for image updates",
		Long: `Docker Version Fetcher inspects the locally running Docker containers,
queries the image registry for newer published tags, and sends a Gotify
notification when an update is available.

Notifications are deduplicated through a persisted reminder state so the
same update is not reported on every run.`,
		Version: "1.0.0",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}
		},
	}

	// Agregar subcomandos
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newTestCmd())

	// Flags globales
	cmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	return cmd
}
