package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/docker-version-fetcher/internal/config"
	"github.com/user/docker-version-fetcher/pkg/types"
)

// newConfigCmd crea el comando config
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long:  `Manage configuration settings for the registry, notifications and check scheduling.`,
	}

	// Subcomandos
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

// newConfigShowCmd crea el subcomando config show
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  `Display the current configuration settings. The Gotify token is masked.`,
		RunE:  runConfigShow,
	}
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// No imprimir el token en claro
	masked := *cfg
	if masked.Gotify.Token != "" {
		masked.Gotify.Token = "[REDACTED]"
	}

	output, err := json.MarshalIndent(&masked, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	cmd.Println(string(output))
	return nil
}

// newConfigSetCmd crea el subcomando config set
func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  `Set a configuration value. Use 'config show' to see available keys.`,
		Args:  cobra.ExactArgs(2),
		RunE:  runConfigSet,
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := setConfigValue(cfg, key, value); err != nil {
		return fmt.Errorf("failed to set configuration value: %w", err)
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	cmd.Printf("Configuration updated: %s = %s\n", key, value)
	return nil
}

// newConfigGetCmd crea el subcomando config get
func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long:  `Get the value of a configuration key.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runConfigGet,
	}
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	value, err := getConfigValue(cfg, key)
	if err != nil {
		return fmt.Errorf("failed to get configuration value: %w", err)
	}

	cmd.Printf("%s = %s\n", key, value)
	return nil
}

// setConfigValue establece un valor en la configuración según la clave
func setConfigValue(cfg *types.Config, key, value string) error {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return fmt.Errorf("invalid key format, expected 'section.key'")
	}

	section := strings.ToLower(parts[0])
	subkey := strings.ToLower(parts[1])

	switch section {
	case "gotify":
		return setGotifyConfig(cfg, subkey, value)
	case "registry":
		return setRegistryConfig(cfg, subkey, value)
	case "check":
		return setCheckConfig(cfg, subkey, value)
	case "state":
		return setStateConfig(cfg, subkey, value)
	default:
		return fmt.Errorf("unknown configuration section: %s", section)
	}
}

// getConfigValue obtiene un valor de la configuración según la clave
func getConfigValue(cfg *types.Config, key string) (string, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid key format, expected 'section.key'")
	}

	section := strings.ToLower(parts[0])
	subkey := strings.ToLower(parts[1])

	switch section {
	case "gotify":
		return getGotifyConfig(cfg, subkey)
	case "registry":
		return getRegistryConfig(cfg, subkey)
	case "check":
		return getCheckConfig(cfg, subkey)
	case "state":
		return getStateConfig(cfg, subkey)
	default:
		return "", fmt.Errorf("unknown configuration section: %s", section)
	}
}

// Funciones auxiliares para Gotify
func setGotifyConfig(cfg *types.Config, key, value string) error {
	switch key {
	case "enabled":
		val, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value: %s", value)
		}
		cfg.Gotify.Enabled = val
	case "url":
		cfg.Gotify.URL = value
	case "token":
		cfg.Gotify.Token = value
	case "priority":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid priority value: %s", value)
		}
		cfg.Gotify.Priority = val
	case "title":
		cfg.Gotify.Title = value
	default:
		return fmt.Errorf("unknown gotify key: %s", key)
	}
	return nil
}

func getGotifyConfig(cfg *types.Config, key string) (string, error) {
	switch key {
	case "enabled":
		return strconv.FormatBool(cfg.Gotify.Enabled), nil
	case "url":
		return cfg.Gotify.URL, nil
	case "token":
		if cfg.Gotify.Token != "" {
			return "[REDACTED]", nil
		}
		return "", nil
	case "priority":
		return strconv.Itoa(cfg.Gotify.Priority), nil
	case "title":
		return cfg.Gotify.Title, nil
	default:
		return "", fmt.Errorf("unknown gotify key: %s", key)
	}
}

// Funciones auxiliares para Registry
func setRegistryConfig(cfg *types.Config, key, value string) error {
	switch key {
	case "provider":
		provider := strings.ToLower(value)
		if provider != config.ProviderHub && provider != config.ProviderOCI {
			return fmt.Errorf("unknown registry provider: %s", value)
		}
		cfg.Registry.Provider = provider
	case "timeout":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid timeout value: %s", value)
		}
		cfg.Registry.Timeout = val
	case "request_delay":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid request_delay value: %s", value)
		}
		cfg.Registry.RequestDelay = val
	case "cache_ttl":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid cache_ttl value: %s", value)
		}
		cfg.Registry.CacheTTL = val
	default:
		return fmt.Errorf("unknown registry key: %s", key)
	}
	return nil
}

func getRegistryConfig(cfg *types.Config, key string) (string, error) {
	switch key {
	case "provider":
		return cfg.Registry.Provider, nil
	case "timeout":
		return strconv.Itoa(cfg.Registry.Timeout), nil
	case "request_delay":
		return strconv.Itoa(cfg.Registry.RequestDelay), nil
	case "cache_ttl":
		return strconv.Itoa(cfg.Registry.CacheTTL), nil
	default:
		return "", fmt.Errorf("unknown registry key: %s", key)
	}
}

// Funciones auxiliares para Check
func setCheckConfig(cfg *types.Config, key, value string) error {
	switch key {
	case "interval_hours":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid interval_hours value: %s", value)
		}
		cfg.Check.IntervalHours = val
	case "notification_frequency":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid notification_frequency value: %s", value)
		}
		cfg.Check.NotificationFrequencyDays = val
	case "self_image":
		cfg.Check.SelfImage = value
	default:
		return fmt.Errorf("unknown check key: %s", key)
	}
	return nil
}

func getCheckConfig(cfg *types.Config, key string) (string, error) {
	switch key {
	case "interval_hours":
		return strconv.Itoa(cfg.Check.IntervalHours), nil
	case "notification_frequency":
		return strconv.Itoa(cfg.Check.NotificationFrequencyDays), nil
	case "self_image":
		return cfg.Check.SelfImage, nil
	default:
		return "", fmt.Errorf("unknown check key: %s", key)
	}
}

// Funciones auxiliares para State
func setStateConfig(cfg *types.Config, key, value string) error {
	switch key {
	case "path":
		cfg.State.Path = value
	default:
		return fmt.Errorf("unknown state key: %s", key)
	}
	return nil
}

func getStateConfig(cfg *types.Config, key string) (string, error) {
	switch key {
	case "path":
		return cfg.State.Path, nil
	default:
		return "", fmt.Errorf("unknown state key: %s", key)
	}
}
