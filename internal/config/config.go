package config

import (
	"os"
	"path/filepath"
	"strconv"

	yaml "gopkg.in/yaml.v3"

	"github.com/user/docker-version-fetcher/pkg/errors"
	"github.com/user/docker-version-fetcher/pkg/types"
)

const (
	DefaultConfigDir  = ".docker-version-fetcher"
	DefaultConfigFile = "config.yaml"

	ProviderHub = "hub"
	ProviderOCI = "oci"
)

// Load carga la configuración desde archivo y variables de entorno
func Load(configPath string) (*types.Config, error) {
	cfg := DefaultConfig()

	// Si no se especifica path, usar el directorio home del usuario
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap("config.Load", err)
		}
		configPath = filepath.Join(homeDir, DefaultConfigDir, DefaultConfigFile)
	}

	// Cargar desde archivo si existe
	if err := loadFromFile(cfg, configPath); err != nil {
		// Si el archivo no existe, no es un error - usar configuración por defecto
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf("config.Load", err, "loading config file %s", configPath)
		}
	}

	// Sobrescribir con variables de entorno
	loadFromEnv(cfg)

	// Validar configuración
	if err := validate(cfg); err != nil {
		return nil, errors.Wrap("config.Load", err)
	}

	return cfg, nil
}

// DefaultConfig devuelve la configuración por defecto
func DefaultConfig() *types.Config {
	return &types.Config{
		Gotify: types.GotifyConfig{
			Enabled:  false,
			Priority: 5,
			Title:    "Docker Version Fetcher",
		},
		Registry: types.RegistryConfig{
			Provider: ProviderHub,
			Hub: types.HubConfig{
				Enabled: true,
				Timeout: 30,
			},
			OCI: types.OCIConfig{
				Enabled: false,
				Timeout: 30,
			},
			RequestDelay: 1,
			Timeout:      30,
			CacheTTL:     900, // 15 minutos
		},
		Check: types.CheckConfig{
			IntervalHours:             24,
			NotificationFrequencyDays: 7,
			SelfImage:                 "docker-version-fetcher",
		},
		State: types.StateConfig{
			Path: "data/state.json",
		},
	}
}

// loadFromFile carga la configuración desde un archivo YAML
func loadFromFile(cfg *types.Config, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf("config.loadFromFile", err, "parsing YAML file %s", filePath)
	}

	return nil
}

// loadFromEnv carga configuración desde variables de entorno
func loadFromEnv(cfg *types.Config) {
	// Gotify configuration
	if url := os.Getenv("GOTIFY_URL"); url != "" {
		cfg.Gotify.URL = url
		cfg.Gotify.Enabled = true
	}
	if token := os.Getenv("GOTIFY_TOKEN"); token != "" {
		cfg.Gotify.Token = token
	}
	if priority := os.Getenv("GOTIFY_PRIORITY"); priority != "" {
		if val, err := strconv.Atoi(priority); err == nil && val >= 0 {
			cfg.Gotify.Priority = val
		}
	}
	if title := os.Getenv("GOTIFY_TITLE"); title != "" {
		cfg.Gotify.Title = title
	}
	if enabled := os.Getenv("GOTIFY_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.Gotify.Enabled = val
		}
	}

	// Check configuration
	if frequency := os.Getenv("NOTIFICATION_FREQUENCY"); frequency != "" {
		if val, err := strconv.Atoi(frequency); err == nil && val > 0 {
			cfg.Check.NotificationFrequencyDays = val
		}
	}
	if interval := os.Getenv("CHECK_INTERVAL"); interval != "" {
		if val, err := strconv.Atoi(interval); err == nil && val > 0 {
			cfg.Check.IntervalHours = val
		}
	}

	// Registry timeouts
	if timeout := os.Getenv("REGISTRY_TIMEOUT"); timeout != "" {
		if val, err := strconv.Atoi(timeout); err == nil && val > 0 {
			cfg.Registry.Timeout = val
			cfg.Registry.Hub.Timeout = val
			cfg.Registry.OCI.Timeout = val
		}
	}

	// State file
	if path := os.Getenv("STATE_FILE"); path != "" {
		cfg.State.Path = path
	}
}

func validate(cfg *types.Config) error {
	// Validar configuración de Gotify si está habilitada
	if cfg.Gotify.Enabled {
		if cfg.Gotify.URL == "" {
			return errors.New("config.validate", "gotify URL is required when gotify is enabled")
		}
		if cfg.Gotify.Token == "" {
			return errors.New("config.validate", "gotify token is required when gotify is enabled")
		}
	}

	// Validar el proveedor de registro
	if cfg.Registry.Provider != ProviderHub && cfg.Registry.Provider != ProviderOCI {
		return errors.Newf("config.validate", "unknown registry provider: %s", cfg.Registry.Provider)
	}

	// Validar timeouts e intervalos
	if cfg.Registry.Timeout <= 0 {
		return errors.New("config.validate", "registry timeout must be positive")
	}
	if cfg.Registry.RequestDelay < 1 {
		return errors.New("config.validate", "registry request delay must be at least 1 second")
	}
	if cfg.Check.IntervalHours <= 0 {
		return errors.New("config.validate", "check interval must be positive")
	}
	if cfg.Check.NotificationFrequencyDays <= 0 {
		return errors.New("config.validate", "notification frequency must be positive")
	}

	// Validar el estado persistido
	if cfg.State.Path == "" {
		return errors.New("config.validate", "state file path is required")
	}

	return nil
}

// Save guarda la configuración en un archivo
func Save(cfg *types.Config, configPath string) error {
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap("config.Save", err)
		}
		configDir := filepath.Join(homeDir, DefaultConfigDir)
		if err := os.MkdirAll(configDir, 0750); err != nil {
			return errors.Wrapf("config.Save", err, "creating config directory %s", configDir)
		}
		configPath = filepath.Join(configDir, DefaultConfigFile)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap("config.Save", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return errors.Wrapf("config.Save", err, "writing config file %s", configPath)
	}

	return nil
}
