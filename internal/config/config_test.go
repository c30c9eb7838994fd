package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/user/docker-version-fetcher/pkg/types"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Registry.Provider != ProviderHub {
		t.Errorf("expected default provider %q, got %q", ProviderHub, cfg.Registry.Provider)
	}
	if cfg.Gotify.Enabled {
		t.Error("expected gotify disabled by default")
	}
	if cfg.Check.NotificationFrequencyDays != 7 {
		t.Errorf("expected default notification frequency 7, got %d", cfg.Check.NotificationFrequencyDays)
	}
	if cfg.Check.IntervalHours != 24 {
		t.Errorf("expected default check interval 24h, got %d", cfg.Check.IntervalHours)
	}
	if cfg.Registry.RequestDelay != 1 {
		t.Errorf("expected default request delay 1s, got %d", cfg.Registry.RequestDelay)
	}
	if cfg.State.Path == "" {
		t.Error("expected default state path")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	content := `
gotify:
  enabled: true
  url: https://gotify.example.com
  token: secret-token
  priority: 8
registry:
  provider: oci
check:
  interval_hours: 6
  notification_frequency: 3
state:
  path: /var/lib/fetcher/state.json
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if !cfg.Gotify.Enabled || cfg.Gotify.URL != "https://gotify.example.com" {
		t.Errorf("gotify config not loaded: %+v", cfg.Gotify)
	}
	if cfg.Gotify.Priority != 8 {
		t.Errorf("expected priority 8, got %d", cfg.Gotify.Priority)
	}
	if cfg.Registry.Provider != ProviderOCI {
		t.Errorf("expected provider oci, got %s", cfg.Registry.Provider)
	}
	if cfg.Check.IntervalHours != 6 || cfg.Check.NotificationFrequencyDays != 3 {
		t.Errorf("check config not loaded: %+v", cfg.Check)
	}
	if cfg.State.Path != "/var/lib/fetcher/state.json" {
		t.Errorf("state path not loaded: %s", cfg.State.Path)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "missing.yaml")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Registry.Provider != ProviderHub {
		t.Errorf("expected defaults for missing file, got provider %s", cfg.Registry.Provider)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GOTIFY_URL", "https://env.example.com")
	t.Setenv("GOTIFY_TOKEN", "env-token")
	t.Setenv("NOTIFICATION_FREQUENCY", "2")
	t.Setenv("CHECK_INTERVAL", "12")
	t.Setenv("REGISTRY_TIMEOUT", "60")
	t.Setenv("STATE_FILE", "/tmp/state.json")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// GOTIFY_URL habilita las notificaciones implícitamente
	if !cfg.Gotify.Enabled || cfg.Gotify.URL != "https://env.example.com" {
		t.Errorf("env gotify override not applied: %+v", cfg.Gotify)
	}
	if cfg.Gotify.Token != "env-token" {
		t.Errorf("expected env token, got %s", cfg.Gotify.Token)
	}
	if cfg.Check.NotificationFrequencyDays != 2 || cfg.Check.IntervalHours != 12 {
		t.Errorf("env check overrides not applied: %+v", cfg.Check)
	}
	if cfg.Registry.Timeout != 60 || cfg.Registry.Hub.Timeout != 60 {
		t.Errorf("env registry timeout not applied: %+v", cfg.Registry)
	}
	if cfg.State.Path != "/tmp/state.json" {
		t.Errorf("env state path not applied: %s", cfg.State.Path)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*types.Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(cfg *types.Config) {},
			wantErr: false,
		},
		{
			name: "gotify enabled without url",
			mutate: func(cfg *types.Config) {
				cfg.Gotify.Enabled = true
				cfg.Gotify.Token = "token"
			},
			wantErr: true,
		},
		{
			name: "gotify enabled without token",
			mutate: func(cfg *types.Config) {
				cfg.Gotify.Enabled = true
				cfg.Gotify.URL = "https://gotify.example.com"
			},
			wantErr: true,
		},
		{
			name: "unknown provider",
			mutate: func(cfg *types.Config) {
				cfg.Registry.Provider = "quay"
			},
			wantErr: true,
		},
		{
			name: "zero request delay",
			mutate: func(cfg *types.Config) {
				cfg.Registry.RequestDelay = 0
			},
			wantErr: true,
		},
		{
			name: "zero notification frequency",
			mutate: func(cfg *types.Config) {
				cfg.Check.NotificationFrequencyDays = 0
			},
			wantErr: true,
		},
		{
			name: "empty state path",
			mutate: func(cfg *types.Config) {
				cfg.State.Path = ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Check.NotificationFrequencyDays = 3

	if err := Save(cfg, configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.Check.NotificationFrequencyDays != 3 {
		t.Errorf("expected saved frequency 3, got %d", loaded.Check.NotificationFrequencyDays)
	}
}
