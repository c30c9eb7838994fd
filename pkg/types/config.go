package types

// GotifyConfig configuración para notificaciones Gotify
type GotifyConfig struct {
	URL      string `yaml:"url" json:"url" env:"GOTIFY_URL"`
	Token    string `yaml:"token" json:"token" env:"GOTIFY_TOKEN"`
	Priority int    `yaml:"priority" json:"priority" env:"GOTIFY_PRIORITY"`
	Title    string `yaml:"title" json:"title" env:"GOTIFY_TITLE"`
	Enabled  bool   `yaml:"enabled" json:"enabled" env:"GOTIFY_ENABLED"`
}

// HubConfig configuración para el cliente de Docker Hub
type HubConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	Timeout int  `yaml:"timeout" json:"timeout"` // en segundos
}

// OCIConfig configuración para el cliente genérico de registros OCI
type OCIConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	Timeout int  `yaml:"timeout" json:"timeout"` // en segundos
}

// RegistryConfig representa la configuración de registros
type RegistryConfig struct {
	Provider     string    `yaml:"provider" json:"provider"` // "hub" o "oci"
	Hub          HubConfig `yaml:"hub" json:"hub"`
	OCI          OCIConfig `yaml:"oci" json:"oci"`
	RequestDelay int       `yaml:"request_delay" json:"request_delay"` // segundos mínimos entre peticiones
	Timeout      int       `yaml:"timeout" json:"timeout"`             // en segundos
	CacheTTL     int       `yaml:"cache_ttl" json:"cache_ttl"`         // en segundos, 0 desactiva la caché
}

// CheckConfig representa la configuración de la verificación de actualizaciones
type CheckConfig struct {
	IntervalHours             int    `yaml:"interval_hours" json:"interval_hours" env:"CHECK_INTERVAL"`
	NotificationFrequencyDays int    `yaml:"notification_frequency" json:"notification_frequency" env:"NOTIFICATION_FREQUENCY"`
	SelfImage                 string `yaml:"self_image" json:"self_image"`
}

// StateConfig representa la configuración del estado persistido
type StateConfig struct {
	Path string `yaml:"path" json:"path" env:"STATE_FILE"`
}

// Config representa la configuración completa de la aplicación
type Config struct {
	Gotify   GotifyConfig   `yaml:"gotify" json:"gotify"`
	Registry RegistryConfig `yaml:"registry" json:"registry"`
	Check    CheckConfig    `yaml:"check" json:"check"`
	State    StateConfig    `yaml:"state" json:"state"`
}
