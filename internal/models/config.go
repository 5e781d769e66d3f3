package models

// Config holds the application configuration
type Config struct {
	Server     ServerConfig     `json:"server" toml:"server"`
	Simulation SimulationConfig `json:"simulation" toml:"simulation"`
	Database   DatabaseConfig   `json:"database" toml:"database"`
	Tracing    TracingConfig    `json:"tracing" toml:"tracing"`
	LogLevel   string           `json:"log_level" toml:"log_level"`
}

// ServerConfig holds the tool server's HTTP settings
type ServerConfig struct {
	Port            int `json:"port" toml:"port"`
	ReadTimeoutSec  int `json:"readTimeoutSec" toml:"read_timeout_sec"`
	WriteTimeoutSec int `json:"writeTimeoutSec" toml:"write_timeout_sec"`
	IdleTimeoutSec  int `json:"idleTimeoutSec" toml:"idle_timeout_sec"`
}

// SimulationConfig controls the simulated WhatsApp account
type SimulationConfig struct {
	CurrentUserJID     string `json:"current_user_jid" toml:"current_user_jid"`
	SeedPath           string `json:"seed_path" toml:"seed_path"`
	MaxContextMessages int    `json:"maxContextMessages" toml:"max_context_messages"`
}

// DatabaseConfig holds snapshot database settings
type DatabaseConfig struct {
	Path              string `json:"path" toml:"path"`
	PersistOnShutdown bool   `json:"persistOnShutdown" toml:"persist_on_shutdown"`
}

// TracingConfig holds OpenTelemetry settings
type TracingConfig struct {
	ServiceName    string  `json:"service_name" toml:"service_name"`
	ServiceVersion string  `json:"service_version" toml:"service_version"`
	Environment    string  `json:"environment" toml:"environment"`
	OTLPEndpoint   string  `json:"otlp_endpoint" toml:"otlp_endpoint"`
	SampleRate     float64 `json:"sample_rate" toml:"sample_rate"`
	Enabled        bool    `json:"enabled" toml:"enabled"`
	UseStdout      bool    `json:"use_stdout" toml:"use_stdout"`
}

type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}
