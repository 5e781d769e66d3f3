package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"wasim/internal/constants"
	"wasim/internal/models"
	"wasim/internal/security"
	"wasim/internal/validation"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
)

// Environment overrides
const (
	EnvPort           = "WASIM_PORT"
	EnvSeedPath       = "WASIM_SEED_PATH"
	EnvDBPath         = "WASIM_DB_PATH"
	EnvCurrentUserJID = "WASIM_CURRENT_USER_JID"
	EnvLogLevel       = "WASIM_LOG_LEVEL"
)

var (
	ErrMissingStateSource = models.ConfigError{Message: "either simulation.seed_path or database.path is required"}
	ErrInvalidPort        = models.ConfigError{Message: "server port must be between 1 and 65535"}
)

// LoadConfig reads a JSON or TOML config file, chosen by extension, fills defaults and
// applies environment overrides.
func LoadConfig(path string) (*models.Config, error) {
	if err := security.ValidateFilePath(path); err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	file, err := os.ReadFile(path) // #nosec G304 - Path validated by security.ValidateFilePath above
	if err != nil {
		return nil, err
	}

	var config models.Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(file), &config); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config: %w", err)
		}
	default:
		if err := json.Unmarshal(file, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	}

	applyDefaults(&config)
	if err := applyEnvironmentOverrides(&config); err != nil {
		return nil, err
	}
	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Default returns a config usable without a file
func Default() *models.Config {
	config := &models.Config{}
	applyDefaults(config)
	config.Database.Path = constants.DefaultDatabasePath
	return config
}

func applyDefaults(c *models.Config) {
	if c.Server.Port == 0 {
		c.Server.Port = constants.DefaultServerPort
	}
	if c.Server.ReadTimeoutSec <= 0 {
		c.Server.ReadTimeoutSec = constants.DefaultServerReadTimeoutSec
	}
	if c.Server.WriteTimeoutSec <= 0 {
		c.Server.WriteTimeoutSec = constants.DefaultServerWriteTimeoutSec
	}
	if c.Server.IdleTimeoutSec <= 0 {
		c.Server.IdleTimeoutSec = constants.DefaultServerIdleTimeoutSec
	}
	if c.Simulation.MaxContextMessages <= 0 {
		c.Simulation.MaxContextMessages = constants.DefaultMaxContextMessages
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "wasim"
	}
	if c.Tracing.SampleRate <= 0 {
		c.Tracing.SampleRate = 0.1
	}
	if c.LogLevel == "" {
		c.LogLevel = logrus.InfoLevel.String()
	}
}

func applyEnvironmentOverrides(c *models.Config) error {
	if port := os.Getenv(EnvPort); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return models.ConfigError{Message: fmt.Sprintf("invalid %s: %s", EnvPort, port)}
		}
		c.Server.Port = p
	}
	if path := os.Getenv(EnvSeedPath); path != "" {
		c.Simulation.SeedPath = path
	}
	if path := os.Getenv(EnvDBPath); path != "" {
		c.Database.Path = path
	}
	if jid := os.Getenv(EnvCurrentUserJID); jid != "" {
		c.Simulation.CurrentUserJID = jid
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.LogLevel = level
	}
	return nil
}

func validate(c *models.Config) error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return ErrInvalidPort
	}
	if c.Simulation.SeedPath == "" && c.Database.Path == "" {
		return ErrMissingStateSource
	}
	if c.Simulation.SeedPath != "" {
		if err := security.ValidateFilePath(c.Simulation.SeedPath); err != nil {
			return models.ConfigError{Message: fmt.Sprintf("invalid seed path: %v", err)}
		}
	}
	if c.Database.Path != "" {
		if err := security.ValidateFilePath(c.Database.Path); err != nil {
			return models.ConfigError{Message: fmt.Sprintf("invalid database path: %v", err)}
		}
	}
	if jid := c.Simulation.CurrentUserJID; jid != "" && !validation.IsIndividualJID(jid) {
		return models.ConfigError{Message: fmt.Sprintf("invalid current user JID: %s", jid)}
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return models.ConfigError{Message: fmt.Sprintf("invalid log level: %s", c.LogLevel)}
	}
	if c.Tracing.SampleRate > 1 {
		return models.ConfigError{Message: "tracing sample rate must not exceed 1"}
	}
	return nil
}
