package config

import (
	"os"
	"path/filepath"
	"testing"

	"wasim/internal/constants"
	"wasim/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig(t *testing.T) {
	jsonPath := writeConfig(t, "config.json", `{
		"server": {"port": 9090},
		"simulation": {
			"current_user_jid": "10000000000@s.whatsapp.net",
			"seed_path": "/data/seed.json"
		},
		"database": {"path": "/data/wasim.db", "persistOnShutdown": true},
		"log_level": "debug"
	}`)

	tomlPath := writeConfig(t, "config.toml", `
log_level = "warn"

[server]
port = 7070
read_timeout_sec = 5

[simulation]
seed_path = "/data/seed.json"
max_context_messages = 50

[tracing]
enabled = true
sample_rate = 0.5
`)

	tests := []struct {
		name     string
		path     string
		setEnv   map[string]string
		wantErr  bool
		validate func(*testing.T, *models.Config)
	}{
		{
			name: "json config",
			path: jsonPath,
			validate: func(t *testing.T, c *models.Config) {
				assert.Equal(t, 9090, c.Server.Port)
				assert.Equal(t, constants.DefaultServerReadTimeoutSec, c.Server.ReadTimeoutSec)
				assert.Equal(t, "10000000000@s.whatsapp.net", c.Simulation.CurrentUserJID)
				assert.Equal(t, "/data/wasim.db", c.Database.Path)
				assert.True(t, c.Database.PersistOnShutdown)
				assert.Equal(t, "debug", c.LogLevel)
				assert.Equal(t, constants.DefaultMaxContextMessages, c.Simulation.MaxContextMessages)
			},
		},
		{
			name: "toml config",
			path: tomlPath,
			validate: func(t *testing.T, c *models.Config) {
				assert.Equal(t, 7070, c.Server.Port)
				assert.Equal(t, 5, c.Server.ReadTimeoutSec)
				assert.Equal(t, 50, c.Simulation.MaxContextMessages)
				assert.True(t, c.Tracing.Enabled)
				assert.Equal(t, 0.5, c.Tracing.SampleRate)
				assert.Equal(t, "wasim", c.Tracing.ServiceName)
				assert.Equal(t, "warn", c.LogLevel)
			},
		},
		{
			name: "environment overrides",
			path: jsonPath,
			setEnv: map[string]string{
				EnvPort:           "8181",
				EnvDBPath:         "/tmp/other.db",
				EnvSeedPath:       "/tmp/other.json",
				EnvCurrentUserJID: "19998887777@s.whatsapp.net",
				EnvLogLevel:       "error",
			},
			validate: func(t *testing.T, c *models.Config) {
				assert.Equal(t, 8181, c.Server.Port)
				assert.Equal(t, "/tmp/other.db", c.Database.Path)
				assert.Equal(t, "/tmp/other.json", c.Simulation.SeedPath)
				assert.Equal(t, "19998887777@s.whatsapp.net", c.Simulation.CurrentUserJID)
				assert.Equal(t, "error", c.LogLevel)
			},
		},
		{
			name:    "non-numeric port override",
			path:    jsonPath,
			setEnv:  map[string]string{EnvPort: "eighty"},
			wantErr: true,
		},
		{
			name:    "bad current user jid",
			path:    jsonPath,
			setEnv:  map[string]string{EnvCurrentUserJID: "120363041234567890@g.us"},
			wantErr: true,
		},
		{
			name:    "bad log level",
			path:    jsonPath,
			setEnv:  map[string]string{EnvLogLevel: "chatty"},
			wantErr: true,
		},
		{
			name:    "missing file",
			path:    filepath.Join(t.TempDir(), "nope.json"),
			wantErr: true,
		},
		{
			name:    "traversal path",
			path:    "../../etc/config.json",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.setEnv {
				t.Setenv(k, v)
			}

			cfg, err := LoadConfig(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr error
	}{
		{
			name:    "no state source",
			file:    "config.json",
			content: `{"server": {"port": 8080}}`,
			wantErr: ErrMissingStateSource,
		},
		{
			name:    "port out of range",
			file:    "config.json",
			content: `{"server": {"port": 70000}, "database": {"path": "x.db"}}`,
			wantErr: ErrInvalidPort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.file, tt.content))
			assert.Equal(t, tt.wantErr, err)
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "config.json", `{"server":`))
		assert.ErrorContains(t, err, "JSON")
	})

	t.Run("malformed toml", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "config.toml", `[server`))
		assert.ErrorContains(t, err, "TOML")
	})
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, constants.DefaultServerPort, c.Server.Port)
	assert.Equal(t, constants.DefaultDatabasePath, c.Database.Path)
	assert.Equal(t, "info", c.LogLevel)
	assert.NoError(t, validate(c))
}
