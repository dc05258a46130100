package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpmf/NexxtTask/internal/config"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, config.EnvLocal, cfg.Env)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.NotEmpty(t, cfg.Client.Fingerprint)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
env: dev
http:
  port: "9090"
database:
  driver: pgx
  dsn: postgres://localhost/tasks
auth:
  signing_key: from-file
  access_token_ttl: 1m
`), 0o644))

	t.Setenv("NEXXTTASK_AUTH_SIGNING_KEY", "from-env")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, config.EnvDev, cfg.Env)
	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/tasks", cfg.Database.DSN)
	assert.Equal(t, "from-env", cfg.Auth.SigningKey)
	assert.Equal(t, time.Minute, cfg.Auth.AccessTokenTTL)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("env: [unclosed"), 0o644))

	_, err := config.LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			Env:      config.EnvProd,
			Database: config.DatabaseConfig{Driver: "sqlite", DSN: "tasks.db"},
			Auth: config.AuthConfig{
				SigningKey:      "k",
				AccessTokenTTL:  time.Minute,
				RefreshTokenTTL: time.Hour,
			},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown env", func(c *config.Config) { c.Env = "staging" }},
		{"unknown driver", func(c *config.Config) { c.Database.Driver = "mysql" }},
		{"empty dsn", func(c *config.Config) { c.Database.DSN = "" }},
		{"empty signing key", func(c *config.Config) { c.Auth.SigningKey = "" }},
		{"zero ttl", func(c *config.Config) { c.Auth.AccessTokenTTL = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	cfg.Env = config.EnvDev
	cfg.Database.DSN = "/tmp/x.db"
	cfg.Auth.SigningKey = "saved"

	require.NoError(t, config.SaveConfig(path, cfg))

	loaded, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.EnvDev, loaded.Env)
	assert.Equal(t, "/tmp/x.db", loaded.Database.DSN)
	assert.Equal(t, "saved", loaded.Auth.SigningKey)
	assert.Equal(t, cfg.Auth.RefreshTokenTTL, loaded.Auth.RefreshTokenTTL)
}
