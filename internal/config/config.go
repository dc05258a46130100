package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

// EnvPrefix is prepended to every environment variable override,
// e.g. NEXXTTASK_DATABASE_DSN for database.dsn.
const EnvPrefix = "NEXXTTASK"

// HTTPConfig holds the API server settings.
type HTTPConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            string        `mapstructure:"port" yaml:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// DatabaseConfig selects the store backend.
type DatabaseConfig struct {
	// Driver is "sqlite" or "pgx".
	Driver string `mapstructure:"driver" yaml:"driver"`

	// DSN is a file path for SQLite or a connection URL for PostgreSQL.
	DSN string `mapstructure:"dsn" yaml:"dsn"`

	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`
}

// AuthConfig holds the JWT settings.
type AuthConfig struct {
	Issuer          string        `mapstructure:"issuer" yaml:"issuer"`
	SigningKey      string        `mapstructure:"signing_key" yaml:"signing_key"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl" yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl" yaml:"refresh_token_ttl"`
}

// ClientConfig holds settings of the terminal client.
type ClientConfig struct {
	// Fingerprint identifies this machine's sessions.
	Fingerprint string `mapstructure:"fingerprint" yaml:"fingerprint"`
}

// Config is the top-level application configuration.
type Config struct {
	Env      string         `mapstructure:"env" yaml:"env"`
	HTTP     HTTPConfig     `mapstructure:"http" yaml:"http"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Auth     AuthConfig     `mapstructure:"auth" yaml:"auth"`
	Client   ClientConfig   `mapstructure:"client" yaml:"client"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/nexxttask/config.yaml.
func DefaultConfigPath() string {
	dir, err := configDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(dir, "config.yaml")
}

// DefaultDatabasePath returns the default SQLite file location.
func DefaultDatabasePath() string {
	dir, err := configDir()
	if err != nil {
		return filepath.Join(".", "nexxttask.db")
	}
	return filepath.Join(dir, "nexxttask.db")
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "nexxttask"), nil
}

func setDefaults(v *viper.Viper) {
	hostname, _ := os.Hostname()

	v.SetDefault("env", EnvLocal)
	v.SetDefault("http.host", "localhost")
	v.SetDefault("http.port", "8080")
	v.SetDefault("http.shutdown_timeout", 5*time.Second)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", DefaultDatabasePath())
	v.SetDefault("database.connect_timeout", 10*time.Second)
	v.SetDefault("auth.issuer", "nexxttask")
	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.access_token_ttl", 15*time.Minute)
	v.SetDefault("auth.refresh_token_ttl", 30*24*time.Hour)
	v.SetDefault("client.fingerprint", "cli:"+hostname)
}

// LoadConfig reads configuration from the given YAML file path using Viper,
// then applies NEXXTTASK_* environment overrides. A missing file yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if !slices.Contains([]string{EnvDev, EnvProd, EnvLocal}, c.Env) {
		return fmt.Errorf("unknown env %q", c.Env)
	}
	if c.Database.Driver != "sqlite" && c.Database.Driver != "pgx" {
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn must be set")
	}
	if c.Auth.SigningKey == "" {
		return fmt.Errorf("auth.signing_key must be set (or %s_AUTH_SIGNING_KEY)", EnvPrefix)
	}
	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		return errors.New("token ttls must be positive")
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("env", cfg.Env)
	v.Set("http", cfg.HTTP)
	v.Set("database", cfg.Database)
	v.Set("auth", cfg.Auth)
	v.Set("client", cfg.Client)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
