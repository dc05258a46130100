package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mpmf/NexxtTask/internal/config"
	"github.com/mpmf/NexxtTask/internal/services"
	"github.com/mpmf/NexxtTask/internal/store"
)

// App holds the opened store and the services built on top of it.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  *store.SQLStore

	Auth  services.AuthService
	Tasks services.TaskService
	Tags  services.TagService
	Users services.UserService
}

// New opens the configured database, applies pending migrations and wires
// the services. Close releases the database.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	s, err := OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	authCfg := cfg.Auth
	return &App{
		Config: cfg,
		Logger: logger,
		Store:  s,
		Auth: services.NewAuthService(
			logger,
			s,
			authCfg.Issuer,
			[]byte(authCfg.SigningKey),
			authCfg.AccessTokenTTL,
			authCfg.RefreshTokenTTL,
		),
		Tasks: services.NewTaskService(logger, s),
		Tags:  services.NewTagService(logger, s),
		Users: services.NewUserService(logger, s),
	}, nil
}

// Close closes the store.
func (a *App) Close() error {
	return a.Store.Close()
}

// OpenStore connects to the configured database. A SQLite file's parent
// directory is created when missing.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*store.SQLStore, error) {
	if cfg.Driver == store.DriverSQLite && !isMemoryDSN(cfg.DSN) {
		dir := filepath.Dir(cfg.DSN)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error().
				Err(err).
				Str("dir", dir).
				Msg("failed to create database directory")
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	s, err := store.Open(ctx, store.Options{
		Driver:         cfg.Driver,
		DSN:            cfg.DSN,
		ConnectTimeout: cfg.ConnectTimeout,
	})
	if err != nil {
		logger.Error().
			Err(err).
			Str("driver", cfg.Driver).
			Msg("failed to open database")
		return nil, err
	}

	version, err := s.SchemaVersion(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}
	logger.Info().
		Str("driver", cfg.Driver).
		Int("schema_version", version).
		Msg("opened database")

	return s, nil
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}
