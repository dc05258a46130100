package app_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpmf/NexxtTask/internal/app"
	"github.com/mpmf/NexxtTask/internal/config"
)

func testConfig(dsn string) *config.Config {
	return &config.Config{
		Env:      config.EnvProd,
		HTTP:     config.HTTPConfig{Host: "127.0.0.1", Port: "0", ShutdownTimeout: time.Second},
		Database: config.DatabaseConfig{Driver: "sqlite", DSN: dsn},
		Auth: config.AuthConfig{
			Issuer:          "nexxttask-test",
			SigningKey:      "secret",
			AccessTokenTTL:  time.Minute,
			RefreshTokenTTL: time.Hour,
		},
	}
}

func TestNew_CreatesDatabaseDirectory(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "dir", "tasks.db")

	a, err := app.New(context.Background(), testConfig(dsn), zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	assert.FileExists(t, dsn)
	version, err := a.Store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Positive(t, version)
}

func TestNewRouter_ServesAPI(t *testing.T) {
	a, err := app.New(context.Background(), testConfig(":memory:"), zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	router := a.NewRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListenAndServeHTTP_StopsOnCancel(t *testing.T) {
	a, err := app.New(context.Background(), testConfig(":memory:"), zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.ListenAndServeHTTP(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestNewApplicationLogger(t *testing.T) {
	var buf bytes.Buffer
	base := app.NewDefaultLogger(&buf)

	logger, err := app.NewApplicationLogger(base, config.EnvProd, &buf)
	require.NoError(t, err)
	logger.Info().Msg("hello")
	assert.Contains(t, buf.String(), `"message":"hello"`)
	assert.Contains(t, buf.String(), `"timestamp"`)

	_, err = app.NewApplicationLogger(base, "staging", &buf)
	assert.Error(t, err)
}
