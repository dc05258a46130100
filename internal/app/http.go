package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/mpmf/NexxtTask/internal/config"
	v1 "github.com/mpmf/NexxtTask/internal/delivery/http/v1"
)

// NewRouter builds the gin engine serving the v1 API under /api/v1.
func (a *App) NewRouter() *gin.Engine {
	if a.Config.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	v1Handler := v1.New(a.Logger, a.Auth, a.Tasks, a.Tags, a.Users)
	v1Handler.Register(router.Group("/api/v1"))

	return router
}

// ListenAndServeHTTP serves the API until ctx is canceled or the process
// receives SIGINT or SIGTERM, then shuts the server down gracefully.
func (a *App) ListenAndServeHTTP(ctx context.Context) error {
	httpCfg := a.Config.HTTP

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: a.NewRouter(),
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			a.Logger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.Logger.Info().
		Msg("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		return err
	}
	a.Logger.Info().Msg("shut down http server")

	return nil
}
