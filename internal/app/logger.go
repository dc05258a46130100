package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/mpmf/NexxtTask/internal/config"
)

// NewDefaultLogger returns the JSON logger used until the configuration
// has been read.
func NewDefaultLogger(w io.Writer) zerolog.Logger {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.TimestampFieldName = "timestamp"

	return zerolog.New(w).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Logger()
}

// NewApplicationLogger reconfigures logger for env: local gets trace level
// and a console writer, dev debug and prod info.
func NewApplicationLogger(logger zerolog.Logger, env string, w io.Writer) (zerolog.Logger, error) {
	switch env {
	case config.EnvDev:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case config.EnvProd:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case config.EnvLocal:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)

		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = w
		w = consoleWriter
	default:
		logger.Error().
			Str("env", env).
			Msg("unknown env")
		return logger, fmt.Errorf("unknown env: %s", env)
	}

	return logger.Output(w), nil
}
