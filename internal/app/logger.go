package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-tracker/internal/config"
)

func InitDefaultLogger() zerolog.Logger {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.TimestampFieldName = "timestamp"

	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Logger()

	logger.Info().Msg("initialized default logger")
	return logger
}

func (a *App) MustInitApplicationLogger() {
	logger, err := applicationLogger(a.logger, a.cfg.Env, os.Stdout)
	if err != nil {
		a.logger.Error().
			Str("env", a.cfg.Env).
			Msg("unknown env")
		panic(err)
	}

	a.logger = logger
	a.logger.Info().Msg("initialized application logger")
}

func applicationLogger(logger zerolog.Logger, env string, out io.Writer) (zerolog.Logger, error) {
	w := out
	switch env {
	case config.EnvDev:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case config.EnvProd:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case config.EnvLocal:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)

		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = out
		w = consoleWriter
	default:
		return logger, fmt.Errorf("unknown env: %s", env)
	}

	return logger.Output(w), nil
}
