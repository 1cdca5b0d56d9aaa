// Package logger holds the process-wide zerolog logger.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var Logger zerolog.Logger

// Init configures the global logger. With pretty set, output is
// human-readable console text instead of JSON.
func Init(service string, pretty bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	out := zerolog.New(os.Stdout)
	if pretty {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"})
	}

	Logger = out.With().Timestamp().Str("service", service).Logger()
	log.Logger = Logger
}

// Audit returns a logger for operator-visible change events, tagged so
// they can be filtered out of the application log stream.
func Audit() zerolog.Logger {
	return Logger.With().Str("log", "audit").Logger()
}

// SetLevel sets the global log level from its string name.
func SetLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
