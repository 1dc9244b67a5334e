package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates the bootstrap logger from the environment. It exists so the
// process can log before configuration is loaded; once config is available,
// rebuild with NewWithOptions so the configured values win.
func New() zerolog.Logger {
	return NewWithOptions(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// NewWithOptions creates a zerolog logger with the given level ("debug",
// "info", "warn", "error") and format ("json" or "pretty"). Unknown values
// fall back to info-level JSON output.
func NewWithOptions(level, format string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var logLevel zerolog.Level
	switch level {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	// Pretty console output for local development
	if format == "pretty" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			Level(logLevel).
			With().
			Timestamp().
			Caller().
			Str("service", "blog-content-api").
			Logger()
	}

	// JSON output for production
	return zerolog.New(os.Stdout).
		Level(logLevel).
		With().
		Timestamp().
		Str("service", "blog-content-api").
		Logger()
}
