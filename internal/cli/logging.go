package cli

import (
	"io"
	"time"

	"github.com/erauner12/mcp-toolservers/internal/mcpserver/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// setupLogging configures the global logger and returns it. Output never goes
// to stdout, which carries the stdio transport.
func setupLogging(cfg *config.Config, w io.Writer) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLogLevel(cfg.LogLevel))

	if cfg.Debug {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Caller().Logger()
	} else {
		log.Logger = zerolog.New(w).
			With().
			Timestamp().
			Logger()
	}
	return log.Logger
}

// parseLogLevel converts a string log level to zerolog.Level
func parseLogLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
