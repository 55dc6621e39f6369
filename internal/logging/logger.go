// Package logging configures the global zerolog logger and the one-line
// startup summary each binary emits.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LevelEnv names the environment variable holding the log level.
const LevelEnv = "TEXTFX_LOG_LEVEL"

// Init configures the global logger from TEXTFX_LOG_LEVEL (debug, info, warn,
// error; default info). Inside Lambda output stays JSON so CloudWatch can
// index it; elsewhere a console writer on stderr is used.
func Init() {
	InitLevel(os.Getenv(LevelEnv))
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	InitWriter(zerolog.ConsoleWriter{Out: os.Stderr})
}

// InitWriter sends the global logger to w.
func InitWriter(w io.Writer) {
	log.Logger = log.Output(w)
}

// InitLevel sets the global level from its name and returns the level used.
func InitLevel(name string) zerolog.Level {
	level := ParseLevel(name)
	zerolog.SetGlobalLevel(level)
	return level
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
