// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup installs the global logger. Development gets a console writer,
// everything else gets JSON lines on stdout.
func Setup(env, level string) zerolog.Logger {
	var w io.Writer = os.Stdout
	if env == "" || env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	l := zerolog.New(w).With().Timestamp().Str("service", "medipay").Logger()
	log.Logger = l
	return l
}

// Nop returns a logger that discards everything; used by tests.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
