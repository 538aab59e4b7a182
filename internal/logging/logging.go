// Package logging sets up the process-wide structured logger.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a console-writer zerolog.Logger at the given level
// ("debug", "info", "warn", "error"; unrecognized values fall back to
// info). Unlike the teacher's logger package, every level here actually
// writes — the teacher's Debugf/Infof/etc. were stubbed out to no-ops.
func New(level string) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(level))

	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
