// Package observability builds the process logger.
package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LoggerOptions controls InitLogger.
type LoggerOptions struct {
	// Level is a zerolog level name. Empty means info.
	Level string
	// JSON selects newline-delimited JSON instead of console output.
	JSON bool
	// Out defaults to stderr.
	Out io.Writer
}

// InitLogger builds a logger tagged with app, installs it as the
// global zerolog logger and returns it.
func InitLogger(app string, opts LoggerOptions) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		l, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), err
		}
		level = l
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if !opts.JSON {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger, nil
}
