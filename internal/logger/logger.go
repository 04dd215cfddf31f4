package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the service logger. Development gets a console writer,
// everything else structured JSON.
func New(environment string) zerolog.Logger {
	return NewWithLevel(environment, "")
}

func NewWithLevel(environment, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var out io.Writer = os.Stdout
	if strings.EqualFold(environment, "development") {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
		if strings.EqualFold(environment, "development") {
			lvl = zerolog.DebugLevel
		}
	}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("env", environment).
		Logger()
}
