// Package logger builds the application's zerolog logger and bridges GORM's
// logger onto it so SQL diagnostics share the same sink and format.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
)

// New returns a logger writing JSON to stdout, or console output when pretty is set.
// Unknown levels fall back to info.
func New(level string, pretty bool) zerolog.Logger {
	var w io.Writer = os.Stdout
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(w, level)
}

// NewWithWriter returns a logger writing to w at the given level.
func NewWithWriter(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// GORM adapts log to GORM's logger. Slow statements and errors are reported;
// record-not-found is expected traffic and stays quiet.
func GORM(log zerolog.Logger, slowThreshold time.Duration) gormlogger.Interface {
	gormLevel := gormlogger.Warn
	switch {
	case log.GetLevel() <= zerolog.DebugLevel:
		gormLevel = gormlogger.Info
	case log.GetLevel() >= zerolog.ErrorLevel:
		gormLevel = gormlogger.Error
	}
	return gormlogger.New(gormWriter{log: log.With().Str("component", "gorm").Logger()}, gormlogger.Config{
		SlowThreshold:             slowThreshold,
		LogLevel:                  gormLevel,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
		Colorful:                  false,
	})
}

// gormWriter emits GORM lines without a level of their own; GORM has already
// filtered them by its configured LogLevel.
type gormWriter struct {
	log zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.log.Log().Msg(fmt.Sprintf(format, args...))
}
