package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	charmLog "github.com/charmbracelet/log"

	"job-trail/internal/config"
)

// New builds the root logger. Components derive children with WithPrefix.
func New(w io.Writer, appName string, cfg config.LogConfig) (*charmLog.Logger, error) {
	level, err := charmLog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}
	if w == nil {
		w = os.Stderr
	}

	return charmLog.NewWithOptions(w, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       formatter(cfg.Format),
	}), nil
}

// Discard is a logger for tests and for callers constructed without one.
func Discard() *charmLog.Logger {
	return charmLog.NewWithOptions(io.Discard, charmLog.Options{Level: charmLog.FatalLevel})
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *charmLog.Logger) *charmLog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

func formatter(name string) charmLog.Formatter {
	switch name {
	case "json":
		return charmLog.JSONFormatter
	case "logfmt":
		return charmLog.LogfmtFormatter
	default:
		return charmLog.TextFormatter
	}
}
