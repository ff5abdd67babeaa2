package app

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/dshills/chordboard/internal/config"
)

// NewLogger builds the application logger from the log settings. Output
// defaults to stderr.
func NewLogger(cfg config.LogConfig, out io.Writer) (*logrus.Logger, error) {
	if out == nil {
		out = os.Stderr
	}
	l := logrus.New()
	l.SetOutput(out)
	if err := ApplyLogConfig(l, cfg); err != nil {
		return nil, err
	}
	return l, nil
}

// ApplyLogConfig updates level and formatter in place, so a config reload
// takes effect on every component logger derived from l.
func ApplyLogConfig(l *logrus.Logger, cfg config.LogConfig) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	l.SetLevel(level)

	switch cfg.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("log format %q: %w", cfg.Format, config.ErrValidationFailed)
	}
	return nil
}

// WithComponent returns a logger tagged with the component name.
func WithComponent(l logrus.FieldLogger, component string) logrus.FieldLogger {
	return l.WithField("component", component)
}
