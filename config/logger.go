// ABOUTME: Structured logger construction for roster
// ABOUTME: Wraps charmbracelet/log with the configured level on stderr
package config

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// NewLogger returns a stderr logger at the given level. Unknown levels fall
// back to warn.
func NewLogger(level string) *log.Logger {
	return newLogger(os.Stderr, level)
}

func newLogger(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          AppName,
		ReportTimestamp: true,
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.WarnLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// Logger builds the logger for c.
func (c *Config) Logger() *log.Logger {
	return NewLogger(c.LogLevel)
}
