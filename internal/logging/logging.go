package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Setup builds the application logger. An unknown level falls back to info.
func Setup(level string, w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}

	logger := log.NewWithOptions(w, log.Options{
		Prefix:          "livraria",
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           log.InfoLevel,
	})

	if level == "" {
		return logger
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		logger.Warn("invalid log level, using info", "level", level)
		return logger
	}
	logger.SetLevel(lvl)
	return logger
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
