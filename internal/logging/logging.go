package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w at the named level. Unknown levels
// fall back to info.
func New(w io.Writer, level string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           parsed,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		ReportCaller:    parsed == log.DebugLevel,
	})
}

// Discard is a logger for tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
