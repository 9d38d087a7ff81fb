// Package logger builds the charmbracelet/log loggers used across termserve.
// Everything goes to stderr; stdout belongs to the server protocol and the CLI output.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

var output io.Writer = os.Stderr

// New creates a prefixed logger at the global log level.
func New(prefix string) *log.Logger {
	return log.NewWithOptions(output, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: true,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}

// NewWithConfig creates a logger with custom config
func NewWithConfig(prefix string, level log.Level, caller bool, showTimestamp bool, fmt log.Formatter) *log.Logger {
	return log.NewWithOptions(output, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportCaller:    caller,
		ReportTimestamp: showTimestamp,
		Formatter:       fmt,
	})
}

// Setup points the package level charm logger at stderr with the given level.
// Debug also reports callers.
func Setup(debug bool) {
	log.SetOutput(output)
	log.SetReportTimestamp(true)
	if debug {
		log.SetLevel(log.DebugLevel)
		log.SetReportCaller(true)
		return
	}
	log.SetLevel(log.InfoLevel)
	log.SetReportCaller(false)
}
