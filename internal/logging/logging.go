// Package logging builds the charmbracelet/log loggers shared by the binaries.
package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// ParseLevel maps a config string to a log level. Unknown values fall back
// to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// ParseFormatter maps a config string to a formatter: text, json or logfmt.
func ParseFormatter(format string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// New returns a timestamped logger writing to w.
func New(w io.Writer, prefix, level, format string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(level),
		Formatter:       ParseFormatter(format),
		ReportTimestamp: true,
		Prefix:          prefix,
	})
}
