// Package logging builds the structured loggers used across SecretShields.
// Log records carry metadata only (pattern ids, providers, severities,
// counts, exposure ids); callers never pass clipboard text to a logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// EnvLevel overrides the configured log level when set.
const EnvLevel = "SECRETSHIELDS_LOG_LEVEL"

// Options configures a logger.
type Options struct {
	// Level is the minimum level (debug, info, warn, error).
	Level string
	// Output defaults to os.Stderr.
	Output io.Writer
	// Prefix names the component, e.g. "monitor".
	Prefix          string
	TimeFormat      string
	ReportTimestamp bool
}

// DefaultOptions returns info-level, timestamped logging to stderr.
func DefaultOptions() Options {
	return Options{
		Level:           "info",
		Output:          os.Stderr,
		TimeFormat:      time.RFC3339,
		ReportTimestamp: true,
	}
}

// ParseLevel converts a level name to log.Level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// New creates a logger from opts. The SECRETSHIELDS_LOG_LEVEL environment
// variable takes precedence over opts.Level.
func New(opts Options) *log.Logger {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if lvl := os.Getenv(EnvLevel); lvl != "" {
		opts.Level = lvl
	}
	return log.NewWithOptions(opts.Output, log.Options{
		Level:           ParseLevel(opts.Level),
		Prefix:          opts.Prefix,
		TimeFormat:      opts.TimeFormat,
		ReportTimestamp: opts.ReportTimestamp,
	})
}

// Discard returns a logger that drops every record. Used as the default
// when a component is constructed without one.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// Or returns l, or a discarding logger when l is nil.
func Or(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
