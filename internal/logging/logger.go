// Package logging provides a structured logging wrapper around charmbracelet/log.
// Logs always go to stderr so that stdout carries only results.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// EnvLevel names the environment variable that sets the default level.
const EnvLevel = "MDPATCH_LOG_LEVEL"

// defaultLogger is the package-level default logger instance.
//
//nolint:gochecknoglobals // Package-level logger is intentional for convenience
var (
	defaultLogger     *log.Logger
	defaultLoggerOnce sync.Once
)

func getDefaultLogger() *log.Logger {
	defaultLoggerOnce.Do(func() {
		if defaultLogger == nil {
			defaultLogger = New(levelFromEnv("info"))
		}
	})
	return defaultLogger
}

// New creates a stderr logger with timestamps, for scripted use.
// Valid levels: "debug", "info", "warn", "error".
func New(level string) *log.Logger {
	return NewWithWriter(os.Stderr, level, true)
}

// NewInteractive creates a stderr logger without timestamps, for use when
// stderr is a terminal.
func NewInteractive(level string) *log.Logger {
	return NewWithWriter(os.Stderr, level, false)
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(w io.Writer, level string, timestamps bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: timestamps,
		TimeFormat:      time.TimeOnly,
		ReportCaller:    false,
	})

	setLoggerLevel(logger, level)

	return logger
}

// ParseLevel converts a level name to a log.Level. Unknown names give info.
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

// LevelFromEnv returns the level named by MDPATCH_LOG_LEVEL, or fallback.
func LevelFromEnv(fallback string) string {
	return levelFromEnv(fallback)
}

func levelFromEnv(fallback string) string {
	if v := strings.TrimSpace(os.Getenv(EnvLevel)); v != "" {
		return v
	}
	return fallback
}

func setLoggerLevel(logger *log.Logger, level string) {
	logger.SetLevel(ParseLevel(level))
}

// Default returns the package-level default logger.
func Default() *log.Logger {
	return getDefaultLogger()
}

// SetDefault sets the package-level default logger.
func SetDefault(logger *log.Logger) {
	defaultLoggerOnce.Do(func() {})
	defaultLogger = logger
}

// SetLevel updates the log level of the default logger.
func SetLevel(level string) {
	setLoggerLevel(getDefaultLogger(), level)
}
