package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	log *logrus.Logger
	mu  sync.Mutex
)

// Init initializes the process-wide logger writing JSON to stdout.
// logLevel should be one of DEBUG, INFO, WARN, ERROR; anything else
// falls back to INFO.
func Init(logLevel string) {
	InitWithOutput(logLevel, os.Stdout)
}

// InitWithOutput is Init with an explicit destination
func InitWithOutput(logLevel string, out io.Writer) {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	level, err := logrus.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		level = logrus.InfoLevel
		l.Warnf("Invalid log level '%s', defaulting to INFO", logLevel)
	}
	l.SetLevel(level)

	mu.Lock()
	log = l
	mu.Unlock()

	l.WithField("level", level.String()).Debug("Logger initialized")
}

// GetLogger returns the process-wide logger, creating an INFO logger on
// first use.
func GetLogger() *logrus.Logger {
	mu.Lock()
	l := log
	mu.Unlock()
	if l == nil {
		Init("INFO")
		mu.Lock()
		l = log
		mu.Unlock()
	}
	return l
}

// Debugf logs a formatted debug message
func Debugf(format string, args ...interface{}) {
	GetLogger().Debugf(format, args...)
}

// Info logs an info message
func Info(args ...interface{}) {
	GetLogger().Info(args...)
}

// Infof logs a formatted info message
func Infof(format string, args ...interface{}) {
	GetLogger().Infof(format, args...)
}

// Warnf logs a formatted warning message
func Warnf(format string, args ...interface{}) {
	GetLogger().Warnf(format, args...)
}

// Errorf logs a formatted error message
func Errorf(format string, args ...interface{}) {
	GetLogger().Errorf(format, args...)
}

// Fatalf logs a formatted fatal message and exits
func Fatalf(format string, args ...interface{}) {
	GetLogger().Fatalf(format, args...)
}

// WithField returns a logger entry with a single field
func WithField(key string, value interface{}) *logrus.Entry {
	return GetLogger().WithField(key, value)
}

// WithFields returns a logger entry with multiple fields
func WithFields(fields logrus.Fields) *logrus.Entry {
	return GetLogger().WithFields(fields)
}

// WithServer returns an entry tagged with an MCP server id
func WithServer(serverID string) *logrus.Entry {
	return GetLogger().WithField("server_id", serverID)
}
