// Package logging configures the library-wide logger. A shared library must
// stay silent unless the embedding process asks for output, so the logger
// discards everything until UNPDF_LOG or UNPDF_LOG_LEVEL is set in the
// environment.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logger *logrus.Logger
	once   sync.Once
)

// L returns the shared logger, initializing it from the environment on
// first use.
func L() *logrus.Logger {
	once.Do(setup)
	return logger
}

// Component returns an entry tagged with the originating component, e.g.
// "reader" or "layout".
func Component(name string) *logrus.Entry {
	return L().WithField("component", name)
}

func setup() {
	logger = logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(logrus.WarnLevel)

	level := strings.ToLower(os.Getenv("UNPDF_LOG_LEVEL"))
	enabled := os.Getenv("UNPDF_LOG") != "" || level != ""
	if !enabled {
		return
	}
	logger.SetOutput(os.Stderr)
	switch level {
	case "trace":
		logger.SetLevel(logrus.TraceLevel)
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "", "warn", "warning":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.WarnLevel)
	}
}
