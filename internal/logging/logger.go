package logging

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the application logger. Development gets human-readable
// output; everything else logs JSON for the collector.
func NewLogger(logLevel, environment string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetLevel(parseLevel(logLevel))

	if strings.ToLower(environment) == "development" {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	}
	return logger
}

func parseLevel(logLevel string) logrus.Level {
	level, err := logrus.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
