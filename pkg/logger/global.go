package logger

import (
	"os"
	"sync"
)

var (
	globalLogger *Logger
	once         sync.Once
)

// GetLogger returns the process-wide logger, initializing it on first use.
// Level defaults to warn and can be raised via LOG_LEVEL or DEBUG=true.
func GetLogger() *Logger {
	once.Do(func() {
		if globalLogger == nil {
			level := "warn"
			if os.Getenv("DEBUG") == "true" {
				level = "debug"
			} else if os.Getenv("LOG_LEVEL") != "" {
				level = os.Getenv("LOG_LEVEL")
			}

			globalLogger = New(Config{
				Level:  level,
				Format: "json",
				Output: "stdout",
			})
		}
	})
	return globalLogger
}

// SetLogger replaces the process-wide logger.
func SetLogger(l *Logger) {
	globalLogger = l
}
