package utils

import (
	"io"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2/log"
)

// ParseLogLevel maps a LOG_LEVEL string onto a fiber log level
func ParseLogLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return log.LevelTrace
	case "debug":
		return log.LevelDebug
	case "warn", "warning":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}

// SetupLogger configures the process-wide fiber logger. When logFile is set,
// output goes to both stderr and the file. The returned closer must be closed
// on shutdown.
func SetupLogger(level, logFile string) (io.Closer, error) {
	log.SetLevel(ParseLogLevel(level))

	if logFile == "" {
		return io.NopCloser(nil), nil
	}

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(os.Stderr, file))
	return file, nil
}
