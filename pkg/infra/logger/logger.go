package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const logDir = "logs"

// NewLogger builds the process logger for mode (serve, bench, inspect). Entries
// are JSON, written asynchronously to logs/<mode>.log and echoed to stdout.
func NewLogger(mode string) (*logrus.Logger, error) {
	logger := logrus.New()

	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})
	logger.SetLevel(levelFromEnv())

	logFile, err := logPath(mode)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	asyncWriter, err := NewAsyncFileWriter(logFile, 32*1024)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize async log writer: %w", err)
	}
	logger.SetOutput(asyncWriter)
	logger.AddHook(NewConsoleHook())
	logger.ExitFunc = func(code int) {
		asyncWriter.Close()
		os.Exit(code)
	}

	return logger, nil
}

func levelFromEnv() logrus.Level {
	if os.Getenv("LOG_LEVEL") == "debug" {
		return logrus.DebugLevel
	}
	return logrus.InfoLevel
}

func logPath(mode string) (string, error) {
	if mode == "" {
		mode = "banhammer"
	}
	logFile := filepath.Clean(filepath.Join(logDir, mode+".log"))
	if !strings.HasPrefix(logFile, logDir+string(filepath.Separator)) || strings.Contains(mode, "..") {
		return "", fmt.Errorf("invalid log file path %q: must be in %s directory", logFile, logDir)
	}
	return logFile, nil
}
