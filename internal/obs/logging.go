package obs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tingly-dev/tingly-porter/internal/config"
)

// RotationConfig holds lumberjack rotation settings
type RotationConfig struct {
	Filename   string // Log file path
	MaxSize    int    // Maximum size in megabytes
	MaxBackups int    // Maximum number of old log files to retain
	MaxAge     int    // Maximum number of days to retain old log files
	Compress   bool   // Compress old log files
}

// DefaultRotationConfig returns default rotation settings for file
func DefaultRotationConfig(file string) *RotationConfig {
	return &RotationConfig{
		Filename:   file,
		MaxSize:    10,
		MaxBackups: 10,
		MaxAge:     30,
		Compress:   true,
	}
}

// NewRotatingWriter creates a lumberjack logger, creating the parent directory
func NewRotatingWriter(cfg *RotationConfig) (*lumberjack.Logger, error) {
	if cfg.Filename == "" {
		return nil, fmt.Errorf("log file name is empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Filename), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}, nil
}

// SetupLogging configures the standard logrus logger from cfg.
// The returned closer releases the log file, if any.
func SetupLogging(cfg config.LogConfig, recent *RecentLogHook) (io.Closer, error) {
	return setupLogger(logrus.StandardLogger(), cfg, recent)
}

func setupLogger(logger *logrus.Logger, cfg config.LogConfig, recent *RecentLogHook) (io.Closer, error) {
	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}
	logger.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	if recent != nil {
		logger.AddHook(recent)
	}

	if cfg.File == "" {
		return nopCloser{}, nil
	}

	rotation := DefaultRotationConfig(cfg.File)
	if cfg.MaxSizeMB > 0 {
		rotation.MaxSize = cfg.MaxSizeMB
	}
	if cfg.MaxBackups > 0 {
		rotation.MaxBackups = cfg.MaxBackups
	}
	if cfg.MaxAgeDays > 0 {
		rotation.MaxAge = cfg.MaxAgeDays
	}
	rotation.Compress = cfg.Compress

	writer, err := NewRotatingWriter(rotation)
	if err != nil {
		return nil, err
	}
	logger.SetOutput(io.MultiWriter(os.Stderr, writer))
	return writer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
