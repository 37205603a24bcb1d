package logging

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-management-api/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
	gormlogger "gorm.io/gorm/logger"
)

// New builds the application logger from configuration.
// When LOG_FILE is set, output is mirrored to a rotating file.
func New(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if cfg.LogFile != "" {
		logFile := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
		logger.SetOutput(io.MultiWriter(os.Stdout, logFile))
	}

	return logger
}

// NewGormLogger routes GORM's SQL logging through logrus.
func NewGormLogger(logger *logrus.Logger, cfg *config.Config) gormlogger.Interface {
	level := gormlogger.Warn
	if cfg.GinMode == "debug" && logger.IsLevelEnabled(logrus.DebugLevel) {
		level = gormlogger.Info
	}

	return gormlogger.New(logger, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
