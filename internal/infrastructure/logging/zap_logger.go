package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mbendaoud/fretplan-go/internal/infrastructure/config"
)

// ZapLogger adapts a zap.Logger to the application's Logger interface.
// Batch pipeline code logs through the context, so one process-level
// instance is shared by the CLI and the daemon.
type ZapLogger struct {
	logger *zap.Logger
}

// New builds a ZapLogger from the logging configuration
func New(cfg *config.LoggingConfig) (*ZapLogger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	encoding := "json"
	if cfg.Format == "text" {
		encoding = "console"
	}

	outputPath := "stdout"
	switch cfg.Output {
	case "stderr":
		outputPath = "stderr"
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("logging output is \"file\" but file_path is empty")
		}
		outputPath = cfg.FilePath
	}

	zapCfg := zap.Config{
		Level:             level,
		Development:       false,
		DisableCaller:     !cfg.IncludeCaller,
		DisableStacktrace: !cfg.IncludeStacktrace,
		Encoding:          encoding,
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:     "message",
			LevelKey:       "level",
			TimeKey:        "time",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{outputPath},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return &ZapLogger{logger: logger}, nil
}

// NewNop returns a logger that discards everything (used in tests)
func NewNop() *ZapLogger {
	return &ZapLogger{logger: zap.NewNop()}
}

// Log implements the application Logger interface
func (l *ZapLogger) Log(level, message string, metadata map[string]interface{}) {
	fields := make([]zap.Field, 0, len(metadata))
	for k, v := range metadata {
		fields = append(fields, zap.Any(k, v))
	}

	switch strings.ToUpper(level) {
	case "DEBUG":
		l.logger.Debug(message, fields...)
	case "WARN", "WARNING":
		l.logger.Warn(message, fields...)
	case "ERROR":
		l.logger.Error(message, fields...)
	default:
		l.logger.Info(message, fields...)
	}
}

// Named returns a logger scoped under the given component name
func (l *ZapLogger) Named(name string) *ZapLogger {
	return &ZapLogger{logger: l.logger.Named(name)}
}

// Sync flushes buffered log entries; call before process exit
func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}
