package main

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/odvcencio/guardian/pkg/config"
)

var logLevels = map[string]zapcore.Level{
	config.LogLevelDebug: zapcore.DebugLevel,
	config.LogLevelInfo:  zapcore.InfoLevel,
	config.LogLevelWarn:  zapcore.WarnLevel,
	config.LogLevelError: zapcore.ErrorLevel,
}

var logEncodings = map[string]string{
	config.LogFormatConsole: "console",
	config.LogFormatJSON:    "json",
}

// newLogger builds a stderr logger for the requested level and format.
func newLogger(level, format string) (*zap.Logger, error) {
	zapLevel, ok := logLevels[level]
	if !ok {
		return nil, fmt.Errorf("unsupported log level: %s", level)
	}
	encoding, ok := logEncodings[format]
	if !ok {
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.Encoding = encoding
	if encoding == "console" {
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
