// Package logger builds the zap logger shared by the binaries.
package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the level and encoding of log output.
type Config struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
}

func DefaultConfig() Config {
	return Config{Level: "info", Format: "json"}
}

// New creates a logger writing to stderr.
func New(cfg Config) (*zap.Logger, error) {
	return NewWithSink(cfg, zapcore.Lock(os.Stderr))
}

// NewWithSink creates a logger writing to ws.
func NewWithSink(cfg Config, ws zapcore.WriteSyncer) (*zap.Logger, error) {
	lvl := strings.TrimSpace(cfg.Level)
	if lvl == "" {
		lvl = "info"
	}
	level, err := zapcore.ParseLevel(lvl)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %s: %w", cfg.Level, err)
	}

	var encoder zapcore.Encoder
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "console":
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(ec)
	case "", "json":
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(ec)
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	core := zapcore.NewCore(encoder, ws, level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}
