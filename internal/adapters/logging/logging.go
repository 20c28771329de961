// Package logging builds the process zap logger from configuration.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration.
type Config struct {
	Level       string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	Format      string `koanf:"format" validate:"omitempty,oneof=json console"` // "json" or "console"
	OutputPath  string `koanf:"output_path"`
	Development bool   `koanf:"development"`
}

// New creates a logger. Logs go to stderr unless OutputPath is set, so they
// never mix with results written to stdout.
func New(cfg Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(strings.ToLower(cfg.Level))
	if err != nil {
		if cfg.Level != "" {
			return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
		}
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zc.Level = level

	if cfg.Format == "console" {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zc.Encoding = "json"
	}
	zc.Sampling = nil
	zc.DisableStacktrace = !cfg.Development

	zc.OutputPaths = []string{"stderr"}
	if cfg.OutputPath != "" {
		zc.OutputPaths = []string{cfg.OutputPath}
	}

	return zc.Build()
}
