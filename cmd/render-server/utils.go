package main

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultConfigPath is used when RENDER_CONFIG_FILE is not set
const DefaultConfigPath = "/app/render_config.yaml"

// GetConfigPath returns the config file path from RENDER_CONFIG_FILE or the default
func GetConfigPath() string {
	if path := os.Getenv("RENDER_CONFIG_FILE"); path != "" {
		return path
	}
	return DefaultConfigPath
}

// NewLogger creates a production logger at level
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
