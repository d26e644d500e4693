package config

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds a production (JSON) logger for format "json" and a
// development (console) logger otherwise.
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}

	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zc.Level = level
	}

	return zc.Build()
}
