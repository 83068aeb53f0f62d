// Package logging configures the global zap logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init builds a logger for level and format ("console" or "json") and
// installs it as the zap global. The returned function flushes it.
func Init(level, format string) (func(), error) {
	var zapCfg zap.Config
	if format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if level == "" {
		level = "info"
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logging: parse level %q: %w", level, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	zap.ReplaceGlobals(logger)

	return func() { _ = logger.Sync() }, nil
}
