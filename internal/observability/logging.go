// Package observability builds the engine's zap logger. The battle CLI owns
// stdout for narration, so logs default to stderr.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/faiths/internal/config"
)

// AppName tags every log line.
const AppName = "faiths"

// NewLogger builds the engine logger from cfg.
//
// Precondition: cfg.Level parses as a zap level; cfg.Format is "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zapCfg, err := zapConfig(cfg)
	if err != nil {
		return nil, err
	}
	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building %s logger for %s: %w", cfg.Format, zapCfg.OutputPaths[0], err)
	}
	return logger, nil
}

func zapConfig(cfg config.LoggingConfig) (zap.Config, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return zap.Config{}, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zc zap.Config
	switch cfg.Format {
	case "json":
		zc = zap.NewProductionConfig()
		// Sampling would drop repeated per-move debug lines during a replay.
		zc.Sampling = nil
	case "console":
		zc = zap.NewDevelopmentConfig()
		// Injury warnings are routine; stack traces are for errors only.
		zc.Development = false
		zc.DisableStacktrace = true
	default:
		return zap.Config{}, fmt.Errorf("unknown log format %q (want json or console)", cfg.Format)
	}

	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	out := cfg.Output
	if out == "" {
		out = "stderr"
	}
	zc.OutputPaths = []string{out}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.InitialFields = map[string]any{"app": AppName}
	return zc, nil
}
