package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/quantrail/brokergate/internal/core"
)

// New creates a new zap logger. Credentials never appear in log fields;
// callers log key presence, not key material.
func New(development bool) (*zap.Logger, error) {
	var cfg zap.Config

	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}

	return cfg.Build()
}

// Must creates a logger or panics
func Must(development bool) *zap.Logger {
	log, err := New(development)
	if err != nil {
		panic(err)
	}
	return log
}

// Nop returns a logger that discards all output, for tests.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// ForMode returns a child logger tagged with the trading mode, so paper and
// live activity are distinguishable in every line.
func ForMode(log *zap.Logger, mode core.Mode) *zap.Logger {
	return log.With(zap.String("mode", mode.String()))
}
