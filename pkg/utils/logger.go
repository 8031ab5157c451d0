// Package utils holds process-wide helpers shared by the cvtext commands.
package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a zap logger writing to stderr, so stdout stays free for
// extracted text. When debug is true it uses the development config
// (human-readable, debug level); otherwise JSON at info level with ISO8601 times.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopmentConfig().Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	// Every extraction outcome is logged once; sampling would drop some of a batch.
	cfg.Sampling = nil
	return cfg.Build(zap.Fields(zap.String("service", "cvtext")))
}
