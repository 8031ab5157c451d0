package utils

import (
	"testing"

	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	t.Run("debug mode enables debug level", func(t *testing.T) {
		logger, err := NewLogger(true)
		if err != nil {
			t.Fatalf("NewLogger(true) error: %v", err)
		}
		if !logger.Core().Enabled(zap.DebugLevel) {
			t.Error("debug level should be enabled")
		}
		_ = logger.Sync()
	})

	t.Run("production mode starts at info", func(t *testing.T) {
		logger, err := NewLogger(false)
		if err != nil {
			t.Fatalf("NewLogger(false) error: %v", err)
		}
		if logger.Core().Enabled(zap.DebugLevel) {
			t.Error("debug level should be disabled")
		}
		if !logger.Core().Enabled(zap.InfoLevel) {
			t.Error("info level should be enabled")
		}
		_ = logger.Sync()
	})
}
