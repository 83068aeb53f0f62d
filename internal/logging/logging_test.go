package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInit(t *testing.T) {
	defer zap.ReplaceGlobals(zap.NewNop())

	tests := []struct {
		level  string
		format string
		want   zapcore.Level
	}{
		{"debug", "console", zapcore.DebugLevel},
		{"warn", "json", zapcore.WarnLevel},
		{"", "console", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		flush, err := Init(tt.level, tt.format)
		if err != nil {
			t.Fatalf("Init(%q, %q) failed: %v", tt.level, tt.format, err)
		}
		if !zap.L().Core().Enabled(tt.want) {
			t.Errorf("Init(%q): level %v not enabled", tt.level, tt.want)
		}
		if tt.want > zapcore.DebugLevel && zap.L().Core().Enabled(tt.want-1) {
			t.Errorf("Init(%q): level %v should be disabled", tt.level, tt.want-1)
		}
		flush()
	}
}

func TestInit_InvalidLevel(t *testing.T) {
	if _, err := Init("loud", "console"); err == nil {
		t.Error("expected error for invalid level")
	}
}
