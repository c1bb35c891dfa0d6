package birch

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestSetLogLevel(t *testing.T) {
	t.Cleanup(func() { logLevel.SetLevel(zapcore.WarnLevel) })

	tests := []struct {
		level   string
		want    zapcore.Level
		wantErr bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"ERROR", zapcore.ErrorLevel, false},
		{"loud", zapcore.ErrorLevel, true},
	}
	for _, tt := range tests {
		err := SetLogLevel(tt.level)
		if (err != nil) != tt.wantErr {
			t.Errorf("SetLogLevel(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
		}
		if got := logLevel.Level(); got != tt.want {
			t.Errorf("after SetLogLevel(%q) level = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestParseLevelError(t *testing.T) {
	_, err := parseLevel("loud")
	if err == nil || !strings.Contains(err.Error(), `log level "loud"`) {
		t.Errorf("err = %v", err)
	}
}

func TestSetLoggerNil(t *testing.T) {
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev) })

	SetLogger(nil)
	if Logger() == nil {
		t.Fatal("Logger should never be nil")
	}
	warn("silenced")
}

func TestWarnLogsFields(t *testing.T) {
	logs := observeWarnings(t)
	n := NewNode("hero")
	warn("something odd", nodeField(n), zap.Int("count", 2))

	entries := logs.FilterLevelExact(zapcore.WarnLevel).All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	node, ok := fields["node"].(map[string]any)
	if !ok || node["name"] != "hero" {
		t.Errorf("node field = %v", fields["node"])
	}
	if fields["count"] != int64(2) {
		t.Errorf("count = %v", fields["count"])
	}
}

func TestWarnPanicsInDebug(t *testing.T) {
	withDebug(t)
	expectPanic(t, "birch debug: broken", func() { warn("broken") })
}

func TestNodeFieldNil(t *testing.T) {
	f := nodeField(nil)
	if f.Key != "node" || f.String != "<nil>" {
		t.Errorf("field = %+v", f)
	}
}
