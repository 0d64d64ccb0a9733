package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestL_LazyInit(t *testing.T) {
	mu.Lock()
	logger = nil
	mu.Unlock()

	if L() == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestInit_Production(t *testing.T) {
	l := Init(true)
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if L() != l {
		t.Error("expected L to return the initialized logger")
	}
	if !l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("expected info level enabled in production")
	}
	if l.Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected debug level disabled in production")
	}
}
