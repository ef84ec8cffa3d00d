package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"prod", "local", "dev", "docker", "test"} {
		t.Run(env, func(t *testing.T) {
			l, err := NewLogger(env)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if l == nil {
				t.Fatal("nil logger")
			}
		})
	}
}

func TestNewLogger_Errors(t *testing.T) {
	if _, err := NewLogger("staging"); err == nil {
		t.Error("expected error for unknown env")
	}
	if _, err := NewLogger("prod", "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("prod", "warn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !l.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled")
	}
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	fallback := zap.NewExample()

	if FromContextOr(ctx, fallback) != fallback {
		t.Error("expected fallback without a stored logger")
	}
	if FromContext(ctx) == nil {
		t.Error("FromContext must never return nil")
	}

	stored := zap.NewNop().With(zap.String("request_id", "r1"))
	ctx = ContextWithLogger(ctx, stored)
	if FromContext(ctx) != stored || FromContextOr(ctx, fallback) != stored {
		t.Error("stored logger not returned")
	}
}
