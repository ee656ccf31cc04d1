package heap

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_WarnOnForcedRelease(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	SetLogger(zap.New(core))
	defer SetLogger(zap.NewNop())

	a := NewArena()
	a.Create([]byte("still live"), nil)
	id, _ := a.Create([]byte("released"), nil)
	a.Release(id)

	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	entries := logs.FilterMessage("arena closed with live resources").All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 warn entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["forced_releases"]; got != int64(1) {
		t.Fatalf("Expected forced_releases 1, got %v", got)
	}
}

func TestLogger_CleanCloseIsSilent(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	SetLogger(zap.New(core))
	defer SetLogger(zap.NewNop())

	a := NewArena()
	id, _ := a.Create([]byte("x"), nil)
	a.Release(id)

	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if logs.Len() != 0 {
		t.Fatalf("Expected no entries for clean close, got %d", logs.Len())
	}
}
