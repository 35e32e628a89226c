// pattern: Imperative Shell

package logging

import (
	"testing"
)

func TestNopLogger(t *testing.T) {
	logger := NopLogger()

	// None of these may panic.
	logger.Debug("test")
	logger.Info("test")
	logger.Warn("test")
	logger.Error("test")
	logger.With("key", "value").Info("test with fields")
}

func TestTestLogManager_CapturesEntries(t *testing.T) {
	lm := NewTestLogManager(10)
	defer func() { _ = lm.Close() }()

	logger := lm.For("manager").With("dir", "/tmp/proj")
	logger.Debug("resolving session name")
	logger.Info("session opened", "session", "proj")

	entries := lm.Drain()
	if len(entries) != 2 {
		t.Fatalf("Drain() returned %d entries, want 2", len(entries))
	}
	if entries[0].Level != "DEBUG" {
		t.Errorf("entries[0].Level = %q, want DEBUG", entries[0].Level)
	}
	if entries[1].Scope != "manager" {
		t.Errorf("entries[1].Scope = %q, want manager", entries[1].Scope)
	}
	if entries[1].Fields["dir"] != "/tmp/proj" || entries[1].Fields["session"] != "proj" {
		t.Errorf("entries[1].Fields = %v", entries[1].Fields)
	}
	if len(lm.Drain()) != 0 {
		t.Error("second Drain() should be empty")
	}
}
