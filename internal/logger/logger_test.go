package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitCreatesLogDir(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	t.Cleanup(func() { Logger = nil })

	if _, err := os.Stat(filepath.Dir(LogPath(configDir))); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", filepath.Dir(LogPath(configDir)))
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}
}

func TestLogPath(t *testing.T) {
	got := LogPath("/tmp/cfg")
	want := filepath.Join("/tmp/cfg", "logs", "droptime.log")
	if got != want {
		t.Errorf("LogPath() = %q, want %q", got, want)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Config{Output: &buf}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { Logger = nil })

	Debug("hidden debug")
	Info("hidden info")
	Warn("settings repaired", "field", "slotTimes")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected debug/info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "settings repaired") || !strings.Contains(out, "slotTimes") {
		t.Errorf("expected warning with fields, got %q", out)
	}
}

func TestHelpersBeforeInit(t *testing.T) {
	Logger = nil
	// Must not panic
	Debug("x")
	Info("x")
	Warn("x")
	Error("x")
}
