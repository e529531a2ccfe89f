package config

import (
	"path/filepath"
	"testing"
)

func TestHome_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(envHome, dir)
	ResetHome()
	t.Cleanup(ResetHome)

	if got := Home(); got != dir {
		t.Errorf("Home() = %q, want %q", got, dir)
	}
	if got := FilePath(); got != filepath.Join(dir, "config.json") {
		t.Errorf("FilePath() = %q", got)
	}
	if got := LogsDir(); got != filepath.Join(dir, "logs") {
		t.Errorf("LogsDir() = %q", got)
	}
}

func TestHome_Cached(t *testing.T) {
	first := t.TempDir()
	t.Setenv(envHome, first)
	ResetHome()
	t.Cleanup(ResetHome)

	if got := Home(); got != first {
		t.Fatalf("Home() = %q, want %q", got, first)
	}

	// The resolved home sticks until reset, even if the env changes.
	t.Setenv(envHome, t.TempDir())
	if got := Home(); got != first {
		t.Errorf("Home() = %q after env change, want cached %q", got, first)
	}
}
