// Package config resolves where adbflow keeps its own files: the config
// document, the default projects directory and the log directory.
package config

import (
	"os"
	"path/filepath"
	"sync"
)

const envHome = "ADBFLOW_HOME"

var (
	homeOnce sync.Once
	homeDir  string
)

// Home returns the adbflow home directory.
//
// Resolution order:
//  1. $ADBFLOW_HOME environment variable
//  2. <user config dir>/adbflow
//  3. Current working directory (development fallback)
func Home() string {
	homeOnce.Do(func() {
		homeDir = resolveHome()
	})
	return homeDir
}

// FilePath returns the well-known location of the config document.
func FilePath() string {
	return filepath.Join(Home(), "config.json")
}

// LogsDir returns <home>/logs.
func LogsDir() string {
	return filepath.Join(Home(), "logs")
}

func resolveHome() string {
	// 1. Environment variable
	if env := os.Getenv(envHome); env != "" {
		return env
	}

	// 2. Per-user config directory
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "adbflow")
	}

	// 3. Current working directory
	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}

	return "."
}

// ResetHome resets the cached home directory (for testing).
func ResetHome() {
	homeOnce = sync.Once{}
	homeDir = ""
}
