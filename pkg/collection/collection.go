// Package collection runs Postman collections against the backend through
// the newman CLI.
package collection

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/devicelab-dev/adbflow/pkg/logger"
)

const envNewmanPath = "ADBFLOW_NEWMAN"

// Result reports the outcome of a collection run. A failure is data for the
// caller to display; it never crashes the process.
type Result struct {
	Success bool
	Error   string
}

// Run executes the collection file through newman with the cli reporter and
// waits for it to finish. Reporter output goes straight to the terminal.
func Run(ctx context.Context, path string) Result {
	if _, err := os.Stat(path); err != nil {
		return Result{Success: false, Error: fmt.Sprintf("cannot open %s: %v", path, err)}
	}

	bin, err := findNewman()
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}

	logger.Info("running collection %s", path)
	cmd := exec.CommandContext(ctx, bin, "run", path, "-r", "cli")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		logger.Error("collection run failed: %v", err)
		return Result{Success: false, Error: err.Error()}
	}
	return Result{Success: true}
}

// findNewman locates the newman binary.
func findNewman() (string, error) {
	if env := os.Getenv(envNewmanPath); env != "" {
		return env, nil
	}

	if path, err := exec.LookPath("newman"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("newman not found in PATH; set %s or install newman (npm install -g newman)", envNewmanPath)
}
