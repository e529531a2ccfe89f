// Package editor launches an external editor on a document.
package editor

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/devicelab-dev/adbflow/pkg/logger"
)

// OpenResult reports the outcome of an editor launch. A failure is data for
// the caller to display; it never crashes the process.
type OpenResult struct {
	Success bool
	Error   string
}

// Open opens path in the user's editor and waits for it to exit. The editor
// is taken from $ADBFLOW_EDITOR, then $EDITOR, then vi.
func Open(path string) OpenResult {
	ed := os.Getenv("ADBFLOW_EDITOR")
	if ed == "" {
		ed = os.Getenv("EDITOR")
	}
	if ed == "" {
		ed = "vi"
	}

	if _, err := os.Stat(path); err != nil {
		return OpenResult{Success: false, Error: fmt.Sprintf("cannot open %s: %v", path, err)}
	}

	logger.Info("opening %s in %s", path, ed)
	cmd := exec.Command(ed, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		logger.Error("editor failed: %v", err)
		return OpenResult{Success: false, Error: err.Error()}
	}
	return OpenResult{Success: true}
}
