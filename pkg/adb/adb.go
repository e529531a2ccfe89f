// Package adb dispatches commands to a connected Android device through the
// adb binary.
package adb

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/devicelab-dev/adbflow/pkg/logger"
	"github.com/devicelab-dev/adbflow/pkg/model"
)

// Broadcast intents understood by the device-side client. A command's type
// selects which one carries its payload.
const (
	IntentSpeech  = "frontline.intent.action.SPEECH"
	IntentBarcode = "frontline.intent.action.BARCODE"
)

// Device-side client application targeted by ResetApplication.
const (
	DefaultResetPackage  = "de.ubimax.frontline.client"
	DefaultResetActivity = "de.ubimax.android.client.XActivityLauncher"
)

// IntentFor maps a command type to its broadcast intent. Anything that is
// not speech is sent as a barcode.
func IntentFor(typ model.CommandType) string {
	if typ == model.TypeSpeech {
		return IntentSpeech
	}
	return IntentBarcode
}

// Result is the outcome of a single dispatch. Errors are data: a failed
// dispatch never panics or crashes the caller.
type Result struct {
	Success bool
	Output  string
	Error   string
}

// Dispatcher sends one command's payload to the device transport.
type Dispatcher interface {
	Send(ctx context.Context, intent, payload string) Result
}

// ADB implements Dispatcher on top of the adb binary.
type ADB struct {
	adbPath string
	serial  string
}

const envADBPath = "ADBFLOW_ADB"

// New creates an ADB dispatcher for the given serial. An empty serial lets
// adb pick the device; pass a serial when several are connected.
func New(serial string) (*ADB, error) {
	path, err := findADB()
	if err != nil {
		return nil, err
	}
	return &ADB{adbPath: path, serial: serial}, nil
}

// Serial returns the device serial number, if one was set.
func (a *ADB) Serial() string {
	return a.serial
}

// Send broadcasts the payload under the intent via the device shell.
func (a *ADB) Send(ctx context.Context, intent, payload string) Result {
	shellCmd := fmt.Sprintf("am broadcast -a %s --es data %q", intent, payload)
	logger.Info("dispatching adb broadcast: %s", shellCmd)

	out, err := a.adb(ctx, "shell", shellCmd)
	if err != nil {
		logger.Error("adb broadcast failed: %v", err)
		return Result{Success: false, Error: err.Error()}
	}
	return Result{Success: true, Output: out}
}

// ResetApplication force-stops the target package, waits for it to settle,
// then starts the launcher activity again.
func (a *ADB) ResetApplication(ctx context.Context, pkg, activity string) Result {
	logger.Info("force stopping %s", pkg)
	if _, err := a.adb(ctx, "shell", "am force-stop "+pkg); err != nil {
		logger.Error("force-stop failed: %v", err)
		return Result{Success: false, Error: err.Error()}
	}

	// Give the application time to fully stop before relaunching.
	select {
	case <-time.After(2 * time.Second):
	case <-ctx.Done():
		return Result{Success: false, Error: ctx.Err().Error()}
	}

	component := pkg + "/" + activity
	logger.Info("starting %s", component)
	out, err := a.adb(ctx, "shell", "am start -n "+component)
	if err != nil {
		logger.Error("start failed: %v", err)
		return Result{Success: false, Error: err.Error()}
	}
	return Result{Success: true, Output: out}
}

// Devices lists the serials of connected devices.
func (a *ADB) Devices(ctx context.Context) ([]string, error) {
	out, err := a.adb(ctx, "devices")
	if err != nil {
		return nil, err
	}
	return parseDeviceList(out), nil
}

// parseDeviceList extracts serials in the "device" state from adb devices
// output.
func parseDeviceList(out string) []string {
	var serials []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) >= 2 && parts[1] == "device" {
			serials = append(serials, parts[0])
		}
	}
	return serials
}

// adb executes an ADB command, scoped to the serial when one is set.
func (a *ADB) adb(ctx context.Context, args ...string) (string, error) {
	cmdArgs := make([]string, 0, len(args)+2)
	if a.serial != "" {
		cmdArgs = append(cmdArgs, "-s", a.serial)
	}
	cmdArgs = append(cmdArgs, args...)

	cmd := exec.CommandContext(ctx, a.adbPath, cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errMsg := stderr.String()
		if errMsg == "" {
			errMsg = stdout.String()
		}
		return "", fmt.Errorf("adb %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(errMsg))
	}

	return stdout.String(), nil
}

// findADB locates the adb binary.
func findADB() (string, error) {
	// Explicit override first
	if env := os.Getenv(envADBPath); env != "" {
		return env, nil
	}

	if path, err := exec.LookPath("adb"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("adb not found in PATH; set %s or install the Android SDK", envADBPath)
}
