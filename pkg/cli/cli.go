// Package cli provides the command-line interface for adbflow.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/adbflow/pkg/adb"
	"github.com/devicelab-dev/adbflow/pkg/adb/mock"
	"github.com/devicelab-dev/adbflow/pkg/config"
	"github.com/devicelab-dev/adbflow/pkg/logger"
	"github.com/devicelab-dev/adbflow/pkg/manager"
	"github.com/devicelab-dev/adbflow/pkg/model"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "serial",
		Aliases: []string{"s"},
		Usage:   "Device serial to target (auto-detected when omitted)",
		EnvVars: []string{"ADBFLOW_SERIAL"},
	},
	&cli.StringFlag{
		Name:    "project",
		Aliases: []string{"P"},
		Usage:   "Project id to operate on (defaults to the most recently opened project)",
		EnvVars: []string{"ADBFLOW_PROJECT"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"ADBFLOW_VERBOSE"},
	},
	&cli.BoolFlag{
		Name:  "dry-run",
		Usage: "Echo dispatches instead of calling adb",
	},
}

// Execute runs the CLI.
func Execute() {
	app := &cli.App{
		Name:    "adbflow",
		Usage:   "Store and replay ADB command flows for device testing",
		Version: Version,
		Description: `adbflow keeps named projects of ADB broadcast commands and replays
them on a connected Android device, one command at a time with a
configurable delay.

Examples:
  adbflow project create "Warehouse Demo"
  adbflow command add --keyword user --type speech --value bob
  adbflow flow run Login
  adbflow flow run Login        # again while running: stops the flow`,
		Flags: GlobalFlags,
		Before: func(c *cli.Context) error {
			logPath := filepath.Join(config.LogsDir(),
				fmt.Sprintf("adbflow-%s.log", time.Now().Format("2006-01-02")))
			return logger.Init(logPath, c.Bool("verbose"))
		},
		After: func(c *cli.Context) error {
			logger.Close()
			return nil
		},
		Commands: []*cli.Command{
			projectCommand,
			commandCommand,
			flowCommand,
			configCommand,
			deviceCommand,
			collectionCommand,
			watchCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newDispatcher builds the dispatcher selected by the global flags.
func newDispatcher(c *cli.Context) (adb.Dispatcher, error) {
	if c.Bool("dry-run") {
		return &mock.Dispatcher{Echo: true}, nil
	}
	return adb.New(c.String("serial"))
}

// currentProject resolves the project the command operates on: --project if
// set, the most recently opened project otherwise.
func currentProject(c *cli.Context, m *manager.Manager) (*model.Project, error) {
	id := c.String("project")
	if id == "" {
		id = m.Config().RecentProjectID
	}
	if id == "" {
		return nil, fmt.Errorf("no project selected; run 'adbflow project open <id>' or pass --project")
	}
	return m.Project(id)
}
