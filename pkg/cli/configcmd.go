package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/adbflow/pkg/config"
	"github.com/devicelab-dev/adbflow/pkg/editor"
	"github.com/devicelab-dev/adbflow/pkg/manager"
)

var configCommand = &cli.Command{
	Name:  "config",
	Usage: "Show and change the global configuration",
	Subcommands: []*cli.Command{
		{
			Name:   "show",
			Usage:  "Print the current configuration",
			Action: runConfigShow,
		},
		{
			Name:      "set-location",
			Usage:     "Change the directory project documents are saved in",
			ArgsUsage: "<path>",
			Action:    runConfigSetLocation,
		},
		{
			Name:   "edit",
			Usage:  "Open the config document in your editor",
			Action: runConfigEdit,
		},
	},
}

func runConfigShow(c *cli.Context) error {
	m := manager.Default()
	cfg := m.Config()

	fmt.Printf("config file:   %s\n", config.FilePath())
	fmt.Printf("save location: %s\n", cfg.SaveLocation)
	fmt.Printf("current:       %s\n", cfg.RecentProjectID)
	fmt.Printf("recent:        %v\n", cfg.MostRecentProjectIDs)
	fmt.Printf("common commands (%d):\n", len(cfg.CommonCommands))
	for _, cmd := range cfg.CommonCommands {
		fmt.Printf("  %-15s %-8s %q\n", cmd.Keyword, cmd.Type, cmd.Value)
	}
	return nil
}

func runConfigSetLocation(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("path is required")
	}

	m := manager.Default()
	if err := m.SetSaveLocation(path); err != nil {
		return err
	}
	fmt.Printf("Save location set to %s\n", path)
	return nil
}

func runConfigEdit(c *cli.Context) error {
	m := manager.Default()
	m.Config() // ensure defaults are written out on first run

	res := editor.Open(config.FilePath())
	if !res.Success {
		return fmt.Errorf("editor: %s", res.Error)
	}
	return nil
}
