package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/adbflow/pkg/adb"
)

var deviceCommand = &cli.Command{
	Name:  "device",
	Usage: "Inspect and reset the connected device",
	Subcommands: []*cli.Command{
		{
			Name:   "list",
			Usage:  "List connected device serials",
			Action: runDeviceList,
		},
		{
			Name:  "reset",
			Usage: "Force-stop and restart the device-side client application",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "package",
					Usage: "Application package to reset",
					Value: adb.DefaultResetPackage,
				},
				&cli.StringFlag{
					Name:  "activity",
					Usage: "Launcher activity started after the reset",
					Value: adb.DefaultResetActivity,
				},
			},
			Action: runDeviceReset,
		},
	},
}

func runDeviceList(c *cli.Context) error {
	a, err := adb.New(c.String("serial"))
	if err != nil {
		return err
	}

	serials, err := a.Devices(c.Context)
	if err != nil {
		return err
	}
	if len(serials) == 0 {
		fmt.Println("No connected devices.")
		return nil
	}
	for _, s := range serials {
		fmt.Println(s)
	}
	return nil
}

func runDeviceReset(c *cli.Context) error {
	a, err := adb.New(c.String("serial"))
	if err != nil {
		return err
	}

	fmt.Printf("Resetting %s ...\n", c.String("package"))
	res := a.ResetApplication(c.Context, c.String("package"), c.String("activity"))
	if !res.Success {
		return fmt.Errorf("reset failed: %s", res.Error)
	}
	fmt.Println("Application restarted.")
	return nil
}
