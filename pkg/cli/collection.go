package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/adbflow/pkg/collection"
)

var collectionCommand = &cli.Command{
	Name:  "collection",
	Usage: "Run Postman collections against the backend",
	Subcommands: []*cli.Command{
		{
			Name:      "run",
			Usage:     "Run a collection file through newman",
			ArgsUsage: "<file>",
			Action:    runCollectionRun,
		},
	},
}

func runCollectionRun(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("collection file is required")
	}

	res := collection.Run(c.Context, path)
	if !res.Success {
		return fmt.Errorf("collection: %s", res.Error)
	}
	return nil
}
