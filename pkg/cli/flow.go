package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/adbflow/pkg/engine"
	"github.com/devicelab-dev/adbflow/pkg/flowfile"
	"github.com/devicelab-dev/adbflow/pkg/manager"
	"github.com/devicelab-dev/adbflow/pkg/model"
)

var flowCommand = &cli.Command{
	Name:  "flow",
	Usage: "Manage and run command flows",
	Subcommands: []*cli.Command{
		{
			Name:      "add",
			Usage:     "Add an empty flow to the current project",
			ArgsUsage: "<name>",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "delay", Usage: "Delay between commands in milliseconds", Value: 1000},
				&cli.StringFlag{Name: "description", Aliases: []string{"d"}},
			},
			Action: runFlowAdd,
		},
		{
			Name:   "list",
			Usage:  "List the current project's flows",
			Action: runFlowList,
		},
		{
			Name:      "delete",
			Usage:     "Delete a flow by name",
			ArgsUsage: "<name>",
			Action:    runFlowDelete,
		},
		{
			Name:      "run",
			Usage:     "Run a flow; Ctrl-C stops it after the current command",
			ArgsUsage: "<name>",
			Action:    runFlowRun,
		},
		{
			Name:      "add-command",
			Usage:     "Append a command to a flow",
			ArgsUsage: "<flow-name>",
			Flags:     commandFlags,
			Action:    runFlowAddCommand,
		},
		{
			Name:      "remove-command",
			Usage:     "Remove a command from a flow by keyword",
			ArgsUsage: "<flow-name> <keyword>",
			Action:    runFlowRemoveCommand,
		},
		{
			Name:      "reorder",
			Usage:     "Move a flow command from one position to another (0-based)",
			ArgsUsage: "<flow-name>",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "from", Required: true},
				&cli.IntFlag{Name: "to", Required: true},
			},
			Action: runFlowReorder,
		},
		{
			Name:      "import",
			Usage:     "Import a flow from a YAML file into the current project",
			ArgsUsage: "<file>",
			Action:    runFlowImport,
		},
		{
			Name:      "export",
			Usage:     "Export a flow to a YAML file",
			ArgsUsage: "<name> <file>",
			Action:    runFlowExport,
		},
	},
}

// flowByName resolves a flow name inside the current project.
func flowByName(c *cli.Context, m *manager.Manager, name string) (*model.Project, *model.Flow, error) {
	p, err := currentProject(c, m)
	if err != nil {
		return nil, nil, err
	}
	f, ok := p.FlowByName(name)
	if !ok {
		return nil, nil, fmt.Errorf("no flow named %q in project %s", name, p.ID)
	}
	return p, f, nil
}

func runFlowAdd(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("flow name is required")
	}

	m := manager.Default()
	p, err := currentProject(c, m)
	if err != nil {
		return err
	}

	f := model.NewFlow(name, c.String("description"), c.Int("delay"))
	if err := m.AddFlow(p.ID, f); err != nil {
		return err
	}
	fmt.Printf("Added flow %q to %s\n", name, p.ID)
	return nil
}

func runFlowList(c *cli.Context) error {
	m := manager.Default()
	p, err := currentProject(c, m)
	if err != nil {
		return err
	}

	if len(p.Flows) == 0 {
		fmt.Printf("Project %s has no flows.\n", p.ID)
		return nil
	}
	for _, f := range p.Flows {
		fmt.Printf("%-20s delay %dms, %d commands\n", f.Name, f.Delay, len(f.Commands))
		for _, cmd := range f.Commands {
			fmt.Printf("    %-15s %-8s %q\n", cmd.Keyword, cmd.Type, cmd.Value)
		}
	}
	return nil
}

func runFlowDelete(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("flow name is required")
	}

	m := manager.Default()
	p, f, err := flowByName(c, m, name)
	if err != nil {
		return err
	}
	if _, err := m.DeleteFlow(p.ID, f.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted flow %q\n", name)
	return nil
}

func runFlowRun(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("flow name is required")
	}

	m := manager.Default()
	_, f, err := flowByName(c, m, name)
	if err != nil {
		return err
	}

	dispatcher, err := newDispatcher(c)
	if err != nil {
		return err
	}

	eng := engine.New(dispatcher, engine.Callbacks{
		OnCommandStart: func(idx, total int, cmd model.Command) {
			fmt.Printf("[%d/%d] %s (%s) ... ", idx+1, total, cmd.Keyword, cmd.Type)
		},
		OnCommandDone: func(idx int, cmd model.Command, res engine.CommandResult) {
			if res.Success {
				fmt.Println("ok")
			} else {
				fmt.Printf("failed: %s\n", res.Error)
			}
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := eng.Run(ctx, *f)
	if err != nil {
		return err
	}
	if res.Canceled {
		fmt.Printf("Flow %q stopped after %d of %d commands\n", name, res.Dispatched, len(f.Commands))
		return nil
	}
	fmt.Printf("Flow %q completed in %s\n", name, res.Duration.Round(time.Millisecond))
	return nil
}

func runFlowAddCommand(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("flow name is required")
	}

	m := manager.Default()
	p, f, err := flowByName(c, m, name)
	if err != nil {
		return err
	}

	cmd := commandFromFlags(c)
	if err := m.AddFlowCommand(p.ID, f.ID, cmd); err != nil {
		return err
	}
	fmt.Printf("Added %q to flow %q\n", cmd.Keyword, name)
	return nil
}

func runFlowRemoveCommand(c *cli.Context) error {
	name, keyword := c.Args().Get(0), c.Args().Get(1)
	if name == "" || keyword == "" {
		return fmt.Errorf("flow name and keyword are required")
	}

	m := manager.Default()
	p, f, err := flowByName(c, m, name)
	if err != nil {
		return err
	}
	found, err := m.DeleteFlowCommand(p.ID, f.ID, keyword)
	if err != nil {
		return err
	}
	if !found {
		fmt.Printf("No command %q in flow %q\n", keyword, name)
		return nil
	}
	fmt.Printf("Removed %q from flow %q\n", keyword, name)
	return nil
}

func runFlowReorder(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("flow name is required")
	}

	m := manager.Default()
	p, f, err := flowByName(c, m, name)
	if err != nil {
		return err
	}
	if err := m.ReorderFlowCommands(p.ID, f.ID, c.Int("from"), c.Int("to")); err != nil {
		return err
	}
	fmt.Printf("Reordered flow %q\n", name)
	return nil
}

func runFlowImport(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("flow file is required")
	}

	m := manager.Default()
	p, err := currentProject(c, m)
	if err != nil {
		return err
	}

	f, err := flowfile.ParseFile(path)
	if err != nil {
		return err
	}
	if err := m.AddFlow(p.ID, *f); err != nil {
		return err
	}
	fmt.Printf("Imported flow %q into %s\n", f.Name, p.ID)
	return nil
}

func runFlowExport(c *cli.Context) error {
	name, path := c.Args().Get(0), c.Args().Get(1)
	if name == "" || path == "" {
		return fmt.Errorf("flow name and output file are required")
	}

	m := manager.Default()
	_, f, err := flowByName(c, m, name)
	if err != nil {
		return err
	}
	if err := flowfile.WriteFile(path, *f); err != nil {
		return err
	}
	fmt.Printf("Exported flow %q to %s\n", name, path)
	return nil
}
