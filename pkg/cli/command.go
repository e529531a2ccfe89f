package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/adbflow/pkg/adb"
	"github.com/devicelab-dev/adbflow/pkg/manager"
	"github.com/devicelab-dev/adbflow/pkg/model"
)

var commandFlags = []cli.Flag{
	&cli.StringFlag{Name: "name", Usage: "Display label"},
	&cli.StringFlag{Name: "type", Usage: "Command type (barcode, speech)", Value: "barcode"},
	&cli.StringFlag{Name: "keyword", Usage: "Unique keyword within the owning list", Required: true},
	&cli.StringFlag{Name: "value", Usage: "Payload sent to the device", Required: true},
	&cli.StringFlag{Name: "description", Aliases: []string{"d"}},
}

var commonFlag = &cli.BoolFlag{
	Name:  "common",
	Usage: "Operate on the global common-command list instead of the project",
}

var commandCommand = &cli.Command{
	Name:  "command",
	Usage: "Manage and send individual ADB commands",
	Subcommands: []*cli.Command{
		{
			Name:   "add",
			Usage:  "Add a command to the current project (or the common list)",
			Flags:  append([]cli.Flag{commonFlag}, commandFlags...),
			Action: runCommandAdd,
		},
		{
			Name:      "edit",
			Usage:     "Update the command identified by its current keyword",
			ArgsUsage: "<keyword>",
			Flags:     append([]cli.Flag{commonFlag}, commandFlags...),
			Action:    runCommandEdit,
		},
		{
			Name:      "delete",
			Usage:     "Delete a command by keyword",
			ArgsUsage: "<keyword>",
			Flags:     []cli.Flag{commonFlag},
			Action:    runCommandDelete,
		},
		{
			Name:   "list",
			Usage:  "List the project's commands and the common commands",
			Action: runCommandList,
		},
		{
			Name:      "send",
			Usage:     "Dispatch a single command to the device by keyword",
			ArgsUsage: "<keyword>",
			Action:    runCommandSend,
		},
	},
}

func commandFromFlags(c *cli.Context) model.Command {
	return model.NewCommand(
		c.String("name"),
		model.CommandType(c.String("type")),
		c.String("keyword"),
		c.String("value"),
		c.String("description"),
	)
}

func runCommandAdd(c *cli.Context) error {
	m := manager.Default()
	cmd := commandFromFlags(c)

	if c.Bool("common") {
		if err := m.AddCommonCommand(cmd); err != nil {
			return err
		}
		fmt.Printf("Added common command %q\n", cmd.Keyword)
		return nil
	}

	p, err := currentProject(c, m)
	if err != nil {
		return err
	}
	if err := m.AddProjectCommand(p.ID, cmd); err != nil {
		return err
	}
	fmt.Printf("Added command %q to %s\n", cmd.Keyword, p.ID)
	return nil
}

func runCommandEdit(c *cli.Context) error {
	prev := c.Args().First()
	if prev == "" {
		return fmt.Errorf("current keyword is required")
	}

	m := manager.Default()
	cmd := commandFromFlags(c)
	cmd.ID = "" // keep the stored command's id

	if c.Bool("common") {
		if err := m.UpdateCommonCommand(prev, cmd); err != nil {
			return err
		}
		fmt.Printf("Updated common command %q\n", prev)
		return nil
	}

	p, err := currentProject(c, m)
	if err != nil {
		return err
	}
	if err := m.UpdateProjectCommand(p.ID, prev, cmd); err != nil {
		return err
	}
	fmt.Printf("Updated command %q in %s\n", prev, p.ID)
	return nil
}

func runCommandDelete(c *cli.Context) error {
	keyword := c.Args().First()
	if keyword == "" {
		return fmt.Errorf("keyword is required")
	}

	m := manager.Default()
	var (
		found bool
		err   error
	)
	if c.Bool("common") {
		found, err = m.DeleteCommonCommand(keyword)
	} else {
		var p *model.Project
		p, err = currentProject(c, m)
		if err != nil {
			return err
		}
		found, err = m.DeleteProjectCommand(p.ID, keyword)
	}
	if err != nil {
		return err
	}
	if !found {
		fmt.Printf("No command %q\n", keyword)
		return nil
	}
	fmt.Printf("Deleted command %q\n", keyword)
	return nil
}

func runCommandList(c *cli.Context) error {
	m := manager.Default()

	common := m.Config().CommonCommands
	fmt.Printf("Common commands (%d):\n", len(common))
	for _, cmd := range common {
		fmt.Printf("  %-15s %-8s %q\n", cmd.Keyword, cmd.Type, cmd.Value)
	}

	p, err := currentProject(c, m)
	if err != nil {
		return nil // no project selected: common list alone is fine
	}
	fmt.Printf("\nProject %s commands (%d):\n", p.ID, len(p.Commands))
	for _, cmd := range p.Commands {
		fmt.Printf("  %-15s %-8s %q\n", cmd.Keyword, cmd.Type, cmd.Value)
	}
	return nil
}

func runCommandSend(c *cli.Context) error {
	keyword := c.Args().First()
	if keyword == "" {
		return fmt.Errorf("keyword is required")
	}

	m := manager.Default()
	cmd, err := findCommand(c, m, keyword)
	if err != nil {
		return err
	}

	dispatcher, err := newDispatcher(c)
	if err != nil {
		return err
	}

	res := dispatcher.Send(c.Context, adb.IntentFor(cmd.Type), cmd.Value)
	if !res.Success {
		return fmt.Errorf("dispatch %q: %s", keyword, res.Error)
	}
	fmt.Printf("Sent %q (%s)\n", keyword, cmd.Type)
	return nil
}

// findCommand looks up a keyword in the current project's commands first,
// then in the common list.
func findCommand(c *cli.Context, m *manager.Manager, keyword string) (*model.Command, error) {
	if p, err := currentProject(c, m); err == nil {
		for i := range p.Commands {
			if p.Commands[i].Keyword == keyword {
				return &p.Commands[i], nil
			}
		}
	}
	common := m.Config().CommonCommands
	for i := range common {
		if common[i].Keyword == keyword {
			return &common[i], nil
		}
	}
	return nil, fmt.Errorf("no command with keyword %q", keyword)
}
