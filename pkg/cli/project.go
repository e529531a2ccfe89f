package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/adbflow/pkg/editor"
	"github.com/devicelab-dev/adbflow/pkg/manager"
	"github.com/devicelab-dev/adbflow/pkg/model"
	"github.com/devicelab-dev/adbflow/pkg/store"
)

var projectCommand = &cli.Command{
	Name:  "project",
	Usage: "Create, open and manage projects",
	Subcommands: []*cli.Command{
		{
			Name:      "create",
			Usage:     "Create a new project",
			ArgsUsage: "<name>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "description", Aliases: []string{"d"}},
			},
			Action: runProjectCreate,
		},
		{
			Name:   "list",
			Usage:  "List recently opened projects",
			Action: runProjectList,
		},
		{
			Name:      "open",
			Usage:     "Mark a project as the current one",
			ArgsUsage: "<id>",
			Action:    runProjectOpen,
		},
		{
			Name:      "show",
			Usage:     "Print a project's commands and flows",
			ArgsUsage: "[id]",
			Action:    runProjectShow,
		},
		{
			Name:      "delete",
			Usage:     "Delete a project's document",
			ArgsUsage: "<id>",
			Action:    runProjectDelete,
		},
		{
			Name:      "edit",
			Usage:     "Open a project's document in your editor",
			ArgsUsage: "[id]",
			Action:    runProjectEdit,
		},
	},
}

var watchCommand = &cli.Command{
	Name:   "watch",
	Usage:  "Report project documents changed on disk until interrupted",
	Action: runWatch,
}

func runProjectCreate(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("project name is required")
	}

	m := manager.Default()
	p, err := m.CreateProject(name, c.String("description"))
	if err != nil {
		return err
	}
	if err := m.RecordProjectOpened(p.ID); err != nil {
		return err
	}
	fmt.Printf("Created project %s (%s)\n", p.Name, p.ID)
	return nil
}

func runProjectList(c *cli.Context) error {
	m := manager.Default()
	projects := m.AllProjects()
	if len(projects) == 0 {
		fmt.Println("No recent projects.")
		return nil
	}

	current := m.Config().RecentProjectID
	for _, p := range projects {
		marker := " "
		if p.ID == current {
			marker = "*"
		}
		fmt.Printf("%s %-20s %s  (%d commands, %d flows)\n", marker, p.ID, p.Name, len(p.Commands), len(p.Flows))
	}
	return nil
}

func runProjectOpen(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("project id is required")
	}

	m := manager.Default()
	if _, err := m.Project(id); err != nil {
		return err
	}
	if err := m.RecordProjectOpened(id); err != nil {
		return err
	}
	fmt.Printf("Opened project %s\n", id)
	return nil
}

func runProjectShow(c *cli.Context) error {
	m := manager.Default()
	p, err := projectFromArgOrCurrent(c, m)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n", p.Name, p.ID)
	if p.Description != "" {
		fmt.Printf("  %s\n", p.Description)
	}
	fmt.Printf("  created %s, updated %s\n\n", p.CreatedAt.Format("2006-01-02"), p.UpdatedAt.Format("2006-01-02"))

	fmt.Printf("Commands (%d):\n", len(p.Commands))
	for _, cmd := range p.Commands {
		fmt.Printf("  %-15s %-8s %q\n", cmd.Keyword, cmd.Type, cmd.Value)
	}

	fmt.Printf("\nFlows (%d):\n", len(p.Flows))
	for _, f := range p.Flows {
		fmt.Printf("  %-20s delay %dms, %d commands\n", f.Name, f.Delay, len(f.Commands))
	}
	return nil
}

func runProjectDelete(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("project id is required")
	}

	m := manager.Default()
	existed, err := m.DeleteProject(id)
	if err != nil {
		return err
	}
	if !existed {
		fmt.Printf("No project %s\n", id)
		return nil
	}
	fmt.Printf("Deleted project %s\n", id)
	return nil
}

func runProjectEdit(c *cli.Context) error {
	m := manager.Default()
	p, err := projectFromArgOrCurrent(c, m)
	if err != nil {
		return err
	}

	path := m.ProjectStore().Path(store.KindProject, p.ID)
	res := editor.Open(path)
	if !res.Success {
		return fmt.Errorf("editor: %s", res.Error)
	}

	// Re-read the document so a bad hand edit is reported right away.
	edited, err := m.Project(p.ID)
	if err != nil {
		return fmt.Errorf("project %s no longer loads: %w", p.ID, err)
	}
	if err := edited.Validate(); err != nil {
		return fmt.Errorf("project %s is now invalid: %w", p.ID, err)
	}
	fmt.Printf("Saved %s (%d commands, %d flows)\n", edited.ID, len(edited.Commands), len(edited.Flows))
	return nil
}

func runWatch(c *cli.Context) error {
	m := manager.Default()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", m.ProjectStore().BaseDir())
	err := m.ProjectStore().Watch(ctx, func(id string) {
		p, loadErr := m.Project(id)
		if loadErr != nil {
			fmt.Printf("changed: %s (unreadable: %v)\n", id, loadErr)
			return
		}
		fmt.Printf("changed: %s (%d commands, %d flows)\n", p.ID, len(p.Commands), len(p.Flows))
	})
	if err == context.Canceled {
		return nil
	}
	return err
}

// projectFromArgOrCurrent resolves the first positional argument as a
// project id, falling back to the current project.
func projectFromArgOrCurrent(c *cli.Context, m *manager.Manager) (*model.Project, error) {
	if id := c.Args().First(); id != "" {
		return m.Project(id)
	}
	return currentProject(c, m)
}
