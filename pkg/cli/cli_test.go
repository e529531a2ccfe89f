package cli

import (
	"os"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/adbflow/pkg/config"
	"github.com/devicelab-dev/adbflow/pkg/manager"
)

func newTestApp() *cli.App {
	return &cli.App{
		Name:  "adbflow",
		Flags: GlobalFlags,
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
}

// setHome points everything at a throwaway home directory.
func setHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ADBFLOW_HOME", dir)
	config.ResetHome()
	t.Cleanup(config.ResetHome)
	return dir
}

func suppressStdout(t *testing.T) {
	t.Helper()
	oldStdout := os.Stdout
	os.Stdout, _ = os.Open(os.DevNull)
	t.Cleanup(func() { os.Stdout = oldStdout })
}

func TestGlobalFlags(t *testing.T) {
	flagNames := make(map[string]bool)
	for _, f := range GlobalFlags {
		for _, name := range f.Names() {
			flagNames[name] = true
		}
	}

	for _, name := range []string{"serial", "s", "project", "P", "verbose", "dry-run"} {
		if !flagNames[name] {
			t.Errorf("expected flag %q to be defined", name)
		}
	}
}

func TestProjectCreate(t *testing.T) {
	setHome(t)
	suppressStdout(t)
	app := newTestApp()

	if err := app.Run([]string{"adbflow", "project", "create", "Warehouse Demo"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := manager.Default()
	p, err := m.Project("warehousedemo")
	if err != nil {
		t.Fatalf("created project not loadable: %v", err)
	}
	if p.Name != "Warehouse Demo" {
		t.Errorf("unexpected name %q", p.Name)
	}
	// create marks the project as current.
	if m.Config().RecentProjectID != "warehousedemo" {
		t.Errorf("current project = %q", m.Config().RecentProjectID)
	}
}

func TestProjectCreate_NoName(t *testing.T) {
	setHome(t)
	app := newTestApp()

	if err := app.Run([]string{"adbflow", "project", "create"}); err == nil {
		t.Error("expected error when name missing")
	}
}

func TestProjectOpen_Unknown(t *testing.T) {
	setHome(t)
	app := newTestApp()

	if err := app.Run([]string{"adbflow", "project", "open", "nope"}); err == nil {
		t.Error("expected error for unknown project id")
	}
}

func TestCommandAdd_AndList(t *testing.T) {
	setHome(t)
	suppressStdout(t)
	app := newTestApp()

	if err := app.Run([]string{"adbflow", "project", "create", "demo"}); err != nil {
		t.Fatal(err)
	}
	err := app.Run([]string{"adbflow", "command", "add",
		"--keyword", "user", "--value", "bob", "--type", "speech"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := manager.Default().Project("demo")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Commands) != 1 || p.Commands[0].Keyword != "user" {
		t.Errorf("unexpected commands: %+v", p.Commands)
	}

	// Duplicate keyword gets rejected.
	err = app.Run([]string{"adbflow", "command", "add",
		"--keyword", "user", "--value", "alice", "--type", "speech"})
	if err == nil {
		t.Error("expected duplicate keyword rejection")
	}
}

func TestCommandAdd_Common(t *testing.T) {
	setHome(t)
	suppressStdout(t)
	app := newTestApp()

	// The common list works without any project.
	err := app.Run([]string{"adbflow", "command", "add", "--common",
		"--keyword", "scan", "--value", "123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	common := manager.Default().Config().CommonCommands
	if len(common) != 1 || common[0].Keyword != "scan" {
		t.Errorf("unexpected common commands: %+v", common)
	}
}

func TestCommandAdd_NoProject(t *testing.T) {
	setHome(t)
	app := newTestApp()

	err := app.Run([]string{"adbflow", "command", "add",
		"--keyword", "user", "--value", "bob"})
	if err == nil {
		t.Error("expected error when no project is selected")
	}
}

func TestFlowLifecycle_DryRun(t *testing.T) {
	setHome(t)
	suppressStdout(t)
	app := newTestApp()

	steps := [][]string{
		{"adbflow", "project", "create", "demo"},
		{"adbflow", "flow", "add", "Login", "--delay", "0"},
		{"adbflow", "flow", "add-command", "Login",
			"--keyword", "user", "--value", "bob", "--type", "speech"},
		{"adbflow", "flow", "add-command", "Login",
			"--keyword", "pass", "--value", "secret", "--type", "barcode"},
		{"adbflow", "--dry-run", "flow", "run", "Login"},
	}
	for _, args := range steps {
		if err := app.Run(args); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}

	// A second flow with the same name is rejected.
	if err := app.Run([]string{"adbflow", "flow", "add", "Login"}); err == nil {
		t.Error("expected duplicate flow name rejection")
	}
}

func TestFlowRun_UnknownFlow(t *testing.T) {
	setHome(t)
	suppressStdout(t)
	app := newTestApp()

	if err := app.Run([]string{"adbflow", "project", "create", "demo"}); err != nil {
		t.Fatal(err)
	}
	if err := app.Run([]string{"adbflow", "--dry-run", "flow", "run", "Ghost"}); err == nil {
		t.Error("expected error for unknown flow name")
	}
}

func TestCollectionRun_NoFile(t *testing.T) {
	setHome(t)
	app := newTestApp()

	if err := app.Run([]string{"adbflow", "collection", "run"}); err == nil {
		t.Error("expected error when collection file missing")
	}
}

func TestConfigSetLocation(t *testing.T) {
	setHome(t)
	suppressStdout(t)
	app := newTestApp()

	newDir := t.TempDir()
	if err := app.Run([]string{"adbflow", "config", "set-location", newDir}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := manager.Default().Config().SaveLocation; got != newDir {
		t.Errorf("save location = %q, want %q", got, newDir)
	}
}
