package manager

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/devicelab-dev/adbflow/pkg/model"
	"github.com/devicelab-dev/adbflow/pkg/store"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return New(t.TempDir())
}

func TestConfig_SynthesizesDefaults(t *testing.T) {
	home := t.TempDir()
	m := New(home)

	cfg := m.Config()
	if cfg.SaveLocation != filepath.Join(home, "projects") {
		t.Errorf("unexpected default save location %q", cfg.SaveLocation)
	}
	if cfg.RecentProjectID != "" || len(cfg.MostRecentProjectIDs) != 0 {
		t.Errorf("expected empty recency state, got %+v", cfg)
	}

	// The defaults are persisted for the next startup.
	if _, err := os.Stat(filepath.Join(home, "config.json")); err != nil {
		t.Errorf("expected config.json written: %v", err)
	}

	// A fresh manager over the same home sees the same config.
	cfg2 := New(home).Config()
	if cfg2.SaveLocation != cfg.SaveLocation {
		t.Errorf("reloaded save location %q != %q", cfg2.SaveLocation, cfg.SaveLocation)
	}
}

func TestCreateProject(t *testing.T) {
	m := newTestManager(t)

	p, err := m.CreateProject("Warehouse Demo", "test project")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "warehousedemo" {
		t.Errorf("unexpected id %q", p.ID)
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestCreateProject_RejectsExisting(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.CreateProject("Demo", ""); err != nil {
		t.Fatal(err)
	}
	// Same derived id, different display name spelling.
	_, err := m.CreateProject("  DEMO ", "")
	if !errors.Is(err, model.ErrProjectExists) {
		t.Errorf("expected ErrProjectExists, got %v", err)
	}
}

func TestSaveProject_RoundTrip(t *testing.T) {
	m := newTestManager(t)

	p, err := m.CreateProject("demo", "")
	if err != nil {
		t.Fatal(err)
	}
	p.Commands = append(p.Commands, model.NewCommand("user", model.TypeSpeech, "user", "bob", ""))
	if err := m.SaveProject(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := m.Project("demo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got.Commands, p.Commands) {
		t.Errorf("round trip mismatch: %+v != %+v", got.Commands, p.Commands)
	}

	// Idempotence: loading twice without an intervening save.
	again, err := m.Project("demo")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, again) {
		t.Error("two loads without a save returned different documents")
	}
}

func TestSaveProject_RefreshesUpdatedAt(t *testing.T) {
	m := newTestManager(t)

	p, err := m.CreateProject("demo", "")
	if err != nil {
		t.Fatal(err)
	}
	created := p.CreatedAt

	time.Sleep(5 * time.Millisecond)
	if err := m.SaveProject(p); err != nil {
		t.Fatal(err)
	}

	got, err := m.Project("demo")
	if err != nil {
		t.Fatal(err)
	}
	if !got.UpdatedAt.After(created) {
		t.Errorf("expected UpdatedAt %v after CreatedAt %v", got.UpdatedAt, created)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt changed: %v != %v", got.CreatedAt, created)
	}
}

func TestRecordProjectOpened_RingInvariants(t *testing.T) {
	m := newTestManager(t)

	// Open a long sequence with repeats; the ring must stay capped at 5
	// and free of duplicates throughout.
	sequence := []string{"a", "b", "c", "a", "d", "e", "f", "g", "b", "b", "h"}
	for _, id := range sequence {
		if err := m.RecordProjectOpened(id); err != nil {
			t.Fatal(err)
		}

		cfg := m.Config()
		if len(cfg.MostRecentProjectIDs) > model.MaxRecentProjects {
			t.Fatalf("ring exceeded cap after %q: %v", id, cfg.MostRecentProjectIDs)
		}
		seen := make(map[string]bool)
		for _, rid := range cfg.MostRecentProjectIDs {
			if seen[rid] {
				t.Fatalf("duplicate %q in ring after opening %q: %v", rid, id, cfg.MostRecentProjectIDs)
			}
			seen[rid] = true
		}
		if seen[cfg.RecentProjectID] {
			t.Fatalf("current project %q also present in ring: %v", cfg.RecentProjectID, cfg.MostRecentProjectIDs)
		}
	}

	if m.Config().RecentProjectID != "h" {
		t.Errorf("expected current project h, got %q", m.Config().RecentProjectID)
	}
}

func TestRecordProjectOpened_PushesPrevious(t *testing.T) {
	m := newTestManager(t)

	if err := m.RecordProjectOpened("first"); err != nil {
		t.Fatal(err)
	}
	if err := m.RecordProjectOpened("second"); err != nil {
		t.Fatal(err)
	}

	cfg := m.Config()
	if cfg.RecentProjectID != "second" {
		t.Errorf("expected current second, got %q", cfg.RecentProjectID)
	}
	if len(cfg.MostRecentProjectIDs) != 1 || cfg.MostRecentProjectIDs[0] != "first" {
		t.Errorf("expected ring [first], got %v", cfg.MostRecentProjectIDs)
	}
}

func TestAllProjects_BoundedRecencySet(t *testing.T) {
	m := newTestManager(t)

	for _, name := range []string{"alpha", "beta", "gamma"} {
		if _, err := m.CreateProject(name, ""); err != nil {
			t.Fatal(err)
		}
	}

	// Only alpha and beta are in the recency set; gamma exists on disk but
	// must not be listed.
	if err := m.RecordProjectOpened("alpha"); err != nil {
		t.Fatal(err)
	}
	if err := m.RecordProjectOpened("beta"); err != nil {
		t.Fatal(err)
	}

	projects := m.AllProjects()
	ids := make(map[string]bool)
	for _, p := range projects {
		ids[p.ID] = true
	}
	if !ids["alpha"] || !ids["beta"] {
		t.Errorf("expected alpha and beta listed, got %v", ids)
	}
	if ids["gamma"] {
		t.Error("gamma is on disk but outside the recency set; it must not be listed")
	}
}

func TestAllProjects_SkipsMissingDocuments(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.CreateProject("real", ""); err != nil {
		t.Fatal(err)
	}
	if err := m.RecordProjectOpened("ghost"); err != nil {
		t.Fatal(err)
	}
	if err := m.RecordProjectOpened("real"); err != nil {
		t.Fatal(err)
	}

	projects := m.AllProjects()
	if len(projects) != 1 || projects[0].ID != "real" {
		t.Errorf("expected only the real project, got %+v", projects)
	}
}

func TestSetSaveLocation_RedirectsImmediately(t *testing.T) {
	m := newTestManager(t)
	newDir := t.TempDir()

	if _, err := m.CreateProject("before", ""); err != nil {
		t.Fatal(err)
	}

	if err := m.SetSaveLocation(newDir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := m.CreateProject("after", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(newDir, p.ID+".project.json")); err != nil {
		t.Errorf("expected project written under new location: %v", err)
	}

	// The old project is no longer reachable.
	if _, err := m.Project("before"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for project in old location, got %v", err)
	}
}

func TestDeleteProject(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.CreateProject("demo", ""); err != nil {
		t.Fatal(err)
	}

	existed, err := m.DeleteProject("demo")
	if err != nil || !existed {
		t.Fatalf("expected deletion, got existed=%v err=%v", existed, err)
	}
	existed, err = m.DeleteProject("demo")
	if err != nil || existed {
		t.Fatalf("expected absence on second delete, got existed=%v err=%v", existed, err)
	}
}

func TestAddFlow_DuplicateNameLeavesProjectUnchanged(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.CreateProject("demo", ""); err != nil {
		t.Fatal(err)
	}
	first := model.NewFlow("Login", "", 100)
	first.Commands = []model.Command{
		model.NewCommand("user", model.TypeSpeech, "user", "bob", ""),
	}
	if err := m.AddFlow("demo", first); err != nil {
		t.Fatal(err)
	}

	dup := model.NewFlow("Login", "different flow, same name", 500)
	if err := m.AddFlow("demo", dup); !errors.Is(err, model.ErrDuplicateFlowName) {
		t.Fatalf("expected ErrDuplicateFlowName, got %v", err)
	}

	// The rejected add must not touch the stored document.
	p, err := m.Project("demo")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Flows) != 1 {
		t.Fatalf("flow list mutated by rejected add: %+v", p.Flows)
	}
	if p.Flows[0].ID != first.ID || p.Flows[0].Delay != 100 {
		t.Errorf("stored flow changed: %+v", p.Flows[0])
	}
}

func TestUpdateCommonCommands(t *testing.T) {
	m := newTestManager(t)

	cmds := []model.Command{
		model.NewCommand("a", model.TypeBarcode, "scan", "1", ""),
		model.NewCommand("b", model.TypeSpeech, "say", "2", ""),
	}
	if err := m.UpdateCommonCommands(cmds); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := m.Config().CommonCommands
	if !reflect.DeepEqual(got, cmds) {
		t.Errorf("common commands mismatch: %+v != %+v", got, cmds)
	}

	// A wholesale replacement with duplicate keywords is rejected.
	dup := []model.Command{
		model.NewCommand("a", model.TypeBarcode, "scan", "1", ""),
		model.NewCommand("b", model.TypeSpeech, "scan", "2", ""),
	}
	if err := m.UpdateCommonCommands(dup); !errors.Is(err, model.ErrDuplicateKeyword) {
		t.Errorf("expected ErrDuplicateKeyword, got %v", err)
	}
	if !reflect.DeepEqual(m.Config().CommonCommands, cmds) {
		t.Error("rejected replacement mutated the common list")
	}
}
