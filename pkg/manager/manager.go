// Package manager mediates all reads and writes of the config document and
// project documents. It is the sole writer to the persistence store and
// enforces the uniqueness invariants on projects, flows and commands.
package manager

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/devicelab-dev/adbflow/pkg/config"
	"github.com/devicelab-dev/adbflow/pkg/logger"
	"github.com/devicelab-dev/adbflow/pkg/model"
	"github.com/devicelab-dev/adbflow/pkg/store"
)

const configID = "config"

// Manager owns the global config and the active project set. Every mutation
// is written back to disk immediately; a failed write is logged and returned
// to the caller, and the in-memory state is not rolled back.
type Manager struct {
	configStore  *store.Store // fixed home location
	projectStore *store.Store // rooted at Config.SaveLocation

	cfg *model.Config
}

// New creates a manager rooted at the given home directory. The projects
// store is pointed at the configured save location once the config loads.
func New(homeDir string) *Manager {
	return &Manager{
		configStore:  store.New(homeDir),
		projectStore: store.New(""),
	}
}

// Default creates a manager rooted at the adbflow home directory.
func Default() *Manager {
	return New(config.Home())
}

// ProjectStore exposes the project document store, for watch mode and path
// reporting. All mutations still go through the manager.
func (m *Manager) ProjectStore() *store.Store {
	m.ensureConfig()
	return m.projectStore
}

// Config returns the global config, loading it from disk on first use.
// Defaults are synthesized and persisted when no config file exists.
func (m *Manager) Config() *model.Config {
	m.ensureConfig()
	return m.cfg
}

func (m *Manager) ensureConfig() {
	if m.cfg != nil {
		return
	}

	cfg := &model.Config{}
	err := m.configStore.Load(store.KindConfig, configID, cfg)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		logger.Info("no config found, creating with defaults")
		cfg = m.defaultConfig()
		if saveErr := m.configStore.Save(store.KindConfig, configID, cfg); saveErr != nil {
			logger.Error("failed to persist default config: %v", saveErr)
		}
	default:
		// Unreadable config: run with defaults but do not overwrite the
		// file on disk.
		logger.Error("failed to load config: %v", err)
		cfg = m.defaultConfig()
	}

	m.cfg = cfg
	m.projectStore.SetBaseDir(cfg.SaveLocation)
}

func (m *Manager) defaultConfig() *model.Config {
	return &model.Config{
		SaveLocation:         filepath.Join(m.configStore.BaseDir(), "projects"),
		MostRecentProjectIDs: []string{},
		CommonCommands:       []model.Command{},
	}
}

// saveConfig persists the current config document.
func (m *Manager) saveConfig() error {
	if err := m.configStore.Save(store.KindConfig, configID, m.cfg); err != nil {
		logger.Error("failed to save config: %v", err)
		return err
	}
	return nil
}

// SetSaveLocation updates the projects directory. It takes effect for the
// very next project read or write; no restart is required.
func (m *Manager) SetSaveLocation(path string) error {
	m.ensureConfig()
	m.cfg.SaveLocation = path
	m.projectStore.SetBaseDir(path)
	return m.saveConfig()
}

// RecordProjectOpened marks projectID as the current project and pushes the
// previously current one onto the MRU ring. The ring never exceeds
// model.MaxRecentProjects entries and never contains duplicates.
func (m *Manager) RecordProjectOpened(projectID string) error {
	m.ensureConfig()

	previous := m.cfg.RecentProjectID
	m.cfg.RecentProjectID = projectID

	ring := make([]string, 0, len(m.cfg.MostRecentProjectIDs)+1)
	for _, id := range m.cfg.MostRecentProjectIDs {
		if id == projectID || id == previous {
			continue
		}
		ring = append(ring, id)
	}
	if previous != "" && previous != projectID {
		ring = append([]string{previous}, ring...)
	}
	if len(ring) > model.MaxRecentProjects {
		ring = ring[:model.MaxRecentProjects]
	}
	m.cfg.MostRecentProjectIDs = ring

	return m.saveConfig()
}

// UpdateCommonCommands replaces the global quick-access command list
// wholesale and persists.
func (m *Manager) UpdateCommonCommands(cmds []model.Command) error {
	m.ensureConfig()
	if err := model.ValidateCommands(cmds); err != nil {
		return err
	}
	m.cfg.CommonCommands = cmds
	return m.saveConfig()
}

// CreateProject creates and persists a new project. The id is derived from
// the name; creation is rejected when a project document with that id
// already exists.
func (m *Manager) CreateProject(name, description string) (*model.Project, error) {
	m.ensureConfig()

	id := model.ProjectID(name)
	if id == "" {
		return nil, fmt.Errorf("project name %q yields an empty id", name)
	}
	var existing model.Project
	err := m.projectStore.Load(store.KindProject, id, &existing)
	if err == nil {
		return nil, fmt.Errorf("project %q: %w", id, model.ErrProjectExists)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	p := model.NewProject(name, description)
	if err := m.projectStore.Save(store.KindProject, p.ID, &p); err != nil {
		logger.Error("failed to save project %s: %v", p.ID, err)
		return nil, err
	}
	logger.Info("created project %s", p.ID)
	return &p, nil
}

// SaveProject validates and persists the project, refreshing UpdatedAt.
func (m *Manager) SaveProject(p *model.Project) error {
	m.ensureConfig()
	if err := p.Validate(); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	if err := m.projectStore.Save(store.KindProject, p.ID, p); err != nil {
		logger.Error("failed to save project %s: %v", p.ID, err)
		return err
	}
	return nil
}

// Project loads a project by id. Every call re-reads from disk.
func (m *Manager) Project(id string) (*model.Project, error) {
	m.ensureConfig()
	var p model.Project
	if err := m.projectStore.Load(store.KindProject, id, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// AllProjects returns the projects in the bounded recency set (the MRU ring
// plus the current project), not every project file on disk.
// Missing or unreadable documents in the set are logged and skipped.
func (m *Manager) AllProjects() []model.Project {
	m.ensureConfig()

	var projects []model.Project
	for _, id := range m.cfg.RecencySet() {
		p, err := m.Project(id)
		if err != nil {
			logger.Warn("skipping recent project %q: %v", id, err)
			continue
		}
		projects = append(projects, *p)
	}
	return projects
}

// DeleteProject removes the project's document and reports whether it
// existed.
func (m *Manager) DeleteProject(id string) (bool, error) {
	m.ensureConfig()
	existed, err := m.projectStore.Delete(store.KindProject, id)
	if err != nil {
		logger.Error("failed to delete project %s: %v", id, err)
		return false, err
	}
	if existed {
		logger.Info("deleted project %s", id)
	}
	return existed, nil
}
