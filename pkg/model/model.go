// Package model defines the documents adbflow persists: commands, flows,
// projects and the global config.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CommandType selects which broadcast intent a command is dispatched with.
type CommandType string

const (
	TypeBarcode CommandType = "barcode"
	TypeSpeech  CommandType = "speech"
)

// Valid reports whether the type is one of the known command types.
func (t CommandType) Valid() bool {
	return t == TypeBarcode || t == TypeSpeech
}

// Command is a single device action. Keyword must be unique within the list
// that owns the command (a project's command list, a flow, or the global
// common commands).
type Command struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        CommandType `json:"type"`
	Keyword     string      `json:"keyword"`
	Value       string      `json:"value"`
	Description string      `json:"description,omitempty"`
}

// NewCommand creates a command with a fresh id.
func NewCommand(name string, typ CommandType, keyword, value, description string) Command {
	return Command{
		ID:          uuid.NewString(),
		Name:        name,
		Type:        typ,
		Keyword:     keyword,
		Value:       value,
		Description: description,
	}
}

// Validate checks the fields that every stored command must have.
func (c Command) Validate() error {
	if c.Keyword == "" {
		return fmt.Errorf("command %q: %w", c.Name, ErrEmptyKeyword)
	}
	if !c.Type.Valid() {
		return fmt.Errorf("command %q: invalid type %q", c.Name, c.Type)
	}
	return nil
}

// Flow is a named, ordered sequence of commands with a fixed inter-command
// delay in milliseconds. Order is significant and user-controlled.
type Flow struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Delay       int       `json:"delay"`
	Commands    []Command `json:"commands"`
}

// NewFlow creates a flow with a fresh id.
func NewFlow(name, description string, delay int) Flow {
	return Flow{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Delay:       delay,
	}
}

// Validate checks the flow's own fields and its commands.
func (f Flow) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("flow: empty name")
	}
	if f.Delay < 0 {
		return fmt.Errorf("flow %q: negative delay %d", f.Name, f.Delay)
	}
	if err := ValidateCommands(f.Commands); err != nil {
		return fmt.Errorf("flow %q: %w", f.Name, err)
	}
	return nil
}

// Project is a named container of commands and flows, persisted as one JSON
// document under the configured save location.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Commands    []Command `json:"commands"`
	Flows       []Flow    `json:"flows"`
}

// ProjectID derives a project's document id from its display name:
// lowercased with all whitespace removed.
func ProjectID(name string) string {
	id := strings.ToLower(name)
	return strings.Join(strings.Fields(id), "")
}

// NewProject creates a project whose id is derived from name. CreatedAt is
// set once here; UpdatedAt is refreshed on every save.
func NewProject(name, description string) Project {
	now := time.Now().UTC()
	return Project{
		ID:          ProjectID(name),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Commands:    []Command{},
		Flows:       []Flow{},
	}
}

// Flow returns the flow with the given id, if present.
func (p *Project) Flow(flowID string) (*Flow, bool) {
	for i := range p.Flows {
		if p.Flows[i].ID == flowID {
			return &p.Flows[i], true
		}
	}
	return nil, false
}

// FlowByName returns the flow with the given name, if present. Names are
// compared case-sensitively.
func (p *Project) FlowByName(name string) (*Flow, bool) {
	for i := range p.Flows {
		if p.Flows[i].Name == name {
			return &p.Flows[i], true
		}
	}
	return nil, false
}

// Validate checks the project document before it is persisted.
func (p Project) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("project %q: empty id", p.Name)
	}
	if err := ValidateCommands(p.Commands); err != nil {
		return fmt.Errorf("project %q: %w", p.Name, err)
	}
	seen := make(map[string]string, len(p.Flows))
	for _, f := range p.Flows {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("project %q: %w", p.Name, err)
		}
		if prev, ok := seen[f.Name]; ok && prev != f.ID {
			return fmt.Errorf("project %q: flow %q: %w", p.Name, f.Name, ErrDuplicateFlowName)
		}
		seen[f.Name] = f.ID
	}
	return nil
}

// MaxRecentProjects caps the most-recently-used project ring.
const MaxRecentProjects = 5

// Config is the single process-wide configuration document.
type Config struct {
	SaveLocation         string    `json:"saveLocation"`
	RecentProjectID      string    `json:"recentProjectId"`
	MostRecentProjectIDs []string  `json:"mostRecentProjectIds"`
	CommonCommands       []Command `json:"commonCommands"`
}

// RecencySet returns the project ids considered "open" for listing purposes:
// the MRU ring plus the current project, in that order, without duplicates.
func (c *Config) RecencySet() []string {
	ids := make([]string, 0, len(c.MostRecentProjectIDs)+1)
	seen := make(map[string]bool)
	for _, id := range c.MostRecentProjectIDs {
		if id != "" && !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	if c.RecentProjectID != "" && !seen[c.RecentProjectID] {
		ids = append(ids, c.RecentProjectID)
	}
	return ids
}
