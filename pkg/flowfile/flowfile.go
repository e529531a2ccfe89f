// Package flowfile reads and writes flow definitions as YAML files, so
// flows can be shared between projects and kept under version control.
package flowfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/adbflow/pkg/model"
)

// File is the YAML representation of a flow. Ids are not serialized; a fresh
// identity is assigned on import.
type File struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Delay       int           `yaml:"delay"`
	Commands    []FileCommand `yaml:"commands"`
}

// FileCommand is one command entry in a flow file.
type FileCommand struct {
	Name        string `yaml:"name,omitempty"`
	Type        string `yaml:"type"`
	Keyword     string `yaml:"keyword"`
	Value       string `yaml:"value"`
	Description string `yaml:"description,omitempty"`
}

// Parse decodes and validates a flow file.
func Parse(data []byte) (*model.Flow, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse flow file: %w", err)
	}
	if f.Name == "" {
		return nil, fmt.Errorf("flow file: missing name")
	}

	flow := model.NewFlow(f.Name, f.Description, f.Delay)
	for _, c := range f.Commands {
		cmd := model.NewCommand(c.Name, model.CommandType(c.Type), c.Keyword, c.Value, c.Description)
		cmds, err := model.AppendCommand(flow.Commands, cmd)
		if err != nil {
			return nil, fmt.Errorf("flow file %q: %w", f.Name, err)
		}
		flow.Commands = cmds
	}
	if err := flow.Validate(); err != nil {
		return nil, err
	}
	return &flow, nil
}

// ParseFile reads and parses the flow file at path.
func ParseFile(path string) (*model.Flow, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided flow file
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Marshal encodes the flow as YAML.
func Marshal(flow model.Flow) ([]byte, error) {
	f := File{
		Name:        flow.Name,
		Description: flow.Description,
		Delay:       flow.Delay,
	}
	for _, c := range flow.Commands {
		f.Commands = append(f.Commands, FileCommand{
			Name:        c.Name,
			Type:        string(c.Type),
			Keyword:     c.Keyword,
			Value:       c.Value,
			Description: c.Description,
		})
	}
	return yaml.Marshal(&f)
}

// WriteFile writes the flow as YAML to path.
func WriteFile(path string, flow model.Flow) error {
	data, err := Marshal(flow)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
