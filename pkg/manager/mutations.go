package manager

import (
	"fmt"

	"github.com/devicelab-dev/adbflow/pkg/logger"
	"github.com/devicelab-dev/adbflow/pkg/model"
)

// withProject loads a project, applies fn, and persists the result. The
// project is not saved when fn fails, so a rejected mutation leaves both the
// in-memory list and the document unchanged.
func (m *Manager) withProject(projectID string, fn func(p *model.Project) error) error {
	p, err := m.Project(projectID)
	if err != nil {
		return err
	}
	if err := fn(p); err != nil {
		return err
	}
	return m.SaveProject(p)
}

// AddProjectCommand appends a command to the project's command list,
// rejecting a duplicate keyword.
func (m *Manager) AddProjectCommand(projectID string, cmd model.Command) error {
	return m.withProject(projectID, func(p *model.Project) error {
		cmds, err := model.AppendCommand(p.Commands, cmd)
		if err != nil {
			return err
		}
		p.Commands = cmds
		return nil
	})
}

// UpdateProjectCommand replaces the command identified by prevKeyword.
// Keyword uniqueness is re-checked only when the keyword changed.
func (m *Manager) UpdateProjectCommand(projectID, prevKeyword string, cmd model.Command) error {
	return m.withProject(projectID, func(p *model.Project) error {
		cmds, err := model.ReplaceCommand(p.Commands, prevKeyword, cmd)
		if err != nil {
			return err
		}
		p.Commands = cmds
		return nil
	})
}

// DeleteProjectCommand removes the command with the keyword from the
// project's list and reports whether it was present.
func (m *Manager) DeleteProjectCommand(projectID, keyword string) (bool, error) {
	found := false
	err := m.withProject(projectID, func(p *model.Project) error {
		cmds, ok := model.RemoveCommand(p.Commands, keyword)
		if !ok {
			return nil
		}
		found = true
		p.Commands = cmds
		return nil
	})
	return found, err
}

// AddCommonCommand appends a command to the global quick-access list,
// rejecting a duplicate keyword. The list is independent of any project.
func (m *Manager) AddCommonCommand(cmd model.Command) error {
	m.ensureConfig()
	cmds, err := model.AppendCommand(m.cfg.CommonCommands, cmd)
	if err != nil {
		return err
	}
	m.cfg.CommonCommands = cmds
	return m.saveConfig()
}

// UpdateCommonCommand replaces the common command identified by prevKeyword.
func (m *Manager) UpdateCommonCommand(prevKeyword string, cmd model.Command) error {
	m.ensureConfig()
	cmds, err := model.ReplaceCommand(m.cfg.CommonCommands, prevKeyword, cmd)
	if err != nil {
		return err
	}
	m.cfg.CommonCommands = cmds
	return m.saveConfig()
}

// DeleteCommonCommand removes the common command with the keyword and
// reports whether it was present.
func (m *Manager) DeleteCommonCommand(keyword string) (bool, error) {
	m.ensureConfig()
	cmds, ok := model.RemoveCommand(m.cfg.CommonCommands, keyword)
	if !ok {
		return false, nil
	}
	m.cfg.CommonCommands = cmds
	return true, m.saveConfig()
}

// AddFlow adds a new flow to the project. A flow whose name collides with an
// existing flow (under a different id) is rejected without mutating the
// project.
func (m *Manager) AddFlow(projectID string, flow model.Flow) error {
	return m.withProject(projectID, func(p *model.Project) error {
		if err := flow.Validate(); err != nil {
			return err
		}
		if existing, ok := p.FlowByName(flow.Name); ok && existing.ID != flow.ID {
			return fmt.Errorf("flow %q: %w", flow.Name, model.ErrDuplicateFlowName)
		}
		p.Flows = append(p.Flows, flow)
		return nil
	})
}

// UpdateFlow replaces the flow with the same id. The id identifies a flow
// regardless of name changes.
func (m *Manager) UpdateFlow(projectID string, flow model.Flow) error {
	return m.withProject(projectID, func(p *model.Project) error {
		if err := flow.Validate(); err != nil {
			return err
		}
		for i := range p.Flows {
			if p.Flows[i].ID == flow.ID {
				p.Flows[i] = flow
				return nil
			}
		}
		return fmt.Errorf("flow %q not found in project %s", flow.ID, projectID)
	})
}

// DeleteFlow removes the flow with the id and reports whether it existed.
func (m *Manager) DeleteFlow(projectID, flowID string) (bool, error) {
	found := false
	err := m.withProject(projectID, func(p *model.Project) error {
		flows := p.Flows[:0:0]
		for _, f := range p.Flows {
			if f.ID == flowID {
				found = true
				continue
			}
			flows = append(flows, f)
		}
		if !found {
			return nil
		}
		p.Flows = flows
		return nil
	})
	return found, err
}

// ReorderFlowCommands moves the command at index from to index to inside the
// flow, preserving the order of everything else.
func (m *Manager) ReorderFlowCommands(projectID, flowID string, from, to int) error {
	return m.withProject(projectID, func(p *model.Project) error {
		f, ok := p.Flow(flowID)
		if !ok {
			return fmt.Errorf("flow %q not found in project %s", flowID, projectID)
		}
		cmds, err := model.MoveCommand(f.Commands, from, to)
		if err != nil {
			return err
		}
		f.Commands = cmds
		logger.Debug("reordered flow %s: moved command %d to %d", flowID, from, to)
		return nil
	})
}

// AddFlowCommand appends a command to the flow's sequence, rejecting a
// duplicate keyword among the flow's own commands.
func (m *Manager) AddFlowCommand(projectID, flowID string, cmd model.Command) error {
	return m.withProject(projectID, func(p *model.Project) error {
		f, ok := p.Flow(flowID)
		if !ok {
			return fmt.Errorf("flow %q not found in project %s", flowID, projectID)
		}
		cmds, err := model.AppendCommand(f.Commands, cmd)
		if err != nil {
			return err
		}
		f.Commands = cmds
		return nil
	})
}

// DeleteFlowCommand removes the command with the keyword from the flow.
func (m *Manager) DeleteFlowCommand(projectID, flowID, keyword string) (bool, error) {
	found := false
	err := m.withProject(projectID, func(p *model.Project) error {
		f, ok := p.Flow(flowID)
		if !ok {
			return fmt.Errorf("flow %q not found in project %s", flowID, projectID)
		}
		cmds, removed := model.RemoveCommand(f.Commands, keyword)
		if !removed {
			return nil
		}
		found = true
		f.Commands = cmds
		return nil
	})
	return found, err
}
