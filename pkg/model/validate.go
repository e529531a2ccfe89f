package model

import (
	"errors"
	"fmt"
)

// Validation errors. Mutations that would violate an invariant are rejected
// before any state changes.
var (
	ErrEmptyKeyword      = errors.New("empty keyword")
	ErrDuplicateKeyword  = errors.New("keyword already exists")
	ErrDuplicateFlowName = errors.New("flow name already exists")
	ErrProjectExists     = errors.New("project already exists")
)

// ValidateCommands checks every command in the list and rejects duplicate
// keywords among siblings.
func ValidateCommands(cmds []Command) error {
	seen := make(map[string]bool, len(cmds))
	for _, c := range cmds {
		if err := c.Validate(); err != nil {
			return err
		}
		if seen[c.Keyword] {
			return fmt.Errorf("keyword %q: %w", c.Keyword, ErrDuplicateKeyword)
		}
		seen[c.Keyword] = true
	}
	return nil
}

// HasKeyword reports whether any command in the list uses the keyword.
func HasKeyword(cmds []Command, keyword string) bool {
	for _, c := range cmds {
		if c.Keyword == keyword {
			return true
		}
	}
	return false
}

// AppendCommand adds cmd to the list, rejecting a duplicate keyword. The
// input slice is not modified on failure.
func AppendCommand(cmds []Command, cmd Command) ([]Command, error) {
	if err := cmd.Validate(); err != nil {
		return cmds, err
	}
	if HasKeyword(cmds, cmd.Keyword) {
		return cmds, fmt.Errorf("keyword %q: %w", cmd.Keyword, ErrDuplicateKeyword)
	}
	return append(cmds, cmd), nil
}

// ReplaceCommand swaps the command identified by prevKeyword for updated.
// Keyword uniqueness is re-checked only when the keyword changed.
func ReplaceCommand(cmds []Command, prevKeyword string, updated Command) ([]Command, error) {
	if err := updated.Validate(); err != nil {
		return cmds, err
	}
	if updated.Keyword != prevKeyword && HasKeyword(cmds, updated.Keyword) {
		return cmds, fmt.Errorf("keyword %q: %w", updated.Keyword, ErrDuplicateKeyword)
	}
	out := make([]Command, len(cmds))
	found := false
	for i, c := range cmds {
		if c.Keyword == prevKeyword {
			if updated.ID == "" {
				updated.ID = c.ID
			}
			out[i] = updated
			found = true
			continue
		}
		out[i] = c
	}
	if !found {
		return cmds, fmt.Errorf("keyword %q: command not found", prevKeyword)
	}
	return out, nil
}

// RemoveCommand deletes the command with the keyword from the list and
// reports whether it was present.
func RemoveCommand(cmds []Command, keyword string) ([]Command, bool) {
	out := cmds[:0:0]
	found := false
	for _, c := range cmds {
		if c.Keyword == keyword {
			found = true
			continue
		}
		out = append(out, c)
	}
	if !found {
		return cmds, false
	}
	return out, true
}

// MoveCommand reorders the list by moving the element at from to position to.
func MoveCommand(cmds []Command, from, to int) ([]Command, error) {
	if from < 0 || from >= len(cmds) || to < 0 || to >= len(cmds) {
		return cmds, fmt.Errorf("move %d -> %d: index out of range (len %d)", from, to, len(cmds))
	}
	if from == to {
		return cmds, nil
	}
	out := make([]Command, 0, len(cmds))
	out = append(out, cmds[:from]...)
	out = append(out, cmds[from+1:]...)
	moved := cmds[from]
	out = append(out[:to], append([]Command{moved}, out[to:]...)...)
	return out, nil
}
