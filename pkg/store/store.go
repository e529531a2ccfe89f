// Package store persists adbflow documents as pretty-printed JSON files,
// one file per (kind, id) pair under a repointable base directory.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/devicelab-dev/adbflow/pkg/logger"
)

// ErrNotFound is returned by Load when no document exists for the id.
var ErrNotFound = errors.New("document not found")

// Kind identifies a document type. It determines the file name suffix.
type Kind string

const (
	// KindProject documents live at <base>/<id>.project.json.
	KindProject Kind = "project"
	// KindConfig is the single config document at <base>/<id>.json.
	KindConfig Kind = "config"
)

// fileName maps (kind, id) to the on-disk name. The config document keeps
// the plain <id>.json name the original layout used.
func (k Kind) fileName(id string) string {
	if k == KindConfig {
		return id + ".json"
	}
	return id + "." + string(k) + ".json"
}

// suffix is the part of the file name following the id.
func (k Kind) suffix() string {
	if k == KindConfig {
		return ".json"
	}
	return "." + string(k) + ".json"
}

// idFromName extracts the document id from a file name. It reports false for
// names of a different kind; the config suffix alone would also match
// project files.
func (k Kind) idFromName(name string) (string, bool) {
	if !strings.HasSuffix(name, k.suffix()) {
		return "", false
	}
	if k == KindConfig && strings.HasSuffix(name, KindProject.suffix()) {
		return "", false
	}
	return strings.TrimSuffix(name, k.suffix()), true
}

// Store is a durable mapping from (kind, id) to a JSON document. There is no
// caching layer: every Load re-reads from disk. A single process is the only
// writer, so no file locking is done.
type Store struct {
	mu      sync.Mutex
	baseDir string
}

// New creates a store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// BaseDir returns the current base directory.
func (s *Store) BaseDir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseDir
}

// SetBaseDir repoints the store. It takes effect for the very next read or
// write; existing files are not moved.
func (s *Store) SetBaseDir(dir string) {
	s.mu.Lock()
	s.baseDir = dir
	s.mu.Unlock()
}

// Path returns the file path a document of the given kind and id maps to.
func (s *Store) Path(kind Kind, id string) string {
	return filepath.Join(s.BaseDir(), kind.fileName(id))
}

// Load reads the document into out. It returns ErrNotFound when no file
// exists; malformed JSON propagates as a parse error.
func (s *Store) Load(kind Kind, id string, out interface{}) error {
	path := s.Path(kind, id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Save serializes v as indented JSON and overwrites the target file,
// creating the base directory if absent.
func (s *Store) Save(kind Kind, id string, v interface{}) error {
	path := s.Path(kind, id)
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s %q: %w", kind, id, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Delete removes the document's file if present and reports whether it
// existed.
func (s *Store) Delete(kind Kind, id string) (bool, error) {
	path := s.Path(kind, id)
	err := os.Remove(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("delete %s: %w", path, err)
	}
	return true, nil
}

// ListIDs enumerates the ids of every document of the kind in the base
// directory.
func (s *Store) ListIDs(kind Kind) ([]string, error) {
	dir := s.BaseDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, ok := kind.idFromName(e.Name())
		if !ok {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// LoadAll loads every document of the kind, decoding each through decode.
// A corrupt file is logged and skipped; the rest are still returned.
func (s *Store) LoadAll(kind Kind, decode func(id string, raw json.RawMessage) error) error {
	ids, err := s.ListIDs(kind)
	if err != nil {
		return err
	}
	for _, id := range ids {
		var raw json.RawMessage
		if err := s.Load(kind, id, &raw); err != nil {
			logger.Warn("skipping unreadable %s document %q: %v", kind, id, err)
			continue
		}
		if err := decode(id, raw); err != nil {
			logger.Warn("skipping malformed %s document %q: %v", kind, id, err)
		}
	}
	return nil
}
