package store

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/devicelab-dev/adbflow/pkg/logger"
)

// debounceDuration coalesces the burst of write events editors emit for a
// single save.
const debounceDuration = 500 * time.Millisecond

// Watch reports the id of every project document that is written or created
// under the store's base directory until ctx is cancelled. Events for the
// same document within the debounce window are coalesced.
func (s *Store) Watch(ctx context.Context, onChange func(id string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := s.BaseDir()
	if err := watcher.Add(dir); err != nil {
		return err
	}
	logger.Info("watching %s for project changes", dir)

	var mu sync.Mutex
	timers := make(map[string]*time.Timer)
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()

	suffix := KindProject.suffix()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name := event.Name
			if !strings.HasSuffix(name, suffix) {
				continue
			}
			if event.Op&fsnotify.Write != fsnotify.Write && event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			id := strings.TrimSuffix(filepath.Base(name), suffix)

			mu.Lock()
			if t, exists := timers[id]; exists {
				t.Stop()
			}
			timers[id] = time.AfterFunc(debounceDuration, func() {
				mu.Lock()
				delete(timers, id)
				mu.Unlock()
				onChange(id)
			})
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error: %v", err)
		}
	}
}
