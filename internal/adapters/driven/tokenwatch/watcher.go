// Package tokenwatch notices when another process logs in or out by
// watching the token file's directory.
package tokenwatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/nowplaying/internal/core/ports/driven"
	"github.com/custodia-labs/nowplaying/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.TokenWatcher = (*Watcher)(nil)

// Watcher reports changes to one file. The parent directory is watched
// because atomic writes replace the file rather than modify it.
type Watcher struct {
	dir  string
	name string
}

// New creates a watcher for the file at path.
func New(path string) *Watcher {
	return &Watcher{dir: filepath.Dir(path), name: filepath.Base(path)}
}

// Watch blocks, calling onChange for each relevant event, until ctx is done.
func (w *Watcher) Watch(ctx context.Context, onChange func()) error {
	if err := os.MkdirAll(w.dir, 0o700); err != nil {
		return fmt.Errorf("create watch dir: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Debug("tokenwatch: watching %s", filepath.Join(w.dir, w.name))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				logger.Debug("tokenwatch: %s", event.Op)
				onChange()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("tokenwatch: %v", err)
		}
	}
}

// relevant reports whether event changes the watched file's content.
// Chmod alone does not.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != w.name {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
