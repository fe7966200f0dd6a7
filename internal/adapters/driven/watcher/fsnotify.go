// Package watcher reports document changes in a directory using fsnotify.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.DirWatcher = (*Watcher)(nil)

// Watcher watches the top level of a directory for changes to files with
// a handled extension. Hidden files and directories are ignored.
type Watcher struct {
	extensions []string
}

// New creates a watcher for the given lower-case extensions, dot included.
// With no extensions every regular file is reported.
func New(extensions ...string) *Watcher {
	return &Watcher{extensions: extensions}
}

// Watch starts watching dir. Each Watch call owns its own fsnotify watcher,
// released when ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan string, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	changes := make(chan string, 64)
	go func() {
		defer close(changes)
		defer fw.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if !w.relevant(event) {
					continue
				}
				select {
				case changes <- event.Name:
				case <-ctx.Done():
					return
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				logger.Warn("watch %s: %v", dir, err)
			}
		}
	}()

	return changes, nil
}

// relevant reports whether event should trigger a rebuild.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if len(w.extensions) > 0 && !slices.Contains(w.extensions, strings.ToLower(filepath.Ext(base))) {
		return false
	}

	// Removed and renamed paths no longer exist and cannot be stat'ed.
	if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			return false
		}
	}
	return true
}
