// Package watcher monitors the screenshots directory and reports new
// evidence files as they land.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/alianza/evidence-copier/internal/util"
)

// Watcher reports newly written evidence files in a directory.
type Watcher struct {
	dir   string
	log   *slog.Logger
	onNew func(path string)
}

// New creates a watcher over dir. onNew is invoked for every new .png;
// it may be nil.
func New(dir string, log *slog.Logger, onNew func(path string)) (*Watcher, error) {
	if err := util.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create watch dir %s: %w", dir, err)
	}
	return &Watcher{dir: dir, log: log, onNew: onNew}, nil
}

// Run blocks watching the directory until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fs watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.log.Info("watching for new evidence", "dir", w.dir)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			// Uploads land as .tmp then rename; only the final name counts.
			if strings.ToLower(filepath.Ext(event.Name)) != ".png" {
				continue
			}
			w.log.Info("new evidence file", "path", event.Name)
			if w.onNew != nil {
				w.onNew(event.Name)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watch error", "error", err)
		}
	}
}
