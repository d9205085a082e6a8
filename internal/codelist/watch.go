package codelist

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/catalogbridge/ckan2csw/internal/output"
)

// Watch invalidates cached tables when their files under dir change.
// It blocks until ctx is cancelled. dir must be the on-disk directory the
// resolver root was built from.
func (r *Resolver) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating codelist watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	output.Debug("watching codelists", "dir", dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			r.handleEvent(ev)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			output.Warn("codelist watcher error", "err", err)
		}
	}
}

func (r *Resolver) handleEvent(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename) {
		return
	}
	base := filepath.Base(ev.Name)
	if filepath.Ext(base) != ".yaml" {
		return
	}
	name := strings.TrimSuffix(base, ".yaml")
	r.Invalidate(name)
	output.Debug("codelist invalidated", "codelist", name, "op", ev.Op.String())
}
