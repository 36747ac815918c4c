package load

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch re-parses the schema document whenever it changes on disk and
// invokes fn with the result. It blocks until the context is canceled
// or the underlying watcher fails. The enclosing driver decides what
// to do with each result; Watch itself never aborts on a mapping
// error, since a half-saved document is expected to fail transiently.
func Watch(ctx context.Context, path string, fn func([]*Schema, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	// Watch the directory: editors replace files on save, which drops
	// a direct file watch.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(ev.Name)
			if err != nil || name != abs {
				continue
			}
			if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename) {
				fn(ReadDocument(path))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
