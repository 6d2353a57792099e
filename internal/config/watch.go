package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
)

// WatchEndpointsFile reloads the endpoints file whenever it changes on disk,
// until ctx is done. The parent directory is watched so that editors which
// replace the file on save are picked up too. fs must be backed by the OS
// filesystem for events to fire.
func WatchEndpointsFile(ctx context.Context, fs afero.Fs, path string, e *Endpoints) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file system watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	go func() {
		defer watcher.Close()
		target := filepath.Clean(path)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := e.LoadFile(fs, path); err != nil {
					slog.Error("Failed to reload endpoints file", "path", path, "error", err)
					continue
				}
				slog.Info("Reloaded endpoints file", "path", path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("Endpoints file watcher error", "error", err)
			}
		}
	}()
	return nil
}
