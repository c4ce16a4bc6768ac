package config

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config whenever the file at path changes and hands
// the fresh copy to onReload. The parent directory is watched, not the
// file itself, so editors that replace the file atomically still trigger
// a reload. Runs until ctx is cancelled; a broken rewrite is logged and
// the previous config stays in effect.
func Watch(ctx context.Context, path string, onReload func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	slog.Info("config watcher started", "path", abs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Name != abs || !ev.Op.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			cfg, loadErr := Load(abs)
			if loadErr != nil {
				slog.Warn("config reload failed, keeping previous", "error", loadErr)
				continue
			}
			slog.Info("config reloaded", "path", abs)
			onReload(cfg)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("config watcher error", "error", werr)
		}
	}
}
