package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/go-cmp/cmp"
)

// reloadDelay coalesces the burst of events a single save produces.
var reloadDelay = 200 * time.Millisecond

// Watch monitors path and calls onChange with the newly loaded Config when a
// save changes the analysis configuration. It runs until ctx is cancelled.
//
// The containing directory is watched, so saves that replace the file by
// rename are followed. A reload that fails validation is logged and skipped,
// and a reload equal to the last applied Config (a comment or whitespace
// edit) does not call onChange. onChange must treat the Config as read-only.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	name := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(name)); err != nil {
		return err
	}

	last, err := Load(path)
	if err != nil {
		slog.Warn("config: current file invalid, waiting for a valid save", "path", path, "err", err)
		last = nil
	}
	slog.Info("config: watching for changes", "path", path)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending = time.After(reloadDelay)

		case <-pending:
			pending = nil
			cfg, err := Load(path)
			if err != nil {
				slog.Error("config: reload rejected", "path", path, "err", err)
				continue
			}
			if last != nil && cmp.Equal(last, cfg) {
				slog.Debug("config: saved without changes", "path", path)
				continue
			}
			last = cfg

			slog.Info("config: reloaded", "path", path, "engines", len(cfg.Engines), "routes", len(cfg.Routes), "alerts", len(cfg.Alerts))
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}
