package config

import (
	"context"

	"github.com/fsnotify/fsnotify"

	"github.com/hearthd/hearthd/internal/hlog"
)

// Watch reloads the config file into the Manager whenever it changes on
// disk, until ctx is cancelled. Only later Current() calls see the new
// values; settings the run command read at startup (log level, log file,
// LLM providers, listen port) are not re-applied.
func (m *Manager) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		hlog.Log.Warn("config watch: cannot watch file, hot-reload disabled", "path", path, "err", err)
		<-ctx.Done()
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := m.Load(path); err != nil {
				hlog.Log.Warn("config reload failed, keeping previous config", "err", err)
				continue
			}
			hlog.Log.Info("config reloaded", "path", path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			hlog.Log.Warn("config watcher error", "err", err)
		}
	}
}
