package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"rug/pkg/logging"
)

const defaultReloadDebounce = 500 * time.Millisecond

// Watcher reloads config.yaml whenever it changes on disk and hands every
// valid result to apply. Invalid edits are logged and ignored.
type Watcher struct {
	dir      string
	debounce time.Duration
	apply    func(RugConfig)
}

// NewWatcher creates a Watcher for the config.yaml in dir.
func NewWatcher(dir string, debounce time.Duration, apply func(RugConfig)) *Watcher {
	if debounce <= 0 {
		debounce = defaultReloadDebounce
	}
	return &Watcher{dir: dir, debounce: debounce, apply: apply}
}

// Run watches until ctx is cancelled. A directory that cannot be watched
// disables reloading; it is never fatal.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn("ConfigWatcher", "Config reload disabled: %v", err)
		return nil
	}
	defer fsw.Close()

	// Editors replace the file on save, so the directory is watched.
	if err := fsw.Add(w.dir); err != nil {
		logging.Warn("ConfigWatcher", "Config reload disabled, cannot watch %s: %v", w.dir, err)
		return nil
	}
	logging.Info("ConfigWatcher", "Watching %s for changes", filepath.Join(w.dir, configFileName))

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != configFileName {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logging.Error("ConfigWatcher", err, "Filesystem watcher error")
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadConfig(w.dir)
	if err != nil {
		logging.Warn("ConfigWatcher", "Ignoring config change: %v", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		logging.Warn("ConfigWatcher", "Ignoring invalid config change: %v", err)
		return
	}

	logging.Info("ConfigWatcher", "Reloaded %s", filepath.Join(w.dir, configFileName))
	w.apply(cfg)
}
