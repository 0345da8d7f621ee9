package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"griddle/pkg/logging"
)

// DefaultDebounceInterval is the time to wait after the last file change
// before reloading, so editors that write in several steps trigger one
// reload instead of many.
const DefaultDebounceInterval = 500 * time.Millisecond

// Watcher monitors the config directory and delivers validated reloads.
// Invalid or malformed edits are logged and skipped; the previous
// configuration stays in effect.
type Watcher struct {
	configPath string
	onChange   func(GriddleConfig)

	mu        sync.Mutex
	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	running   bool

	debounceMu    sync.Mutex
	debounceTimer *time.Timer
}

// NewWatcher creates a watcher for config.yaml in the given directory.
// onChange receives every successfully reloaded configuration.
func NewWatcher(configPath string, onChange func(GriddleConfig)) *Watcher {
	return &Watcher{
		configPath: configPath,
		onChange:   onChange,
	}
}

// Start begins watching. It fails when the directory cannot be watched.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	// Watch the directory, not the file: editors replace files by
	// rename, which drops file-level watches.
	if err := fsWatcher.Add(w.configPath); err != nil {
		fsWatcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.configPath, err)
	}

	w.fsWatcher = fsWatcher
	w.stopCh = make(chan struct{})
	w.running = true

	go w.loop()
	logging.Info("ConfigWatcher", "Watching %s for configuration changes", w.configPath)
	return nil
}

// Stop ends watching. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.running = false
	close(w.stopCh)
	w.fsWatcher.Close()

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceMu.Unlock()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != configFileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			logging.Error("ConfigWatcher", err, "config watcher error")
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(DefaultDebounceInterval, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := LoadConfig(w.configPath)
	if err != nil {
		logging.Warn("ConfigWatcher", "ignoring config change: %v", err)
		return
	}
	logging.Info("ConfigWatcher", "configuration reloaded")
	w.onChange(cfg)
}
