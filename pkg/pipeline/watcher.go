package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// SettingsWatcher regenerates the stylesheet whenever the editor
// settings file changes. The parent directory is watched rather than
// the file itself because editors typically save via rename, which
// would drop a direct watch.
//
// Events are debounced so a burst of saves triggers one run.
type SettingsWatcher struct {
	watcher  *fsnotify.Watcher
	runner   *Runner
	path     string
	debounce time.Duration
	logger   *slog.Logger

	timerMu sync.Mutex
	timer   *time.Timer

	mu       sync.Mutex
	stopped  bool
	stopChan chan struct{}
}

// DefaultDebounce groups rapid successive saves of the settings file.
const DefaultDebounce = 200 * time.Millisecond

// NewSettingsWatcher creates a watcher over settingsPath driving
// runner. A non-positive debounce falls back to DefaultDebounce.
func NewSettingsWatcher(runner *Runner, settingsPath string, debounce time.Duration, logger *slog.Logger) (*SettingsWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create settings watcher: %w", err)
	}
	return &SettingsWatcher{
		watcher:  w,
		runner:   runner,
		path:     filepath.Clean(settingsPath),
		debounce: debounce,
		logger:   logger,
		stopChan: make(chan struct{}),
	}, nil
}

// Start begins watching and returns immediately; events are handled on
// a background goroutine.
func (sw *SettingsWatcher) Start() error {
	dir := filepath.Dir(sw.path)
	if err := sw.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	sw.logger.Info("watching editor settings", "path", sw.path)

	go sw.eventLoop()
	return nil
}

// Stop stops the watcher. Idempotent.
func (sw *SettingsWatcher) Stop() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.stopped {
		return nil
	}
	sw.stopped = true
	close(sw.stopChan)

	sw.timerMu.Lock()
	if sw.timer != nil {
		sw.timer.Stop()
		sw.timer = nil
	}
	sw.timerMu.Unlock()

	err := sw.watcher.Close()
	sw.logger.Info("settings watcher stopped")
	return err
}

func (sw *SettingsWatcher) eventLoop() {
	for {
		select {
		case <-sw.stopChan:
			return

		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			sw.handleEvent(event)

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.logger.Error("settings watcher error", "error", err)
		}
	}
}

func (sw *SettingsWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != sw.path {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	sw.logger.Debug("settings changed", "op", event.Op.String())
	sw.scheduleRun()
}

// scheduleRun (re)arms the debounce timer; only the last event of a
// burst fires a pipeline run.
func (sw *SettingsWatcher) scheduleRun() {
	sw.timerMu.Lock()
	defer sw.timerMu.Unlock()

	if sw.timer != nil {
		sw.timer.Stop()
	}
	sw.timer = time.AfterFunc(sw.debounce, func() {
		if err := sw.runner.Run(context.Background()); err != nil {
			sw.logger.Warn("pipeline run failed", "error", err)
		}
	})
}
