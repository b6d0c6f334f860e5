package settings

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces bursts of fsnotify events (editors often emit
// several writes per save) into a single reload signal.
const debounceWindow = 250 * time.Millisecond

// Watcher monitors the settings directory for external edits to the JSON
// documents and signals when a reload is needed. Goroutine + buffered
// channel + Close, same shape as the other watchers in this codebase.
type Watcher struct {
	fsw       *fsnotify.Watcher
	reloadCh  chan struct{}
	closeCh   chan struct{}
	closeOnce sync.Once

	// Tracks when the app itself saved, to ignore self-triggered events
	lastSaveTime time.Time
	saveMu       sync.RWMutex
}

// ignoreWindow is the time window after NotifySave during which events are
// treated as the app's own writes.
const ignoreWindow = 1 * time.Second

// NewWatcher watches dir for changes to the settings documents.
func NewWatcher(dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		reloadCh: make(chan struct{}, 1),
		closeCh:  make(chan struct{}),
	}
	go w.watchLoop()
	return w, nil
}

func (w *Watcher) watchLoop() {
	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-w.closeCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !isSettingsDocument(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			w.saveMu.RLock()
			selfSave := time.Since(w.lastSaveTime) < ignoreWindow
			w.saveMu.RUnlock()
			if selfSave {
				continue
			}

			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerCh = timer.C
			} else {
				timer.Reset(debounceWindow)
			}

		case <-timerCh:
			timer = nil
			timerCh = nil
			// Non-blocking send (drop if channel full)
			select {
			case w.reloadCh <- struct{}{}:
			default:
				settingsLog.Debug("settings_watcher_channel_full")
			}

		case err, ok := <-w.fsw.Errors:
			if ok && err != nil {
				settingsLog.Warn("settings_watcher_error", slog.String("error", err.Error()))
			}
		}
	}
}

// isSettingsDocument reports whether the path names one of the watched
// JSON documents.
func isSettingsDocument(path string) bool {
	name := filepath.Base(path)
	switch name {
	case AppSettingsFile, ZoomConfigFile, UniversalSettingsFile, MediaConfigFile:
		return true
	}
	return strings.EqualFold(name, OnboardingMarkerFile)
}

// ReloadChannel returns the channel that signals when a reload is needed.
func (w *Watcher) ReloadChannel() <-chan struct{} {
	return w.reloadCh
}

// NotifySave should be called right before the app saves a document, so the
// watcher can ignore the resulting events.
func (w *Watcher) NotifySave() {
	w.saveMu.Lock()
	w.lastSaveTime = time.Now()
	w.saveMu.Unlock()
}

// Close stops the watcher. Safe to call multiple times.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.closeCh)
		err = w.fsw.Close()
	})
	return err
}
