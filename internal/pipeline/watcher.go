package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"jobpilot/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// ResumeWatcher watches the resume file and triggers a callback when it
// changes, so scheduled runs always encode the current resume. Editors
// replace files atomically via rename, which is why the parent directory is
// watched alongside the file itself.
type ResumeWatcher struct {
	mu sync.RWMutex

	resumePath  string
	lastModTime time.Time

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	onChange func()
	logger   *errors.Logger

	running bool
}

// NewResumeWatcher creates a watcher for the given resume file.
func NewResumeWatcher(resumePath string, debounceDelay time.Duration, onChange func(), logger *errors.Logger) *ResumeWatcher {
	if debounceDelay == 0 {
		debounceDelay = time.Second
	}

	return &ResumeWatcher{
		resumePath:    resumePath,
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1), // Buffered to prevent blocking
		onChange:      onChange,
		logger:        logger,
	}
}

// Start begins watching the resume file for changes.
func (w *ResumeWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("resume watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	w.fsWatcher = watcher

	if stat, err := os.Stat(w.resumePath); err == nil {
		w.lastModTime = stat.ModTime()
	}

	if err := w.fsWatcher.Add(w.resumePath); err != nil && !os.IsNotExist(err) {
		w.cleanupWatcher()
		return fmt.Errorf("failed to watch resume file %s: %w", w.resumePath, err)
	}
	dir := filepath.Dir(w.resumePath)
	if err := w.fsWatcher.Add(dir); err != nil {
		w.logger.Warn("Failed to watch resume directory for atomic writes",
			"directory", dir, "error", err)
	}

	w.running = true
	go w.watchLoop()

	w.logger.Info("Resume file watcher started",
		"file", w.resumePath,
		"debounce_delay", w.debounceDelay)
	return nil
}

// Stop stops the watcher.
func (w *ResumeWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	close(w.stopChan)

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	if w.fsWatcher != nil {
		if err := w.fsWatcher.Close(); err != nil {
			w.logger.LogError(err, "Failed to close file system watcher")
			return err
		}
	}

	w.running = false
	w.logger.Info("Resume file watcher stopped")
	return nil
}

// IsRunning reports whether the watcher is active.
func (w *ResumeWatcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

func (w *ResumeWatcher) cleanupWatcher() {
	if w.fsWatcher != nil {
		if closeErr := w.fsWatcher.Close(); closeErr != nil {
			w.logger.LogError(closeErr, "Failed to close file watcher during cleanup")
		}
	}
}

func (w *ResumeWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if w.shouldProcessEvent(event) {
				w.scheduleReload()
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.LogError(err, "Resume watcher error")

		case <-w.reloadChan:
			// Debounced change trigger
			if w.hasResumeChanged() {
				w.logger.Info("Resume file changed, re-encoding profile",
					"file", w.resumePath)
				w.onChange()
			}

		case <-w.stopChan:
			return
		}
	}
}

// shouldProcessEvent filters directory noise down to events touching the
// resume file.
func (w *ResumeWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Name != w.resumePath && filepath.Base(event.Name) != filepath.Base(w.resumePath) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// hasResumeChanged compares the file's modification time against the last
// observed one.
func (w *ResumeWatcher) hasResumeChanged() bool {
	stat, err := os.Stat(w.resumePath)
	if err != nil {
		if os.IsNotExist(err) && !w.lastModTime.IsZero() {
			// File was deleted
			w.mu.Lock()
			w.lastModTime = time.Time{}
			w.mu.Unlock()
			return true
		}
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.lastModTime.IsZero() || stat.ModTime().After(w.lastModTime) {
		w.lastModTime = stat.ModTime()
		return true
	}
	return false
}

// scheduleReload resets the debounce timer so bursts of write events collapse
// into one change notification.
func (w *ResumeWatcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		select {
		case w.reloadChan <- struct{}{}:
		default:
			// A change notification is already pending
		}
	})
}
