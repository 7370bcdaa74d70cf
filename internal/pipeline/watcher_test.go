package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestResumeWatcherStartStop(t *testing.T) {
	resume := filepath.Join(t.TempDir(), "resume.pdf")
	if err := os.WriteFile(resume, []byte("resume"), 0o600); err != nil {
		t.Fatal(err)
	}

	w := NewResumeWatcher(resume, 10*time.Millisecond, func() {}, testLogger)
	if w.IsRunning() {
		t.Fatal("watcher should not run before Start")
	}

	if err := w.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if !w.IsRunning() {
		t.Error("watcher should report running after Start")
	}
	if err := w.Start(); err == nil {
		t.Error("second Start should fail")
	}

	if err := w.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if w.IsRunning() {
		t.Error("watcher should not report running after Stop")
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop should be a no-op, got %v", err)
	}
}

func TestShouldProcessEvent(t *testing.T) {
	w := NewResumeWatcher("/resumes/resume.pdf", time.Second, func() {}, testLogger)

	tests := []struct {
		name     string
		event    fsnotify.Event
		expected bool
	}{
		{
			name:     "write to watched file",
			event:    fsnotify.Event{Name: "/resumes/resume.pdf", Op: fsnotify.Write},
			expected: true,
		},
		{
			name:     "atomic rename in watched directory",
			event:    fsnotify.Event{Name: "/tmp/stage/resume.pdf", Op: fsnotify.Rename},
			expected: true,
		},
		{
			name:     "unrelated file in directory",
			event:    fsnotify.Event{Name: "/resumes/notes.txt", Op: fsnotify.Write},
			expected: false,
		},
		{
			name:     "chmod on watched file",
			event:    fsnotify.Event{Name: "/resumes/resume.pdf", Op: fsnotify.Chmod},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.shouldProcessEvent(tt.event); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestHasResumeChanged(t *testing.T) {
	resume := filepath.Join(t.TempDir(), "resume.pdf")
	if err := os.WriteFile(resume, []byte("v1"), 0o600); err != nil {
		t.Fatal(err)
	}

	w := NewResumeWatcher(resume, time.Second, func() {}, testLogger)

	// First observation records the baseline.
	if !w.hasResumeChanged() {
		t.Error("first check should report a change")
	}
	if w.hasResumeChanged() {
		t.Error("unchanged file should not report a change")
	}

	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(resume, future, future); err != nil {
		t.Fatal(err)
	}
	if !w.hasResumeChanged() {
		t.Error("touched file should report a change")
	}
}
