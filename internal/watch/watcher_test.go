package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	logadapter "github.com/bft-labs/docsave/internal/adapters/log"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestFileWatcher_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.xml")
	writeFile(t, path, "v0")

	var calls atomic.Int32
	fired := make(chan struct{}, 8)
	w := NewFileWatcher(path, 80*time.Millisecond, func() {
		calls.Add(1)
		select {
		case fired <- struct{}{}:
		default:
		}
	}, logadapter.NewNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to attach to the directory.
	time.Sleep(50 * time.Millisecond)

	for i := 1; i <= 5; i++ {
		writeFile(t, path, fmt.Sprintf("v%d", i))
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("callback never ran")
	}
	time.Sleep(150 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("callback ran %d times for one write burst, want 1", n)
	}

	cancel()
	<-done
}

func TestFileWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.xml")
	other := filepath.Join(dir, "other.xml")
	writeFile(t, path, "v0")

	var calls atomic.Int32
	w := NewFileWatcher(path, 20*time.Millisecond, func() { calls.Add(1) }, logadapter.NewNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	writeFile(t, other, "noise")
	time.Sleep(100 * time.Millisecond)

	if n := calls.Load(); n != 0 {
		t.Errorf("callback ran %d times for an unrelated file, want 0", n)
	}

	cancel()
	<-done
}

func TestFileWatcher_SeesRenameIntoPlace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.xml")
	writeFile(t, path, "v0")

	fired := make(chan struct{}, 1)
	w := NewFileWatcher(path, 20*time.Millisecond, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	}, logadapter.NewNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)

	// Atomic editor-style write: temp file renamed over the document.
	tmp := filepath.Join(dir, "doc.xml.swap")
	writeFile(t, tmp, "v1")
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("callback never ran for a rename-into-place write")
	}

	cancel()
	<-done
}

func TestFileWatcher_FlushesPendingOnShutdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.xml")
	writeFile(t, path, "v0")

	var calls atomic.Int32
	w := NewFileWatcher(path, 500*time.Millisecond, func() { calls.Add(1) }, logadapter.NewNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	writeFile(t, path, "v1")
	time.Sleep(100 * time.Millisecond) // event observed, debounce still pending

	cancel()
	<-done

	if n := calls.Load(); n != 1 {
		t.Errorf("callback ran %d times, want 1 (pending change flushed on shutdown)", n)
	}
}
