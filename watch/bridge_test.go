package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"govfs/logging"
)

func newTestBridge(t *testing.T) *Bridge {
	t.Helper()
	b, err := New(20*time.Millisecond, logging.Default())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func waitForEvent(t *testing.T, b *Bridge, wantPath string, wantKind Kind) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-b.Events():
			if !ok {
				t.Fatalf("events channel closed before %s event for %s arrived", wantKind, wantPath)
			}
			if ev.Path == wantPath {
				if ev.Kind != wantKind {
					t.Fatalf("expected kind %s for %s, got %s", wantKind, wantPath, ev.Kind)
				}
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event on %s", wantKind, wantPath)
		}
	}
}

func TestBridgeReportsCreateAndWrite(t *testing.T) {
	dir := t.TempDir()
	b := newTestBridge(t)
	if err := b.Watch(dir); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	file := filepath.Join(dir, "hello.txt")
	if err := os.WriteFile(file, []byte("hi"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	// Creating and writing the file fall in one debounce window, so the
	// flushed event carries the last kind observed: Write.
	waitForEvent(t, b, file, Write)
}

func TestBridgeReportsRemove(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "gone.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	b := newTestBridge(t)
	if err := b.Watch(dir); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := os.Remove(file); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	waitForEvent(t, b, file, Remove)
}

func TestBridgeCloseClosesChannels(t *testing.T) {
	b, err := New(20*time.Millisecond, logging.Default())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	deadline := time.After(2 * time.Second)
	select {
	case _, ok := <-b.Events():
		if ok {
			t.Fatalf("expected Events channel to be closed")
		}
	case <-deadline:
		t.Fatalf("timed out waiting for Events to close")
	}
}
