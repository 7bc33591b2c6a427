package config

import (
	"os"
	"testing"
	"time"
)

func TestWatcherReload(t *testing.T) {
	path := writeFile(t, "limits.toml", "buffer_size = 4096\n")

	w, err := Watch(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("watch failed: %v", err)
	}
	defer w.Close()

	if got := w.Limits().BufferSize; got != 4096 {
		t.Fatalf("expected initial buffer size 4096, got %d", got)
	}

	changed := make(chan Limits, 1)
	w.Subscribe(func(l Limits) {
		select {
		case changed <- l:
		default:
		}
	})

	if err := os.WriteFile(path, []byte("buffer_size = 8192\n"), 0o644); err != nil {
		t.Fatalf("rewriting config: %v", err)
	}

	select {
	case l := <-changed:
		if l.BufferSize != 8192 {
			t.Errorf("expected buffer size 8192, got %d", l.BufferSize)
		}
		if w.Limits().BufferSize != 8192 {
			t.Errorf("expected watcher limits updated, got %d", w.Limits().BufferSize)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload notification")
	}
}

func TestWatcherKeepsLimitsOnBadReload(t *testing.T) {
	path := writeFile(t, "limits.toml", "buffer_size = 4096\n")

	w, err := Watch(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("watch failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("buffer_size = -1\n"), 0o644); err != nil {
		t.Fatalf("rewriting config: %v", err)
	}

	// The invalid file must be skipped; previous limits stand.
	time.Sleep(200 * time.Millisecond)
	if got := w.Limits().BufferSize; got != 4096 {
		t.Errorf("expected previous buffer size 4096, got %d", got)
	}
}

func TestWatcherRejectsBadInitialConfig(t *testing.T) {
	path := writeFile(t, "limits.toml", "buffer_size = 0\n")

	if _, err := Watch(path); err == nil {
		t.Fatal("expected error for invalid initial config")
	}
}
