package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReportsNewScreenshots(t *testing.T) {
	dir := t.TempDir()
	found := make(chan string, 4)

	w, err := New(dir, slog.New(slog.NewTextHandler(io.Discard, nil)), func(path string) {
		found <- path
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher a moment to register.
	time.Sleep(100 * time.Millisecond)

	shot := filepath.Join(dir, "search_acme_20250101_120000_001.png")
	if err := os.WriteFile(shot, []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}
	// Non-evidence files are ignored
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-found:
		if got != shot {
			t.Errorf("reported %q, want %q", got, shot)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never reported the new screenshot")
	}

	select {
	case got := <-found:
		t.Errorf("unexpected extra report: %q", got)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}

func TestWatcherCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "screenshots")

	if _, err := New(dir, slog.New(slog.NewTextHandler(io.Discard, nil)), nil); err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("watch dir should be created: %v", err)
	}
}
