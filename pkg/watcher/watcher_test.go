package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatchDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "params.yaml")
	if err := os.WriteFile(file, []byte("length: 10\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	fw, err := NewFileWatcher(100 * time.Millisecond)
	if err != nil {
		t.Fatalf("NewFileWatcher failed: %v", err)
	}
	defer fw.Close()

	var calls atomic.Int32
	changed := make(chan string, 4)
	if err := fw.Watch([]string{file}, func(path string) {
		calls.Add(1)
		changed <- path
	}); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fw.Start(ctx)

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(file, []byte("length: 20\n"), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	select {
	case path := <-changed:
		if filepath.Base(path) != "params.yaml" {
			t.Errorf("callback failed: expected params.yaml, got %s", path)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("callback failed: no change reported")
	}

	time.Sleep(300 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("debounce failed: expected 1 call, got %d", n)
	}
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "params.yaml")
	os.WriteFile(file, nil, 0o644)

	fw, err := NewFileWatcher(20 * time.Millisecond)
	if err != nil {
		t.Fatalf("NewFileWatcher failed: %v", err)
	}
	defer fw.Close()

	changed := make(chan string, 1)
	fw.Watch([]string{file}, func(path string) { changed <- path })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fw.Start(ctx)

	os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644)

	select {
	case path := <-changed:
		t.Errorf("callback failed: unexpected change for %s", path)
	case <-time.After(200 * time.Millisecond):
	}
}
