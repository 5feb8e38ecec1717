package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocsWatcher_ReindexesOnMarkdownEdit(t *testing.T) {
	dir := t.TempDir()
	var calls int32

	w, err := New(dir, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(w.Stop)

	// Several quick writes collapse into one reindex
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "api.md"), []byte("# API\n"), 0o644))
	}

	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDocsWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	var calls int32

	w, err := New(dir, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(w.Stop)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Docs"), 0o644))

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestDocsWatcher_StartMissingDir(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "missing"), func(context.Context) error { return nil })
	require.NoError(t, err)
	assert.Error(t, w.Start(context.Background()))
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "/docs/api.md", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/docs/API.MD", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/docs/api.md", Op: fsnotify.Remove}, true},
		{fsnotify.Event{Name: "/docs/api.md", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "/docs/README.md", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "/docs/.api.md.swp", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "/docs/data.json", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		if got := relevant(tt.event); got != tt.want {
			t.Errorf("relevant(%v) = %v, want %v", tt.event, got, tt.want)
		}
	}
}
