package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReportsNewFile(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := New(".pdf", ".txt").Watch(ctx, dir)
	require.NoError(t, err)

	target := filepath.Join(dir, "report.txt")
	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(target, []byte("content"), 0644)
	}()

	select {
	case path := <-changes:
		assert.Equal(t, target, path)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change")
	}
}

func TestWatcher_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	changes, err := New().Watch(ctx, t.TempDir())
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestWatcher_MissingDir(t *testing.T) {
	_, err := New().Watch(context.Background(), filepath.Join(t.TempDir(), "missing"))

	assert.Error(t, err)
}

func TestWatcher_Relevant(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.pdf")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	sub := filepath.Join(dir, "sub.pdf")
	require.NoError(t, os.Mkdir(sub, 0755))

	w := New(".pdf")
	tests := []struct {
		name string
		path string
		op   fsnotify.Op
		want bool
	}{
		{"create", file, fsnotify.Create, true},
		{"write", file, fsnotify.Write, true},
		{"write with chmod", file, fsnotify.Write | fsnotify.Chmod, true},
		{"remove", filepath.Join(dir, "gone.pdf"), fsnotify.Remove, true},
		{"rename", filepath.Join(dir, "old.pdf"), fsnotify.Rename, true},
		{"chmod only", file, fsnotify.Chmod, false},
		{"other extension", filepath.Join(dir, "notes.docx"), fsnotify.Remove, false},
		{"upper-case extension", filepath.Join(dir, "B.PDF"), fsnotify.Remove, true},
		{"hidden", filepath.Join(dir, ".a.pdf"), fsnotify.Remove, false},
		{"directory", sub, fsnotify.Create, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, w.relevant(fsnotify.Event{Name: tc.path, Op: tc.op}))
		})
	}
}
