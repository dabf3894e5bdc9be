package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, w.Run(ctx))
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
}

func TestWatcherFiresOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	var calls atomic.Int32
	w := New(path, func(context.Context) error {
		calls.Add(1)
		return nil
	}, nil)
	w.Debounce = 20 * time.Millisecond
	w.Poll = time.Hour
	startWatcher(t, w)

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("ab"), 0o644))

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherPollsWhenEventsAreMissed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.db")

	var calls atomic.Int32
	w := New(path, func(context.Context) error {
		calls.Add(1)
		return nil
	}, nil)
	// A debounce longer than the test means only the poll can fire.
	w.Debounce = time.Hour
	w.Poll = 20 * time.Millisecond
	startWatcher(t, w)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestRelevant(t *testing.T) {
	w := New("/data/journal.db", nil, nil)
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"db write", fsnotify.Event{Name: "/data/journal.db", Op: fsnotify.Write}, true},
		{"wal write", fsnotify.Event{Name: "/data/journal.db-wal", Op: fsnotify.Write}, true},
		{"journal create", fsnotify.Event{Name: "/data/journal.db-journal", Op: fsnotify.Create}, true},
		{"chmod only", fsnotify.Event{Name: "/data/journal.db", Op: fsnotify.Chmod}, false},
		{"other file", fsnotify.Event{Name: "/data/notes.txt", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.relevant(tt.event))
		})
	}
}
