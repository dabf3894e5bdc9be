// Package watch reports changes to the journal database made by other processes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	DefaultDebounce = 200 * time.Millisecond
	DefaultPoll     = 2 * time.Second
)

// Watcher calls OnChange after the database file settles.
type Watcher struct {
	Path     string
	Debounce time.Duration
	Poll     time.Duration
	Logger   *slog.Logger
	OnChange func(ctx context.Context) error
}

// New returns a watcher for the database at path.
func New(path string, onChange func(ctx context.Context) error, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		Path:     path,
		Debounce: DefaultDebounce,
		Poll:     DefaultPoll,
		Logger:   logger,
		OnChange: onChange,
	}
}

// Run blocks until ctx is done. OnChange errors are logged and do not stop
// the loop.
func (w *Watcher) Run(ctx context.Context) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	// The directory is watched because SQLite replaces and truncates its
	// side files.
	dir := filepath.Dir(w.Path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ticker := time.NewTicker(w.Poll)
	defer ticker.Stop()

	var (
		settle  *time.Timer
		settled <-chan time.Time
		last    = w.fingerprint()
	)
	defer func() {
		if settle != nil {
			settle.Stop()
		}
	}()
	arm := func() {
		if settle == nil {
			settle = time.NewTimer(w.Debounce)
		} else {
			settle.Reset(w.Debounce)
		}
		settled = settle.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				arm()
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.Logger.Warn("file watcher error", slog.Any("err", werr))
		case <-settled:
			settled = nil
			last = w.fingerprint()
			w.fire(ctx)
		case <-ticker.C:
			// Backup polling in case file events are missed.
			if fp := w.fingerprint(); fp != last {
				last = fp
				w.fire(ctx)
			}
		}
	}
}

func (w *Watcher) fire(ctx context.Context) {
	if w.OnChange == nil {
		return
	}
	if err := w.OnChange(ctx); err != nil {
		w.Logger.Warn("reload after change failed", slog.Any("err", err))
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	base := filepath.Base(w.Path)
	name := filepath.Base(event.Name)
	return name == base || strings.HasPrefix(name, base+"-")
}

type fingerprint struct {
	size    int64
	modTime time.Time
}

// fingerprint covers the database file and its WAL.
func (w *Watcher) fingerprint() [2]fingerprint {
	var fp [2]fingerprint
	for i, p := range []string{w.Path, w.Path + "-wal"} {
		if info, err := os.Stat(p); err == nil {
			fp[i] = fingerprint{size: info.Size(), modTime: info.ModTime()}
		}
	}
	return fp
}
