package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"backdrop/latch"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 150 * time.Millisecond

// Reload is one observed change of the config file.
type Reload struct {
	Config *Config
	Err    error
}

// Watch publishes a Reload to out after each debounced change to path until
// ctx is done. The parent directory is watched so editors that replace the
// file by rename are seen.
func Watch(ctx context.Context, path string, debounce time.Duration, out *latch.Value[Reload]) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return fmt.Errorf("config: watch %s: %w", filepath.Dir(abs), err)
	}
	go watchLoop(ctx, w, abs, debounce, out)
	return nil
}

func watchLoop(ctx context.Context, w *fsnotify.Watcher, path string, debounce time.Duration, out *latch.Value[Reload]) {
	defer w.Close()

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			out.Publish(Reload{Err: fmt.Errorf("config: watch: %w", err)})
		case <-timer.C:
			c, err := Load(path)
			out.Publish(Reload{Config: c, Err: err})
		}
	}
}
