package internal

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDocuments calls onChange once per burst of PDF changes in dir until
// ctx is done. Bursts shorter than debounce are coalesced.
func WatchDocuments(ctx context.Context, dir string, debounce time.Duration, log *slog.Logger, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("%w: watch %s: %w", ErrNoDirectory, dir, err)
	}

	go func() {
		defer watcher.Close()

		timer := time.NewTimer(0)
		if !timer.Stop() {
			<-timer.C
		}
		pending := false

		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isDocumentEvent(event) {
					continue
				}
				if !pending {
					timer.Reset(debounce)
					pending = true
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if log != nil {
					log.Warn("watch error", "dir", dir, "error", err)
				}
			case <-timer.C:
				pending = false
				if log != nil {
					log.Info("documents changed", "dir", dir)
				}
				onChange()
			}
		}
	}()

	return nil
}

func isDocumentEvent(event fsnotify.Event) bool {
	if !IsPDF(event.Name) && filepath.Base(event.Name) != IgnoreFilename {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}
