package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces bursts of filesystem events into a single
// reload. Editors and config management tools typically emit several
// events per save.
const debounceDelay = 250 * time.Millisecond

// watchBFDConfig reloads all role loaders when the BFD configuration
// file changes on disk. The watch is placed on the parent directory
// because most editors replace the file on save, which would orphan a
// watch on the file itself. Blocks until the context is cancelled.
func watchBFDConfig(ctx context.Context, path string, mgr *loadManager, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch directory %s: %w", dir, err)
	}

	logger.Info("watching bfd configuration for changes",
		slog.String("path", path),
	)

	target := filepath.Clean(path)

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			logger.Info("bfd configuration changed on disk, reloading",
				slog.String("path", path),
			)
			mgr.loadAll()

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("config watcher error",
				slog.String("error", watchErr.Error()),
			)
		}
	}
}
