// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package watch reports files that changed under a set of paths, batching
// bursts of events behind a debounce interval.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 200 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	Paths    []string
	Debounce time.Duration // Quiet period before changes are reported (default 200ms)

	// Match selects the files whose changes are reported. Nil matches all.
	Match func(path string) bool

	// SkipDir prunes directories by name when adding watches. Nil skips none.
	SkipDir func(name string) bool

	Logger *slog.Logger
}

func (c *Config) applyDefaults() {
	if c.Debounce <= 0 {
		c.Debounce = defaultDebounce
	}
	if c.Match == nil {
		c.Match = func(string) bool { return true }
	}
	if c.SkipDir == nil {
		c.SkipDir = func(string) bool { return false }
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
}

// Handler receives the sorted set of files that changed during one
// debounce window.
type Handler func(ctx context.Context, paths []string)

// Watcher monitors directories for file changes.
type Watcher struct {
	cfg       Config
	fsWatcher *fsnotify.Watcher
	pending   map[string]bool
}

// New creates a Watcher and registers every configured path. Directories
// are watched recursively; a file is watched through its directory.
func New(cfg Config) (*Watcher, error) {
	cfg.applyDefaults()
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	w := &Watcher{cfg: cfg, fsWatcher: fsw, pending: make(map[string]bool)}

	for _, p := range cfg.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		if !info.IsDir() {
			abs = filepath.Dir(abs)
		}
		if err := w.addTree(abs); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// WatchedDirs returns the directories currently watched.
func (w *Watcher) WatchedDirs() []string {
	dirs := w.fsWatcher.WatchList()
	sort.Strings(dirs)
	return dirs
}

// Run delivers batches of changed files to handle until ctx is done, then
// closes the watcher.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	defer w.fsWatcher.Close()

	timer := time.NewTimer(w.cfg.Debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if w.record(event) {
				timer.Reset(w.cfg.Debounce)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.cfg.Logger.Warn("watch error", "error", err)

		case <-timer.C:
			paths := w.flush()
			if len(paths) > 0 {
				w.cfg.Logger.Info("files changed", "count", len(paths))
				handle(ctx, paths)
			}
		}
	}
}

// record notes event and reports whether it is pending for delivery.
func (w *Watcher) record(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	info, err := os.Stat(event.Name)
	if err != nil {
		return false
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := w.addTree(event.Name); err != nil {
				w.cfg.Logger.Warn("watching new directory failed", "path", event.Name, "error", err)
			}
		}
		return false
	}
	if !w.cfg.Match(event.Name) {
		return false
	}
	w.pending[event.Name] = true
	return true
}

func (w *Watcher) flush() []string {
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	clear(w.pending)
	return paths
}

// addTree watches root and every directory below it that SkipDir allows.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.cfg.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		w.cfg.Logger.Debug("watching directory", "path", path)
		return nil
	})
}
