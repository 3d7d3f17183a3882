// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package git answers the repository questions a rewrite run needs: which
// files are tracked, and whether files about to be rewritten in place carry
// uncommitted changes.
package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	gogit "github.com/go-git/go-git/v5"
)

// ErrDirtyWorkTree is returned when files to be rewritten have uncommitted
// changes and AllowDirty is false.
var ErrDirtyWorkTree = errors.New("uncommitted changes exist")

// ErrNoGit is returned when the working directory is not inside a git
// repository.
var ErrNoGit = errors.New("not a git repository")

// Config configures repository access.
type Config struct {
	WorkDir    string // Any directory inside the repository
	AllowDirty bool   // Permit in-place rewrites of modified files
}

// Repo wraps a go-git repository for the operations we need.
type Repo struct {
	repo *gogit.Repository
	root string
	cfg  Config
}

// Open opens the repository containing cfg.WorkDir, searching parent
// directories. Returns ErrNoGit if there is none.
func Open(cfg Config) (*Repo, error) {
	r, err := gogit.PlainOpenWithOptions(cfg.WorkDir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGit, err)
	}
	wt, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGit, err)
	}
	root, err := filepath.Abs(wt.Filesystem.Root())
	if err != nil {
		return nil, fmt.Errorf("resolving repository root: %w", err)
	}
	return &Repo{repo: r, root: root, cfg: cfg}, nil
}

// Root returns the absolute path of the working tree.
func (r *Repo) Root() string {
	return r.root
}

// IsDirty returns true if the working tree has uncommitted changes
// (either staged or unstaged).
func (r *Repo) IsDirty() (bool, error) {
	status, err := r.status()
	if err != nil {
		return false, err
	}
	return !status.IsClean(), nil
}

// TrackedFiles returns the absolute paths of all files in the index,
// sorted.
func (r *Repo) TrackedFiles() ([]string, error) {
	idx, err := r.repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	files := make([]string, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		files = append(files, filepath.Join(r.root, filepath.FromSlash(e.Name)))
	}
	sort.Strings(files)
	return files, nil
}

// DirtyFiles returns those of paths that have staged or unstaged changes.
func (r *Repo) DirtyFiles(paths []string) ([]string, error) {
	status, err := r.status()
	if err != nil {
		return nil, err
	}
	var dirty []string
	for _, p := range paths {
		rel, err := r.rel(p)
		if err != nil {
			continue
		}
		fs, ok := status[rel]
		if !ok {
			continue
		}
		if fs.Staging != gogit.Unmodified || fs.Worktree != gogit.Unmodified {
			dirty = append(dirty, p)
		}
	}
	return dirty, nil
}

// CheckClean returns ErrDirtyWorkTree when any of paths has uncommitted
// changes, unless Config.AllowDirty is set.
func (r *Repo) CheckClean(paths []string) error {
	if r.cfg.AllowDirty {
		return nil
	}
	dirty, err := r.DirtyFiles(paths)
	if err != nil {
		return err
	}
	if len(dirty) > 0 {
		return fmt.Errorf("%w: %s (use --allow-dirty to override)", ErrDirtyWorkTree, dirty[0])
	}
	return nil
}

func (r *Repo) status() (gogit.Status, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("getting status: %w", err)
	}
	return status, nil
}

// rel converts p to a slash-separated path relative to the root.
func (r *Repo) rel(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
