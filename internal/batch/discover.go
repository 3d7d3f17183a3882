// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package batch finds Python files under the given paths and strips them
// in parallel.
package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// skipDirs contains directory names that Discover never descends into.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	".tox":         true,
	".nox":         true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	".mypy_cache":  true,
	"node_modules": true,
}

// SkipDir reports whether a directory named name is never searched.
func SkipDir(name string) bool {
	return skipDirs[name]
}

// IsPython reports whether path names a file a directory walk collects.
func IsPython(path string) bool {
	return strings.HasSuffix(path, pySuffix)
}

// pySuffix marks the files a directory walk collects.
const pySuffix = ".py"

// Discover expands paths into the Python files to process. Files named
// directly are always included. Directories are walked: skipDirs are not
// entered, .gitignore patterns found under the directory are honored, and
// only .py files are collected. When tracked is non-nil, walked files must
// also appear in it (absolute paths).
//
// The result is sorted and free of duplicates.
func Discover(paths []string, tracked []string) ([]string, error) {
	var keep map[string]bool
	if tracked != nil {
		keep = make(map[string]bool, len(tracked))
		for _, p := range tracked {
			keep[p] = true
		}
	}

	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			add(filepath.Clean(p))
			continue
		}
		found, err := walk(p, keep)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}

	sort.Strings(files)
	return files, nil
}

// walk collects the .py files below dir.
func walk(dir string, keep map[string]bool) ([]string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving directory: %w", err)
	}
	matcher := loadGitignore(absDir)

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil || rel == "." {
			return nil
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")

		if d.IsDir() {
			if skipDirs[d.Name()] || matcher.Match(parts, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsPython(d.Name()) || matcher.Match(parts, false) {
			return nil
		}
		if keep != nil && !keep[filepath.Join(absDir, rel)] {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}
	return paths, nil
}

// loadGitignore reads the .gitignore files below root. Unreadable files
// yield a matcher that matches nothing.
func loadGitignore(root string) gitignore.Matcher {
	patterns, err := gitignore.ReadPatterns(osfs.New(root), nil)
	if err != nil {
		patterns = nil
	}
	return gitignore.NewMatcher(patterns)
}
