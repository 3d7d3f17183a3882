// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/sourcegraph/conc/pool"

	gitpkg "github.com/petar-djukic/go-striphints/internal/git"
	"github.com/petar-djukic/go-striphints/internal/report"
	"github.com/petar-djukic/go-striphints/internal/source"
	"github.com/petar-djukic/go-striphints/internal/stripper"
)

// Target says where stripped output goes.
type Target int

const (
	// TargetNone keeps output in the results only.
	TargetNone Target = iota
	// TargetInPlace rewrites changed files.
	TargetInPlace
	// TargetDir mirrors every input below Config.OutDir.
	TargetDir
)

// Config holds the settings for a batch run.
type Config struct {
	Strip  stripper.Options
	Jobs   int    // Parallel files (default runtime.NumCPU())
	Target Target // Where output is written
	OutDir string // Destination root for TargetDir
	Root   string // Inputs are placed below OutDir relative to Root

	// Repo, when set, guards in-place rewrites against files with
	// uncommitted changes.
	Repo *gitpkg.Repo

	Logger *slog.Logger
}

func (c *Config) applyDefaults() {
	if c.Jobs <= 0 {
		c.Jobs = runtime.NumCPU()
	}
	if c.Root == "" {
		c.Root = "."
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
}

// FileResult is the outcome for one file.
type FileResult struct {
	Path    string
	Source  *source.File
	Result  *stripper.Result // nil when Err is set
	Output  []byte           // Stripped text in the file's encoding
	Written string           // Destination path when output was written
	Err     error
}

// Runner strips a set of files.
type Runner struct {
	cfg Config
}

// NewRunner creates a Runner for cfg.
func NewRunner(cfg Config) *Runner {
	cfg.applyDefaults()
	return &Runner{cfg: cfg}
}

// Run processes paths on a bounded pool and returns one result per path,
// sorted by path. Per-file failures are reported in FileResult.Err; the
// returned error is reserved for conditions that stop the whole run.
func (r *Runner) Run(ctx context.Context, paths []string) ([]FileResult, error) {
	if r.cfg.Target == TargetInPlace && r.cfg.Repo != nil {
		if err := r.cfg.Repo.CheckClean(paths); err != nil {
			return nil, err
		}
	}

	p := pool.NewWithResults[FileResult]().WithMaxGoroutines(r.cfg.Jobs)
	for _, path := range paths {
		p.Go(func() FileResult {
			return r.Process(ctx, path)
		})
	}
	results := p.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// Process strips a single file and writes the output per the target.
func (r *Runner) Process(ctx context.Context, path string) FileResult {
	fr := FileResult{Path: path}
	log := r.cfg.Logger.With("path", path)

	if err := ctx.Err(); err != nil {
		fr.Err = err
		return fr
	}

	f, err := source.Read(path)
	if err != nil {
		fr.Err = err
		log.Error("reading file failed", "error", err)
		return fr
	}
	fr.Source = f

	opts := r.cfg.Strip
	opts.Filename = path
	if opts.Logger == nil {
		opts.Logger = r.cfg.Logger
	}
	res, err := stripper.StripString(ctx, f.Text, opts)
	if err != nil {
		fr.Err = err
		log.Error("strip failed", "error", err)
		return fr
	}
	fr.Result = res

	out, err := f.Encode(res.Output)
	if err != nil {
		fr.Err = fmt.Errorf("%s: %w", path, err)
		log.Error("encoding output failed", "error", err)
		return fr
	}
	fr.Output = out

	if opts.Mode != stripper.ModeDetectOnly {
		dest, err := r.write(path, res.Changed, out)
		if err != nil {
			fr.Err = err
			log.Error("writing output failed", "error", err)
			return fr
		}
		fr.Written = dest
	}

	log.Info("processed file",
		"changed", res.Changed, "spans", len(res.Spans), "skipped", len(res.Skipped), "written", fr.Written)
	return fr
}

// write stores out according to the target and returns the destination,
// or "" when nothing was written.
func (r *Runner) write(path string, changed bool, out []byte) (string, error) {
	switch r.cfg.Target {
	case TargetInPlace:
		if !changed {
			return "", nil
		}
		if err := source.WriteFile(path, out); err != nil {
			return "", fmt.Errorf("writing %s: %w", path, err)
		}
		return path, nil
	case TargetDir:
		dest := r.destination(path)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return "", fmt.Errorf("creating directory for %s: %w", dest, err)
		}
		if err := source.WriteFile(dest, out); err != nil {
			return "", fmt.Errorf("writing %s: %w", dest, err)
		}
		return dest, nil
	}
	return "", nil
}

// destination maps path below OutDir. Paths outside Root keep only their
// base name.
func (r *Runner) destination(path string) string {
	absRoot, err1 := filepath.Abs(r.cfg.Root)
	absPath, err2 := filepath.Abs(path)
	if err1 == nil && err2 == nil {
		if rel, err := filepath.Rel(absRoot, absPath); err == nil && rel != ".." &&
			!strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return filepath.Join(r.cfg.OutDir, rel)
		}
	}
	return filepath.Join(r.cfg.OutDir, filepath.Base(path))
}

// Summarize converts results into a report summary.
func Summarize(results []FileResult) *report.Summary {
	s := &report.Summary{Files: []report.File{}}
	for _, fr := range results {
		if fr.Err != nil {
			s.Add(report.File{Path: fr.Path, Error: fr.Err.Error()})
			continue
		}
		res := fr.Result
		s.Add(report.NewFile(fr.Path, res.Changed, res.Spans, res.Starts, res.Plans, res.Skipped))
	}
	return s
}

// Failed reports whether any result carries an error.
func Failed(results []FileResult) bool {
	for _, fr := range results {
		if fr.Err != nil {
			return true
		}
	}
	return false
}
