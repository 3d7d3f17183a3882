// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/petar-djukic/go-striphints/internal/batch"
	gitpkg "github.com/petar-djukic/go-striphints/internal/git"
	"github.com/petar-djukic/go-striphints/internal/oracle"
	"github.com/petar-djukic/go-striphints/internal/report"
	"github.com/petar-djukic/go-striphints/internal/source"
	"github.com/petar-djukic/go-striphints/internal/stripper"
)

// output collects the destination flags of a run.
type output struct {
	outfile   string
	inplace   bool
	outdir    string
	diff      bool
	testOnly  bool
	reportFmt string
}

func readOutput(cmd *cobra.Command) output {
	var o output
	o.inplace, _ = cmd.Flags().GetBool("inplace")
	o.outdir, _ = cmd.Flags().GetString("outdir")
	if cmd.Flags().Lookup("outfile") != nil {
		o.outfile, _ = cmd.Flags().GetString("outfile")
		o.diff, _ = cmd.Flags().GetBool("diff")
		o.testOnly, _ = cmd.Flags().GetBool("only-test-for-changes")
	}
	return o
}

func (o output) validate(inputs int) error {
	set := 0
	for _, b := range []bool{o.outfile != "", o.inplace, o.outdir != ""} {
		if b {
			set++
		}
	}
	if set > 1 {
		return errors.New("--outfile, --inplace and --outdir are mutually exclusive")
	}
	if o.testOnly && (set > 0 || o.diff) {
		return errors.New("--only-test-for-changes writes nothing and cannot be combined with output flags")
	}
	if o.outfile != "" && inputs != 1 {
		return errors.New("--outfile needs exactly one input file")
	}
	return nil
}

// runStrip strips the files named by args.
func (a *app) runStrip(cmd *cobra.Command, args []string) error {
	out := readOutput(cmd)
	out.reportFmt = a.settings.Report

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	runner, files, err := a.prepare(ctx, args, out)
	if err != nil {
		return err
	}
	if err := out.validate(len(files)); err != nil {
		return err
	}
	if len(files) > 1 && out == (output{}) {
		return errors.New("several inputs need --inplace, --outdir, --diff or --report")
	}

	results, err := runner.Run(ctx, files)
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()
	failed := printFailures(stderr, results)

	switch {
	case out.testOnly:
		if failed {
			return errReported
		}
		if anyChanged(results) {
			fmt.Fprintln(stdout, "True")
			return nil
		}
		fmt.Fprintln(stdout, "False")
		return errNoChanges
	case out.diff:
		for _, fr := range results {
			if fr.Err == nil && fr.Result.Changed {
				fmt.Fprint(stdout, report.Diff(fr.Path, fr.Source.Text, fr.Result.Output))
			}
		}
	case out.outfile != "":
		if fr := results[0]; fr.Err == nil {
			if err := source.WriteFile(out.outfile, fr.Output); err != nil {
				return err
			}
		}
	case out.inplace || out.outdir != "" || out.reportFmt != "":
	default:
		for _, fr := range results {
			if fr.Err == nil {
				stdout.Write(fr.Output)
			}
		}
	}

	if out.reportFmt != "" {
		if err := report.Write(stdout, out.reportFmt, batch.Summarize(results)); err != nil {
			return err
		}
	}
	if failed {
		return errReported
	}
	return nil
}

// prepare builds the runner for out and discovers the input files.
func (a *app) prepare(ctx context.Context, args []string, out output) (*batch.Runner, []string, error) {
	s := a.settings
	opts := s.StripOptions()
	if out.testOnly {
		opts.Mode = stripper.ModeDetectOnly
	}
	o, err := oracle.New(s.OracleConfig())
	if err != nil {
		return nil, nil, err
	}
	opts.Oracle = o
	opts.Logger = a.logger

	cfg := batch.Config{
		Strip:  opts,
		Jobs:   s.Jobs,
		Root:   ".",
		Logger: a.logger,
	}
	switch {
	case out.inplace:
		cfg.Target = batch.TargetInPlace
	case out.outdir != "":
		cfg.Target = batch.TargetDir
		cfg.OutDir = out.outdir
	}

	var tracked []string
	if s.Git || cfg.Target == batch.TargetInPlace {
		repo, err := gitpkg.Open(gitpkg.Config{WorkDir: repoDir(args[0]), AllowDirty: s.AllowDirty})
		switch {
		case err == nil:
			if cfg.Target == batch.TargetInPlace {
				cfg.Repo = repo
			}
			if s.Git {
				if tracked, err = repo.TrackedFiles(); err != nil {
					return nil, nil, err
				}
			}
		case s.Git:
			return nil, nil, fmt.Errorf("--git: %w", err)
		default:
			a.logger.Debug("not in a git repository, skipping dirty check")
		}
	}

	files, err := batch.Discover(args, tracked)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, errors.New("no Python files found")
	}
	a.logger.Info("discovered files", "count", len(files))
	return batch.NewRunner(cfg), files, ctx.Err()
}

// repoDir returns the directory whose repository governs path.
func repoDir(path string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return path
	}
	return filepath.Dir(path)
}

// printFailures writes each failed file's error with a source excerpt and
// reports whether there were any.
func printFailures(w io.Writer, results []batch.FileResult) bool {
	failed := false
	for _, fr := range results {
		if fr.Err == nil {
			continue
		}
		failed = true
		text := ""
		if fr.Source != nil {
			text = fr.Source.Text
		}
		fmt.Fprint(w, report.FormatError(fr.Err, text))
	}
	return failed
}

func anyChanged(results []batch.FileResult) bool {
	for _, fr := range results {
		if fr.Err == nil && fr.Result.Changed {
			return true
		}
	}
	return false
}
