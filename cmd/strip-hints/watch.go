// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petar-djukic/go-striphints/internal/batch"
	"github.com/petar-djukic/go-striphints/internal/watch"
)

// newWatchCmd creates the "watch" command.
func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [flags] PATH...",
		Short: "Strip files again whenever they change",
		Long: "Watch strips the given files once, then keeps stripping Python files " +
			"below the given paths into --outdir as they are written.",
		Args: cobra.MinimumNArgs(1),
		RunE: a.runWatch,
	}
	cmd.Flags().Duration("debounce", 0, "Quiet period before changed files are processed (default 200ms)")
	return cmd
}

func (a *app) runWatch(cmd *cobra.Command, args []string) error {
	out := readOutput(cmd)
	if out.inplace || out.outdir == "" {
		return errors.New("watch writes to --outdir and does not support --inplace")
	}
	debounce, _ := cmd.Flags().GetDuration("debounce")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	outdir, err := filepath.Abs(out.outdir)
	if err != nil {
		return err
	}
	runner, files, err := a.prepare(ctx, args, out)
	if err != nil {
		return err
	}
	files = slices.DeleteFunc(files, func(p string) bool {
		abs, err := filepath.Abs(p)
		return err != nil || within(outdir, abs)
	})

	w, err := watch.New(watch.Config{
		Paths:    args,
		Debounce: debounce,
		Match:    func(path string) bool { return batch.IsPython(path) && !within(outdir, path) },
		SkipDir:  batch.SkipDir,
		Logger:   a.logger,
	})
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	results, err := runner.Run(ctx, files)
	if err != nil {
		return err
	}
	printFailures(stderr, results)

	a.logger.Info("watching for changes", "paths", args)
	return w.Run(ctx, func(ctx context.Context, paths []string) {
		results, err := runner.Run(ctx, paths)
		if err != nil {
			a.logger.Error("strip run failed", "error", err)
			return
		}
		printFailures(stderr, results)
	})
}

// within reports whether path lies in dir. Both are absolute.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
