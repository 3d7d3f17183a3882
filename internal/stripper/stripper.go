// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package stripper runs the annotation-removal pipeline over one source:
// locate spans, rewrite them, render the tokens, and validate the result.
package stripper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/petar-djukic/go-striphints/internal/locate"
	"github.com/petar-djukic/go-striphints/internal/oracle"
	"github.com/petar-djukic/go-striphints/internal/render"
	"github.com/petar-djukic/go-striphints/internal/rewrite"
	"github.com/petar-djukic/go-striphints/internal/tokenlist"
	"github.com/petar-djukic/go-striphints/pkg/types"
)

// BlankMode says what removed text is replaced with.
type BlankMode string

const (
	BlankSpaces BlankMode = "spaces"
	BlankEmpty  BlankMode = "empty"
)

// Scope says which annotations are removed.
type Scope string

const (
	ScopeAll                    Scope = "all_annotations"
	ScopeAssignmentsAndDeclOnly Scope = "assignments_and_declarations_only"
)

// Mode says whether output is produced or only change detection is done.
type Mode string

const (
	ModeRewrite    Mode = "rewrite"
	ModeDetectOnly Mode = "detect_only"
)

// Options configures one Strip call.
type Options struct {
	BlankMode             BlankMode
	ValidateOutput        bool
	RelocateColon         bool
	RelocateAssignment    bool
	StripInternalNewlines bool
	Scope                 Scope
	Mode                  Mode
	CommentDeclarations   bool
	Directives            bool

	// Oracle validates the output when ValidateOutput is set. Nil selects
	// the tree-sitter oracle.
	Oracle oracle.Oracle

	// Filename is attached to errors and passed to the oracle.
	Filename string

	// Logger receives per-span decisions at debug level. Nil discards.
	Logger *slog.Logger
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		BlankMode:          BlankSpaces,
		ValidateOutput:     true,
		RelocateColon:      true,
		RelocateAssignment: true,
		Scope:              ScopeAll,
		Mode:               ModeRewrite,
		Directives:         true,
	}
}

// Result is the outcome of a Strip call.
type Result struct {
	// Output is the rewritten source. In detect-only mode it is the input.
	Output string

	// Changed reports whether any annotation was (or would be) removed.
	Changed bool

	Spans   []types.Span
	Starts  []types.Pos  // start position of each span
	Plans   []types.Plan // parallel to Spans; empty in detect-only mode
	Skipped []types.Skip
}

// StripString tokenizes src and strips it.
func StripString(ctx context.Context, src string, opts Options) (*Result, error) {
	l, err := tokenlist.Parse(src)
	if err != nil {
		return nil, types.WithFile(err, opts.Filename)
	}
	return StripContext(ctx, l, opts)
}

// Strip removes annotations from l in place and returns the result.
func Strip(l *tokenlist.List, opts Options) (*Result, error) {
	return StripContext(context.Background(), l, opts)
}

// StripContext is Strip with a context for the validation step.
func StripContext(ctx context.Context, l *tokenlist.List, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	spans, skipped := locate.Locate(l, locate.Options{
		SkipDefs:   opts.Scope == ScopeAssignmentsAndDeclOnly,
		Directives: opts.Directives,
	})
	logger.Debug("located annotations",
		"file", opts.Filename, "spans", len(spans), "skipped", len(skipped))
	for _, s := range skipped {
		logger.Debug("left construct unchanged", "file", opts.Filename, "pos", s.Pos.String(), "reason", s.Reason)
	}

	res := &Result{Spans: spans, Skipped: skipped}
	for _, sp := range spans {
		res.Starts = append(res.Starts, l.At(sp.Start).Start)
	}
	if opts.Mode == ModeDetectOnly {
		res.Output = render.Render(l)
		res.Changed = len(spans) > 0
		return res, nil
	}

	before := render.Render(l)
	rw := rewrite.New(l, rewrite.Options{
		Empty:                 opts.BlankMode == BlankEmpty,
		RelocateColon:         opts.RelocateColon,
		RelocateAssignment:    opts.RelocateAssignment,
		StripInternalNewlines: opts.StripInternalNewlines,
		CommentDeclarations:   opts.CommentDeclarations,
	}, logger)
	for _, sp := range spans {
		plan, err := rw.Apply(sp)
		if err != nil {
			return nil, types.WithFile(err, opts.Filename)
		}
		res.Plans = append(res.Plans, plan)
	}

	res.Output = render.Render(l)
	res.Changed = res.Output != before

	if opts.ValidateOutput && res.Changed {
		o := opts.Oracle
		if o == nil {
			o = oracle.TreeSitter{}
		}
		if err := o.Validate(ctx, opts.Filename, res.Output); err != nil {
			return nil, fmt.Errorf("validating output: %w", types.WithFile(err, opts.Filename))
		}
	}
	return res, nil
}
