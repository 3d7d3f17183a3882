// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package striphints

import (
	"context"
	"fmt"

	"github.com/petar-djukic/go-striphints/internal/oracle"
	"github.com/petar-djukic/go-striphints/internal/source"
	"github.com/petar-djukic/go-striphints/internal/stripper"
)

// Stripper strips annotations with a fixed configuration. It is safe for
// concurrent use.
type Stripper struct {
	opts stripper.Options
}

// New validates cfg and returns a ready Stripper.
func New(cfg Config) (*Stripper, error) {
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	o, err := oracle.New(oracle.Config{Kind: cfg.Oracle, Python: cfg.Python})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &Stripper{opts: stripper.Options{
		BlankMode:             stripper.BlankMode(cfg.BlankMode),
		ValidateOutput:        !cfg.SkipValidation && cfg.Oracle != oracle.KindNone,
		RelocateColon:         !cfg.NoColonMove,
		RelocateAssignment:    !cfg.NoEqualMove,
		StripInternalNewlines: cfg.StripInternalNewlines,
		Scope:                 stripper.Scope(cfg.Scope),
		Mode:                  stripper.Mode(cfg.Mode),
		CommentDeclarations:   cfg.CommentDeclarations,
		Directives:            !cfg.NoDirectives,
		Oracle:                o,
		Logger:                cfg.Logger,
	}}, nil
}

// Strip removes annotations from src with the default configuration.
func Strip(src string) (string, error) {
	s, err := New(Config{})
	if err != nil {
		return "", err
	}
	res, err := s.StripString(context.Background(), src)
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// StripString strips decoded source text.
func (s *Stripper) StripString(ctx context.Context, src string) (*Result, error) {
	return s.strip(ctx, "", src)
}

// StripBytes decodes src (byte-order mark and coding declaration
// honored), strips it, and re-encodes the output in the same encoding.
func (s *Stripper) StripBytes(ctx context.Context, src []byte) (*Result, error) {
	f, err := source.Decode(src)
	if err != nil {
		return nil, err
	}
	return s.stripFile(ctx, "", f)
}

// StripFile reads and strips the file at path. The file is not modified.
func (s *Stripper) StripFile(ctx context.Context, path string) (*Result, error) {
	f, err := source.Read(path)
	if err != nil {
		return nil, err
	}
	return s.stripFile(ctx, path, f)
}

func (s *Stripper) stripFile(ctx context.Context, name string, f *source.File) (*Result, error) {
	res, err := s.strip(ctx, name, f.Text)
	if err != nil {
		return nil, err
	}
	res.Encoded, err = f.Encode(res.Output)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Stripper) strip(ctx context.Context, name, src string) (*Result, error) {
	opts := s.opts
	opts.Filename = name
	ir, err := stripper.StripString(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	return &Result{
		Output:  ir.Output,
		Changed: ir.Changed,
		Spans:   ir.Spans,
		Starts:  ir.Starts,
		Plans:   ir.Plans,
		Skipped: ir.Skipped,
	}, nil
}

func applyDefaults(cfg *Config) {
	if cfg.BlankMode == "" {
		cfg.BlankMode = string(stripper.BlankSpaces)
	}
	if cfg.Scope == "" {
		cfg.Scope = string(stripper.ScopeAll)
	}
	if cfg.Mode == "" {
		cfg.Mode = string(stripper.ModeRewrite)
	}
	if cfg.Oracle == "" {
		cfg.Oracle = oracle.KindTreeSitter
	}
}

// validateConfig checks the enumerated fields.
func validateConfig(cfg Config) error {
	switch stripper.BlankMode(cfg.BlankMode) {
	case stripper.BlankSpaces, stripper.BlankEmpty:
	default:
		return fmt.Errorf("BlankMode %q is not spaces or empty", cfg.BlankMode)
	}
	switch stripper.Scope(cfg.Scope) {
	case stripper.ScopeAll, stripper.ScopeAssignmentsAndDeclOnly:
	default:
		return fmt.Errorf("Scope %q is not recognized", cfg.Scope)
	}
	switch stripper.Mode(cfg.Mode) {
	case stripper.ModeRewrite, stripper.ModeDetectOnly:
	default:
		return fmt.Errorf("Mode %q is not rewrite or detect_only", cfg.Mode)
	}
	return nil
}
