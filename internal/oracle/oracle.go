// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package oracle checks that rewritten text is still valid Python.
//
// Two oracles are available: an in-process tree-sitter parse and a
// subprocess that runs the interpreter's own ast.parse. A third, "none",
// accepts everything.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Oracle kinds.
const (
	KindTreeSitter = "treesitter"
	KindPython     = "python"
	KindNone       = "none"
)

const (
	defaultPython  = "python3"
	defaultTimeout = 30 * time.Second
)

// ErrUnknownOracle is returned by New for an unrecognized kind.
var ErrUnknownOracle = errors.New("unknown oracle")

// Oracle validates Python source text. A failure is a *types.Error of kind
// types.ErrSyntax.
type Oracle interface {
	Validate(ctx context.Context, filename, text string) error
}

// Config selects and configures an oracle.
type Config struct {
	Kind    string        // treesitter (default), python, or none
	Python  string        // Interpreter for the python oracle (default python3)
	Timeout time.Duration // Subprocess timeout (default 30s)
}

func (c *Config) applyDefaults() {
	if c.Kind == "" {
		c.Kind = KindTreeSitter
	}
	if c.Python == "" {
		c.Python = defaultPython
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// New returns the oracle cfg names.
func New(cfg Config) (Oracle, error) {
	cfg.applyDefaults()
	switch cfg.Kind {
	case KindTreeSitter:
		return TreeSitter{}, nil
	case KindPython:
		return &Python{Interpreter: cfg.Python, Timeout: cfg.Timeout}, nil
	case KindNone:
		return None{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownOracle, cfg.Kind)
}

// None accepts any text.
type None struct{}

// Validate always returns nil.
func (None) Validate(context.Context, string, string) error { return nil }
