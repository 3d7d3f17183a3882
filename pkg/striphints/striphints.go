// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package striphints removes type annotations from Python source while
// keeping every remaining token at its original line and column.
//
//	s, err := striphints.New(striphints.Config{})
//	res, err := s.StripString(ctx, "def f(x: int) -> str:\n    pass\n")
//	// res.Output == "def f(x     )       :\n    pass\n"
package striphints

import (
	"errors"
	"log/slog"

	"github.com/petar-djukic/go-striphints/pkg/types"
)

// Errors returned by the Stripper. Failures carrying a location are
// *types.Error values that unwrap to one of the engine sentinels.
var (
	ErrInvalidConfig = errors.New("invalid config")

	ErrLex                  = types.ErrLex
	ErrUnbalancedNesting    = types.ErrUnbalancedNesting
	ErrUnsupportedConstruct = types.ErrUnsupportedConstruct
	ErrLineCountViolation   = types.ErrLineCountViolation
	ErrSyntax               = types.ErrSyntax
)

// Config configures a Stripper. The zero value strips every annotation,
// blanks it with spaces, relocates colons and assignments as needed, and
// validates the output with tree-sitter.
type Config struct {
	BlankMode             string // spaces (default) or empty
	Scope                 string // all_annotations (default) or assignments_and_declarations_only
	Mode                  string // rewrite (default) or detect_only
	SkipValidation        bool   // Do not parse the output
	NoColonMove           bool   // Fail instead of moving a def's colon
	NoEqualMove           bool   // Fail instead of moving line breaks out of annotations
	StripInternalNewlines bool   // Let multi-line annotations shrink the file
	CommentDeclarations   bool   // Comment out single-line bare declarations
	NoDirectives          bool   // Ignore "# strip-hints: off" comments
	Oracle                string // treesitter (default), python, or none
	Python                string // Interpreter for the python oracle (default python3)
	Logger                *slog.Logger
}

// Result holds the outcome of a strip.
type Result struct {
	Output  string       // Stripped text; the input in detect_only mode
	Encoded []byte       // Output in the input's encoding (StripBytes, StripFile)
	Changed bool         // Annotations were, or would be, removed
	Spans   []types.Span // Located annotations
	Starts  []types.Pos  // Start position of each span
	Plans   []types.Plan // Rewrite applied to each span
	Skipped []types.Skip // Constructs left unchanged
}
