// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package nesting computes bracket depth for a token sequence.
//
// Openers and closers both carry the depth inside the brackets they delimit;
// the depth drops on the token that follows a closer. In "f(a)" the name f is
// at depth 0 and "(", "a", ")" are at depth 1.
package nesting

import (
	"github.com/petar-djukic/go-striphints/pkg/types"
)

// IsOpener reports whether tok opens a bracket.
func IsOpener(tok types.Token) bool {
	switch bracket(tok) {
	case '(', '[', '{':
		return true
	}
	return false
}

// IsCloser reports whether tok closes a bracket.
func IsCloser(tok types.Token) bool {
	switch bracket(tok) {
	case ')', ']', '}':
		return true
	}
	return false
}

// bracket returns the first byte of an operator token, or 0. Rewrites may
// append text to a bracket token ("):" or "]\n"); it stays a bracket.
func bracket(tok types.Token) byte {
	if tok.Kind != types.KindOp || tok.Text == "" {
		return 0
	}
	return tok.Text[0]
}

// Track returns the depth of every token in toks. Brackets are matched by
// count only. A closer with no open bracket, or a bracket still open at the
// end of toks, fails with types.ErrUnbalancedNesting at the offending token.
func Track(toks []types.Token) ([]int, error) {
	depths := make([]int, len(toks))
	var open []int
	for i, tok := range toks {
		switch {
		case IsOpener(tok):
			open = append(open, i)
			depths[i] = len(open)
		case IsCloser(tok):
			if len(open) == 0 {
				return nil, types.Errorf(types.ErrUnbalancedNesting, tok.Start,
					"unmatched %q", tok.Text)
			}
			depths[i] = len(open)
			open = open[:len(open)-1]
		default:
			depths[i] = len(open)
		}
	}
	if len(open) > 0 {
		tok := toks[open[len(open)-1]]
		return nil, types.Errorf(types.ErrUnbalancedNesting, tok.Start,
			"%q was never closed", tok.Text)
	}
	return depths, nil
}
