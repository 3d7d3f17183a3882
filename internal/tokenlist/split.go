// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package tokenlist

import (
	"github.com/petar-djukic/go-striphints/internal/nesting"
	"github.com/petar-djukic/go-striphints/pkg/types"
)

// Placement says where a separator goes when a list is split.
type Placement int

const (
	SepDrop     Placement = iota // separators are not part of any piece
	SepRight                     // a separator starts the piece after it
	SepLeft                      // a separator ends the piece before it
	SepIsolated                  // every separator is a piece of its own
)

// SplitOptions controls Split.
type SplitOptions struct {
	// Max is the maximum number of splits; 0 means no limit.
	Max int

	Placement Placement

	// DropEmpty removes pieces with no tokens.
	DropEmpty bool

	// FixedDepth splits at Depth instead of the view's base depth.
	FixedDepth bool
	Depth      int
}

// BaseDepth returns the depth surrounding the first token of the view: the
// token's own depth, or one less when it is an opener.
func (l *List) BaseDepth() int {
	if l.Len() == 0 {
		return 0
	}
	d := l.a.depth[l.lo]
	if nesting.IsOpener(l.a.toks[l.lo]) {
		d--
	}
	return d
}

// Split partitions the view at tokens satisfying sep that sit at the split
// depth. Separators nested deeper are ignored. It returns the pieces and
// the absolute indices of the separators that caused a split. A token whose
// depth falls below the base depth fails with types.ErrUnbalancedNesting.
func (l *List) Split(sep func(types.Token) bool, opts SplitOptions) ([]*List, []int, error) {
	base := l.BaseDepth()
	at := base
	if opts.FixedDepth {
		at = opts.Depth
	}

	var pieces []*List
	var seps []int
	add := func(lo, hi int) {
		if opts.DropEmpty && lo == hi {
			return
		}
		pieces = append(pieces, &List{a: l.a, lo: lo, hi: hi})
	}

	start := l.lo
	for i := l.lo; i < l.hi; i++ {
		tok := l.a.toks[i]
		d := l.a.depth[i]
		if d < base || (nesting.IsCloser(tok) && d <= base) {
			return nil, nil, types.Errorf(types.ErrUnbalancedNesting, tok.Start,
				"%q closes a bracket opened outside the range", tok.Text)
		}
		if opts.Max > 0 && len(seps) == opts.Max {
			continue
		}
		if d != at || nesting.IsOpener(tok) || nesting.IsCloser(tok) || !sep(tok) {
			continue
		}
		seps = append(seps, i)
		switch opts.Placement {
		case SepDrop:
			add(start, i)
			start = i + 1
		case SepRight:
			add(start, i)
			start = i
		case SepLeft:
			add(start, i+1)
			start = i + 1
		case SepIsolated:
			add(start, i)
			add(i, i+1)
			start = i + 1
		}
	}
	add(start, l.hi)
	return pieces, seps, nil
}

// Join concatenates views. When the parts are adjacent views of one arena
// the result is a view of that arena; otherwise the tokens are copied into
// a new arena with no source text.
func Join(parts ...*List) (*List, error) {
	if len(parts) == 0 {
		return New("", nil)
	}
	contiguous := true
	for k := 1; k < len(parts); k++ {
		if parts[k].a != parts[0].a || parts[k].lo != parts[k-1].hi {
			contiguous = false
			break
		}
	}
	if contiguous {
		return &List{a: parts[0].a, lo: parts[0].lo, hi: parts[len(parts)-1].hi}, nil
	}

	var toks []types.Token
	for _, p := range parts {
		toks = append(toks, p.Tokens()...)
	}
	return New("", toks)
}
