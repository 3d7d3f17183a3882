// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tokenlist holds a token sequence in one arena and hands out
// index-range views over it. All indices taken and returned by this package
// are absolute positions in the arena, so a span located through one view
// stays valid in every other view of the same arena.
package tokenlist

import (
	"sort"
	"strings"

	"github.com/petar-djukic/go-striphints/internal/nesting"
	"github.com/petar-djukic/go-striphints/internal/pytoken"
	"github.com/petar-djukic/go-striphints/pkg/types"
)

type arena struct {
	src    string
	toks   []types.Token
	depth  []int
	byKind map[types.Kind][]int
}

func newArena(src string, toks []types.Token, depth []int) *arena {
	a := &arena{src: src, toks: toks, depth: depth}
	a.index()
	return a
}

func (a *arena) index() {
	a.byKind = make(map[types.Kind][]int)
	for i, tok := range a.toks {
		a.byKind[tok.Kind] = append(a.byKind[tok.Kind], i)
	}
}

// List is a view of the tokens in [lo, hi) of an arena.
type List struct {
	a  *arena
	lo int
	hi int
}

// New builds a list over toks. src is the text the tokens were read from;
// it may be empty for synthesized token sequences. Depths are computed
// immediately, so unbalanced brackets fail here.
func New(src string, toks []types.Token) (*List, error) {
	depth, err := nesting.Track(toks)
	if err != nil {
		return nil, err
	}
	return &List{a: newArena(src, toks, depth), lo: 0, hi: len(toks)}, nil
}

// Parse tokenizes src and builds a list over the result.
func Parse(src string) (*List, error) {
	toks, err := pytoken.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return New(src, toks)
}

// Lo returns the first index of the view.
func (l *List) Lo() int { return l.lo }

// Hi returns the index one past the end of the view.
func (l *List) Hi() int { return l.hi }

// Len returns the number of tokens in the view.
func (l *List) Len() int { return l.hi - l.lo }

// Source returns the text the arena was built from.
func (l *List) Source() string { return l.a.src }

// At returns the token at absolute index i.
func (l *List) At(i int) types.Token { return l.a.toks[i] }

// Depth returns the bracket depth of the token at absolute index i.
func (l *List) Depth(i int) int { return l.a.depth[i] }

// Tokens returns the tokens of the view. The slice aliases the arena and
// must not be modified.
func (l *List) Tokens() []types.Token { return l.a.toks[l.lo:l.hi] }

// View returns the sub-view [lo, hi).
func (l *List) View(lo, hi int) (*List, error) {
	if lo < l.lo || hi > l.hi || lo > hi {
		return nil, l.outOfRange(lo, "view [%d, %d) outside [%d, %d)", lo, hi, l.lo, l.hi)
	}
	return &List{a: l.a, lo: lo, hi: hi}, nil
}

// Positions returns the absolute indices of tokens of the given kind inside
// the view, in order.
func (l *List) Positions(kind types.Kind) []int {
	all := l.a.byKind[kind]
	from := sort.SearchInts(all, l.lo)
	to := sort.SearchInts(all, l.hi)
	return all[from:to]
}

// Contains reports whether any token of the given kind lies in [lo, hi).
func (l *List) Contains(kind types.Kind, lo, hi int) bool {
	all := l.a.byKind[kind]
	i := sort.SearchInts(all, lo)
	return i < len(all) && all[i] < hi
}

// Find returns the first index at or after from inside the view whose token
// satisfies pred, or -1.
func (l *List) Find(from int, pred func(types.Token) bool) int {
	for i := max(from, l.lo); i < l.hi; i++ {
		if pred(l.a.toks[i]) {
			return i
		}
	}
	return -1
}

// SliceWhile returns the maximal run starting at start whose tokens all
// satisfy pred. The run may be empty.
func (l *List) SliceWhile(start int, pred func(types.Token) bool) (*List, error) {
	if start < l.lo || start > l.hi {
		return nil, l.outOfRange(start, "index %d outside [%d, %d]", start, l.lo, l.hi)
	}
	end := start
	for end < l.hi && pred(l.a.toks[end]) {
		end++
	}
	return &List{a: l.a, lo: start, hi: end}, nil
}

// ReplaceSpan replaces the tokens in [lo, hi) with toks. It is the only way
// to change a list. Replacing with the same number of tokens keeps every
// index stable; otherwise views other than l become stale.
func (l *List) ReplaceSpan(lo, hi int, toks []types.Token) error {
	if lo < l.lo || hi > l.hi || lo > hi {
		return l.outOfRange(lo, "span [%d, %d) outside [%d, %d)", lo, hi, l.lo, l.hi)
	}
	a := l.a
	if len(toks) == hi-lo {
		kindsChanged := false
		for k, tok := range toks {
			if a.toks[lo+k].Kind != tok.Kind || bracketChanged(a.toks[lo+k], tok) {
				kindsChanged = true
			}
		}
		if !kindsChanged {
			copy(a.toks[lo:hi], toks)
			return nil
		}
	}

	spliced := make([]types.Token, 0, len(a.toks)-(hi-lo)+len(toks))
	spliced = append(spliced, a.toks[:lo]...)
	spliced = append(spliced, toks...)
	spliced = append(spliced, a.toks[hi:]...)
	depth, err := nesting.Track(spliced)
	if err != nil {
		return err
	}
	a.toks, a.depth = spliced, depth
	a.index()
	l.hi += len(toks) - (hi - lo)
	return nil
}

func bracketChanged(old, repl types.Token) bool {
	return nesting.IsOpener(old) != nesting.IsOpener(repl) ||
		nesting.IsCloser(old) != nesting.IsCloser(repl)
}

func (l *List) outOfRange(i int, format string, args ...any) error {
	var pos types.Pos
	if n := len(l.a.toks); n > 0 {
		pos = l.a.toks[min(max(i, 0), n-1)].Start
	}
	return types.Errorf(types.ErrOutOfRange, pos, format, args...)
}

// Gap returns the source text between the token before i and token i:
// whitespace, backslash continuations, and indentation. It is empty when
// the arena has no source text.
func (l *List) Gap(i int) string {
	a := l.a
	if a.src == "" || i < 0 || i >= len(a.toks) {
		return ""
	}
	from := 0
	if i > 0 {
		from = a.toks[i-1].End.Offset
	}
	to := a.toks[i].Start.Offset
	if from < 0 || to > len(a.src) || from >= to {
		return ""
	}
	return a.src[from:to]
}

// SourceLine returns physical line n (1-based) of the source text without
// its terminator, or "" when unavailable.
func (l *List) SourceLine(n int) string {
	if l.a.src == "" || n < 1 {
		return ""
	}
	lines := strings.SplitAfter(l.a.src, "\n")
	if n > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[n-1], "\r\n")
}
