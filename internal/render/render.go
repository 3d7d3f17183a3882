// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package render turns a token list back into source text.
package render

import (
	"strings"

	"github.com/petar-djukic/go-striphints/internal/tokenlist"
	"github.com/petar-djukic/go-striphints/pkg/types"
)

// Render reconstitutes the text of l. When the list carries its source, the
// text between tokens is copied verbatim, so whitespace, tabs and backslash
// continuations survive. Otherwise positions are used: column gaps become
// spaces and line gaps become backslash continuations.
func Render(l *tokenlist.List) string {
	if l.Source() == "" {
		return untokenize(l)
	}
	var b strings.Builder
	b.Grow(len(l.Source()))
	for i := l.Lo(); i < l.Hi(); i++ {
		b.WriteString(l.Gap(i))
		b.WriteString(l.At(i).Text)
	}
	return b.String()
}

// untokenize lays tokens out by their original positions.
func untokenize(l *tokenlist.List) string {
	var b strings.Builder
	line, col := 1, 0
	var prev types.Token
	for i := l.Lo(); i < l.Hi(); i++ {
		tok := l.At(i)
		if tok.Text == "" && (tok.Kind == types.KindDedent || tok.Kind == types.KindEndMarker) {
			continue
		}
		start := tok.Start
		switch {
		case start.Line > line:
			b.WriteString(strings.Repeat(" \\\n", start.Line-line))
			line, col = start.Line, 0
			fallthrough
		case start.Line == line && start.Col > col:
			b.WriteString(strings.Repeat(" ", start.Col-col))
		case start.Line < line || (start.Line == line && start.Col < col):
			if wordLike(prev) && wordLike(tok) {
				b.WriteByte(' ')
			}
		}
		b.WriteString(tok.Text)
		prev = tok

		line, col = tok.End.Line, tok.End.Col
		if (tok.Kind == types.KindNewline || tok.Kind == types.KindNL) && tok.Text != "" {
			line, col = tok.End.Line+1, 0
		}
	}
	return b.String()
}

func wordLike(tok types.Token) bool {
	switch tok.Kind {
	case types.KindName, types.KindKeyword, types.KindNumber:
		return true
	}
	return false
}
