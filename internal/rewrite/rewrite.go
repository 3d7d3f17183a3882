// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package rewrite removes annotation spans from a token list.
//
// Each span gets one plan. Single-line material is blanked in place so every
// remaining token keeps its line and column. Material spanning several lines
// is either turned into a comment or blanked with its line breaks moved to a
// place where they cannot split a statement. Every rewrite must leave the
// number of line breaks in its region unchanged.
package rewrite

import (
	"log/slog"
	"strings"

	"github.com/petar-djukic/go-striphints/internal/tokenlist"
	"github.com/petar-djukic/go-striphints/pkg/types"
)

// Options controls how spans are rewritten.
type Options struct {
	// Empty replaces removed text with nothing instead of spaces.
	Empty bool

	// RelocateColon allows moving a def header colon next to the closing
	// parenthesis when the return annotation spans lines.
	RelocateColon bool

	// RelocateAssignment allows moving the line breaks of a multi-line
	// annotation to the end of its statement.
	RelocateAssignment bool

	// StripInternalNewlines drops line breaks inside parameter and return
	// annotations. Line numbers after such annotations shift.
	StripInternalNewlines bool

	// CommentDeclarations turns single-line declarations such as "x: int"
	// into comments instead of blanking their annotation.
	CommentDeclarations bool
}

// Rewriter applies plans to spans of one list.
type Rewriter struct {
	l      *tokenlist.List
	opts   Options
	logger *slog.Logger
}

// New returns a Rewriter over l. A nil logger discards output.
func New(l *tokenlist.List, opts Options, logger *slog.Logger) *Rewriter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Rewriter{l: l, opts: opts, logger: logger}
}

// Plan picks the rewrite for sp.
func (r *Rewriter) Plan(sp types.Span) types.Plan {
	multi := r.hasBreaks(sp.Start, sp.End)
	switch sp.Kind {
	case types.SpanReturn:
		if !multi {
			return types.PlanBlank
		}
		if r.opts.StripInternalNewlines && !r.l.Contains(types.KindComment, sp.Start, sp.End) {
			return types.PlanBlank
		}
		return types.PlanColonRelocation
	case types.SpanAssignment:
		if !multi {
			return types.PlanBlank
		}
		return types.PlanAssignmentRelocation
	case types.SpanDeclaration:
		if (multi || r.opts.CommentDeclarations) && r.commentable(sp) {
			return types.PlanComment
		}
		if multi {
			return types.PlanAssignmentRelocation
		}
	}
	return types.PlanBlank
}

// Apply rewrites sp and checks its line budget. It returns the plan used.
func (r *Rewriter) Apply(sp types.Span) (types.Plan, error) {
	plan := r.Plan(sp)
	lo, hi := r.budget(sp)
	before := r.lineBreaks(lo, hi)

	var err error
	switch plan {
	case types.PlanBlank:
		err = r.blankSpan(sp)
	case types.PlanComment:
		err = r.commentOut(sp)
	case types.PlanColonRelocation:
		if !r.opts.RelocateColon {
			return plan, r.violation(sp, "return annotation spans several lines and colon relocation is disabled")
		}
		err = r.moveColon(sp)
	case types.PlanAssignmentRelocation:
		if !r.opts.RelocateAssignment {
			return plan, r.violation(sp, "annotation spans several lines and assignment relocation is disabled")
		}
		err = r.moveBreaks(sp)
	}
	if err != nil {
		return plan, err
	}

	if !r.stripsBreaks(sp) {
		if after := r.lineBreaks(lo, hi); after != before {
			return plan, r.violation(sp, "rewrite changed the line count from %d to %d", before, after)
		}
	}
	r.logger.Debug("rewrote annotation",
		"kind", sp.Kind.String(), "plan", plan.String(), "pos", r.l.At(sp.Start).Start.String())
	return plan, nil
}

// budget returns the token range whose line count a rewrite of sp keeps.
func (r *Rewriter) budget(sp types.Span) (int, int) {
	switch sp.Kind {
	case types.SpanAssignment, types.SpanDeclaration:
		return sp.Stmt, r.lineEnd(sp.StmtEnd)
	}
	return sp.Stmt, sp.StmtEnd
}

func (r *Rewriter) stripsBreaks(sp types.Span) bool {
	return r.opts.StripInternalNewlines && (sp.Kind == types.SpanParam || sp.Kind == types.SpanReturn)
}

func (r *Rewriter) blankSpan(sp types.Span) error {
	strip := r.stripsBreaks(sp)
	return r.rewriteRange(sp.Start, sp.End, func(_ int, tok types.Token) string {
		switch tok.Kind {
		case types.KindNL:
			if strip {
				return ""
			}
			return tok.Text
		case types.KindComment:
			if strip {
				return r.blank(tok.Text)
			}
			return tok.Text
		}
		if strip {
			flat, _ := r.flatten(tok.Text)
			return flat
		}
		return r.blank(tok.Text)
	})
}

// commentOut turns the whole statement into comment lines.
func (r *Rewriter) commentOut(sp types.Span) error {
	return r.rewriteRange(sp.Stmt, sp.StmtEnd, func(i int, tok types.Token) string {
		text := commentBreaks(tok.Text)
		if i == sp.Stmt {
			text = "#" + text
		}
		return text
	})
}

// moveColon appends the header colon to the closing parenthesis and blanks
// everything after it up to the old colon.
func (r *Rewriter) moveColon(sp types.Span) error {
	strip := r.opts.StripInternalNewlines
	return r.rewriteRange(sp.Anchor, sp.Terminator+1, func(i int, tok types.Token) string {
		switch {
		case i == sp.Anchor:
			return tok.Text + ":"
		case tok.Kind == types.KindNL && strip:
			return ""
		case tok.Kind == types.KindNL:
			return tok.Text
		case tok.Kind == types.KindComment && !strip:
			return tok.Text
		case strip:
			flat, _ := r.flatten(tok.Text)
			return flat
		}
		return r.blank(tok.Text)
	})
}

// moveBreaks blanks the span with its line breaks and comments removed and
// re-appends the removed breaks to the last token of the physical line.
func (r *Rewriter) moveBreaks(sp types.Span) error {
	var moved strings.Builder
	err := r.rewriteRange(sp.Start, sp.End, func(_ int, tok types.Token) string {
		switch tok.Kind {
		case types.KindNL:
			moved.WriteString(tok.Text)
			return ""
		case types.KindComment:
			return ""
		}
		flat, n := r.flatten(tok.Text)
		moved.WriteString(strings.Repeat("\n", n))
		return flat
	})
	if err != nil || moved.Len() == 0 {
		return err
	}
	last := r.lineEnd(sp.StmtEnd) - 1
	return r.rewriteRange(last, last+1, func(_ int, tok types.Token) string {
		return tok.Text + moved.String()
	})
}

// commentable reports whether the statement of sp sits alone on its
// physical lines with no backslash continuation.
func (r *Rewriter) commentable(sp types.Span) bool {
	if sp.Stmt > r.l.Lo() {
		switch r.l.At(sp.Stmt - 1).Kind {
		case types.KindNewline, types.KindNL, types.KindIndent, types.KindDedent:
		default:
			return false
		}
	}
	switch r.l.At(sp.StmtEnd).Kind {
	case types.KindNewline, types.KindEndMarker:
	default:
		return false
	}
	for i := sp.Stmt + 1; i <= sp.StmtEnd; i++ {
		if strings.Contains(r.l.Gap(i), "\\") {
			return false
		}
	}
	return true
}

// hasBreaks reports whether [lo, hi) holds an NL token or a string literal
// spanning lines.
func (r *Rewriter) hasBreaks(lo, hi int) bool {
	if r.l.Contains(types.KindNL, lo, hi) {
		return true
	}
	for _, i := range r.l.Positions(types.KindString) {
		if i >= lo && i < hi && countBreaks(r.l.At(i).Text) > 0 {
			return true
		}
	}
	return false
}

// lineEnd returns the index of the first NEWLINE or ENDMARKER at or after i.
func (r *Rewriter) lineEnd(i int) int {
	for ; i < r.l.Hi(); i++ {
		switch r.l.At(i).Kind {
		case types.KindNewline, types.KindEndMarker:
			return i
		}
	}
	return r.l.Hi()
}

func (r *Rewriter) lineBreaks(lo, hi int) int {
	n := 0
	for i := lo; i < hi; i++ {
		n += countBreaks(r.l.At(i).Text)
	}
	return n
}

// rewriteRange replaces the text of every token in [lo, hi) with fn's
// result in a single ReplaceSpan call.
func (r *Rewriter) rewriteRange(lo, hi int, fn func(i int, tok types.Token) string) error {
	repl := make([]types.Token, 0, hi-lo)
	for i := lo; i < hi; i++ {
		tok := r.l.At(i)
		tok.Text = fn(i, tok)
		repl = append(repl, tok)
	}
	return r.l.ReplaceSpan(lo, hi, repl)
}

func (r *Rewriter) violation(sp types.Span, format string, args ...any) error {
	pos := r.l.At(sp.Start).Start
	err := types.Errorf(types.ErrLineCountViolation, pos, format, args...)
	err.Construct = r.l.SourceLine(pos.Line)
	return err
}

// blank replaces every character of text except line breaks.
func (r *Rewriter) blank(text string) string {
	var b strings.Builder
	for _, c := range text {
		switch {
		case c == '\n' || c == '\r':
			b.WriteRune(c)
		case !r.opts.Empty:
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// flatten blanks text and drops its line breaks, reporting how many there
// were.
func (r *Rewriter) flatten(text string) (string, int) {
	n := countBreaks(text)
	if n == 0 {
		return r.blank(text), 0
	}
	blanked := strings.NewReplacer("\r\n", "", "\r", "", "\n", "").Replace(r.blank(text))
	return blanked, n
}

// countBreaks counts line breaks, treating "\r\n" as one.
func countBreaks(s string) int {
	return strings.Count(s, "\n") + strings.Count(s, "\r") - strings.Count(s, "\r\n")
}

// commentBreaks puts a '#' after every line break in s.
func commentBreaks(s string) string {
	if countBreaks(s) == 0 {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		b.WriteByte(s[i])
		switch {
		case s[i] == '\r' && i+1 < len(s) && s[i+1] == '\n':
		case s[i] == '\r' || s[i] == '\n':
			b.WriteByte('#')
		}
	}
	return b.String()
}
