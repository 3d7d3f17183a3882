// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package locate finds annotation spans in a token list.
//
// The Locator is a finite-state machine fed one token index at a time. It
// never builds a syntax tree: it relies on bracket depth, logical-line
// boundaries, and a handful of token shapes (def headers and assignment
// targets). Constructs that look like annotations but fall outside those
// shapes are reported as skipped and left alone.
package locate

import (
	"regexp"

	"github.com/petar-djukic/go-striphints/internal/nesting"
	"github.com/petar-djukic/go-striphints/internal/tokenlist"
	"github.com/petar-djukic/go-striphints/pkg/types"
)

// State is the externally visible state of the Locator.
type State int

const (
	Scanning State = iota
	InParamList
	InReturnArrow
	AfterColonCandidate
	Done
)

func (s State) String() string {
	switch s {
	case Scanning:
		return "scanning"
	case InParamList:
		return "in-param-list"
	case InReturnArrow:
		return "in-return-arrow"
	case AfterColonCandidate:
		return "after-colon-candidate"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Skip reasons.
const (
	ReasonUnsupported = "unsupported annotation target"
	ReasonDirective   = "disabled by strip-hints directive"
)

// Options controls which spans the Locator emits.
type Options struct {
	// SkipDefs leaves parameter and return annotations alone.
	SkipDefs bool

	// Directives honors "# strip-hints: off" and "# strip-hints: on"
	// comments on their own line.
	Directives bool
}

var directiveRe = regexp.MustCompile(`^#\s*strip-hints\s*:\s*(off|on)\s*$`)

type phase int

const (
	phaseNone        phase = iota
	phaseAwaitParen        // def seen, waiting for the parameter list
	phaseAfterParams       // parameter list closed, waiting for '->' or ':'
	phaseTarget            // reading an assignment target
)

type targetPart int

const (
	afterName targetPart = iota
	afterDot
	inSubscript
	afterSubscript
)

// Locator is the span-finding state machine. Feed it every index of the
// list in increasing order through Step.
type Locator struct {
	l     *tokenlist.List
	opts  Options
	state State
	phase phase

	// current logical line
	stmt        int
	lead        types.Token
	lineColon   int
	lineAssign  bool
	lineLambdas int
	colonLast   bool

	// def header
	def        int
	defDepth   int
	openDepth  int
	paramColon int
	lambdas    int
	closeParen int
	arrow      int

	// assignment target
	part  targetPart
	colon int
	eq    int

	suppressed bool
	skipped    []types.Skip
}

// New returns a Locator over l.
func New(l *tokenlist.List, opts Options) *Locator {
	m := &Locator{l: l, opts: opts}
	m.resetLine()
	return m
}

// Skipped returns the constructs left unchanged so far.
func (m *Locator) Skipped() []types.Skip {
	return m.skipped
}

// State returns the current state.
func (m *Locator) State() State {
	return m.state
}

// Locate runs a Locator over the whole list and returns the spans in
// source order together with the skipped constructs.
func Locate(l *tokenlist.List, opts Options) ([]types.Span, []types.Skip) {
	m := New(l, opts)
	var spans []types.Span
	for i := l.Lo(); i < l.Hi(); i++ {
		if _, sp := m.Step(i); sp != nil {
			spans = append(spans, *sp)
		}
	}
	return spans, m.Skipped()
}

func (m *Locator) resetLine() {
	m.stmt = -1
	m.lead = types.Token{}
	m.lineColon = -1
	m.lineAssign = false
	m.lineLambdas = 0
	m.colonLast = false
	m.phase = phaseNone
	m.colon, m.eq = -1, -1
}

// isBoundary reports whether tok ends a logical line.
func isBoundary(tok types.Token, depth int) bool {
	switch tok.Kind {
	case types.KindNewline, types.KindIndent, types.KindDedent, types.KindEndMarker:
		return true
	}
	return depth == 0 && tok.Is(";")
}

// isAssignOp reports whether tok is '=' or an augmented assignment.
func isAssignOp(tok types.Token) bool {
	if tok.Kind != types.KindOp || len(tok.Text) < 1 || tok.Text[len(tok.Text)-1] != '=' {
		return false
	}
	switch tok.Text {
	case "==", "<=", ">=", "!=":
		return false
	}
	return true
}

// Step consumes the token at index i and returns the new state and the
// span completed by this token, if any.
func (m *Locator) Step(i int) (State, *types.Span) {
	if m.state == Done {
		return Done, nil
	}
	tok := m.l.At(i)
	d := m.l.Depth(i)

	switch tok.Kind {
	case types.KindComment:
		m.directive(i, tok)
		return m.state, nil
	case types.KindNL:
		return m.state, nil
	}

	if isBoundary(tok, d) {
		sp := m.endLine(i)
		m.state = Scanning
		if tok.Kind == types.KindEndMarker {
			m.state = Done
		}
		return m.state, sp
	}

	if m.stmt < 0 {
		m.stmt = i
		m.lead = tok
		if tok.Kind == types.KindName && m.state == Scanning {
			m.phase = phaseTarget
			m.part = afterName
			return m.state, nil
		}
	} else {
		m.trackLine(i, tok, d)
	}

	switch m.state {
	case InParamList:
		return m.state, m.stepParams(i, tok, d)
	case InReturnArrow:
		if d == m.defDepth && tok.Is(":") {
			m.state = Scanning
			m.phase = phaseNone
			return m.state, m.emit(types.Span{
				Kind: types.SpanReturn, Start: m.arrow, End: i,
				Stmt: m.closeParen, StmtEnd: i + 1,
				Target: m.def, Anchor: m.closeParen, Terminator: i,
			})
		}
		return m.state, nil
	case AfterColonCandidate:
		m.colonLast = false
		if m.eq < 0 && d == 0 && tok.Is("=") {
			m.eq = i
		}
		return m.state, nil
	}

	switch m.phase {
	case phaseTarget:
		m.stepTarget(i, tok, d)
		return m.state, nil
	case phaseAwaitParen:
		if tok.Is("(") && d == m.defDepth+1 {
			m.state = InParamList
			m.openDepth = d
			m.paramColon = -1
			m.lambdas = 0
		}
		return m.state, nil
	case phaseAfterParams:
		switch {
		case d == m.defDepth && tok.Is("->"):
			m.state = InReturnArrow
			m.arrow = i
		case d == m.defDepth && tok.Is(":"):
			m.phase = phaseNone
		}
		return m.state, nil
	}

	if tok.IsKeyword("def") && !m.opts.SkipDefs {
		m.phase = phaseAwaitParen
		m.def = i
		m.defDepth = d
	}
	return m.state, nil
}

// trackLine records the first line-depth colon of a logical line for the
// unsupported-construct report.
func (m *Locator) trackLine(i int, tok types.Token, d int) {
	if m.lineColon >= 0 {
		m.colonLast = false
		return
	}
	if d != 0 {
		return
	}
	switch {
	case tok.IsKeyword("lambda"):
		m.lineLambdas++
	case tok.Is(":") && m.lineLambdas > 0:
		m.lineLambdas--
	case tok.Is(":") && !m.lineAssign:
		m.lineColon = i
		m.colonLast = true
	case isAssignOp(tok):
		m.lineAssign = true
	}
}

// stepTarget advances through NAME ('.' NAME)* ['[' ... ']'] ':'.
func (m *Locator) stepTarget(i int, tok types.Token, d int) {
	soft := m.lead.Text == "match" || m.lead.Text == "case"
	switch m.part {
	case afterName:
		switch {
		case tok.Is("."):
			m.part = afterDot
			return
		case tok.Is("[") && d == 1 && !(soft && i == m.stmt+1):
			m.part = inSubscript
			return
		case tok.Is(":") && d == 0:
			m.candidate(i)
			return
		}
	case afterDot:
		if tok.Kind == types.KindName {
			m.part = afterName
			return
		}
	case inSubscript:
		if tok.Is("]") && d == 1 {
			m.part = afterSubscript
		}
		return
	case afterSubscript:
		if tok.Is(":") && d == 0 {
			m.candidate(i)
			return
		}
	}
	m.phase = phaseNone
}

func (m *Locator) candidate(i int) {
	m.state = AfterColonCandidate
	m.phase = phaseNone
	m.colon = i
	m.eq = -1
	m.colonLast = true
}

// stepParams handles one token inside a def parameter list.
func (m *Locator) stepParams(i int, tok types.Token, d int) *types.Span {
	if d != m.openDepth {
		return nil
	}
	switch {
	case nesting.IsCloser(tok):
		sp := m.closeParam(i)
		m.state = Scanning
		m.phase = phaseAfterParams
		m.closeParen = i
		return sp
	case tok.IsKeyword("lambda"):
		m.lambdas++
	case tok.Is(":") && m.lambdas > 0:
		m.lambdas--
	case m.lambdas > 0:
	case tok.Is(":") && m.paramColon < 0:
		m.paramColon = i
	case tok.Is(",") || tok.Is("="):
		return m.closeParam(i)
	}
	return nil
}

func (m *Locator) closeParam(i int) *types.Span {
	if m.paramColon < 0 {
		return nil
	}
	start := m.paramColon
	m.paramColon = -1
	return m.emit(types.Span{
		Kind: types.SpanParam, Start: start, End: i,
		Stmt: start, StmtEnd: i,
		Target: m.def, Anchor: -1, Terminator: -1,
	})
}

// endLine closes the logical line ending at boundary index b.
func (m *Locator) endLine(b int) *types.Span {
	defer m.resetLine()

	if m.state == AfterColonCandidate {
		if m.colonLast {
			return nil
		}
		sp := types.Span{
			Kind: types.SpanDeclaration, Start: m.colon, End: b,
			Stmt: m.stmt, StmtEnd: b,
			Target: m.stmt, Anchor: -1, Terminator: -1,
		}
		if m.eq >= 0 {
			sp.Kind = types.SpanAssignment
			sp.End = m.eq
			sp.Terminator = m.eq
		}
		return m.emit(sp)
	}

	if m.lineColon >= 0 && !m.colonLast && m.stmt >= 0 && m.lead.Kind != types.KindKeyword &&
		m.lead.Text != "match" && m.lead.Text != "case" {
		m.skip(m.lineColon, ReasonUnsupported)
	}
	return nil
}

func (m *Locator) emit(sp types.Span) *types.Span {
	if m.suppressed {
		m.skip(sp.Start, ReasonDirective)
		return nil
	}
	return &sp
}

func (m *Locator) skip(i int, reason string) {
	m.skipped = append(m.skipped, types.Skip{Pos: m.l.At(i).Start, Reason: reason})
}

// directive switches span emission off and on. Only comments on a line of
// their own count.
func (m *Locator) directive(i int, tok types.Token) {
	if !m.opts.Directives {
		return
	}
	if i > m.l.Lo() {
		switch m.l.At(i - 1).Kind {
		case types.KindNL, types.KindNewline, types.KindIndent, types.KindDedent:
		default:
			return
		}
	}
	if sub := directiveRe.FindStringSubmatch(tok.Text); sub != nil {
		m.suppressed = sub[1] == "off"
	}
}
