// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// SpanKind tags an annotation span.
type SpanKind int

const (
	SpanParam       SpanKind = iota // def f(x: int)
	SpanReturn                      // def f() -> int:
	SpanAssignment                  // x: int = 3
	SpanDeclaration                 // x: int
)

func (k SpanKind) String() string {
	switch k {
	case SpanParam:
		return "parameter-annotation"
	case SpanReturn:
		return "return-annotation"
	case SpanAssignment:
		return "simple-assignment-annotation"
	case SpanDeclaration:
		return "standalone-declaration"
	default:
		return "unknown"
	}
}

// Span is a run of tokens holding removable hint material. All indices
// point into the token sequence the span was located in and are half-open.
//
// Stmt and StmtEnd delimit the region whose line count a rewrite must keep:
// the whole logical line for assignment and declaration spans (StmtEnd is
// the terminating NEWLINE or ';'), the span itself for parameter spans, and
// the closing parenthesis through the header colon for return spans.
type Span struct {
	Kind    SpanKind
	Start   int
	End     int
	Stmt    int
	StmtEnd int

	// Target is the first token of the annotated target (assignment and
	// declaration spans) or the def keyword (parameter and return spans).
	Target int

	// Anchor is the closing parenthesis of the parameter list for return
	// spans, -1 otherwise.
	Anchor int

	// Terminator is the header colon for return spans and the '=' token for
	// assignment spans, -1 otherwise.
	Terminator int
}

// Skip records an annotation-like construct that was left unchanged.
type Skip struct {
	Pos    Pos
	Reason string
}

// Plan is the rewrite chosen for a span.
type Plan int

const (
	PlanBlank Plan = iota
	PlanComment
	PlanColonRelocation
	PlanAssignmentRelocation
)

func (p Plan) String() string {
	switch p {
	case PlanBlank:
		return "whitespace-blank"
	case PlanComment:
		return "comment-conversion"
	case PlanColonRelocation:
		return "colon-relocation"
	case PlanAssignmentRelocation:
		return "assignment-relocation"
	default:
		return "unknown"
	}
}
