// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types holds the value types shared by the tokenizer, the rewriting
// engine, and the public strip-hints API.
package types

import "fmt"

// Kind classifies a Python token.
type Kind int

const (
	KindName      Kind = iota // Identifier, including soft keywords (match, case, type, _)
	KindKeyword               // Hard keyword (def, if, lambda, ...)
	KindNumber                // Numeric literal
	KindString                // String or bytes literal, prefixes included
	KindOp                    // Operator or delimiter
	KindComment               // Comment, without the trailing line break
	KindNL                    // Non-logical line break (blank line or inside brackets)
	KindNewline               // Line break ending a logical line
	KindIndent                // Indentation increase; text is the leading whitespace
	KindDedent                // Indentation decrease; empty text
	KindEndMarker             // End of input; empty text
)

func (k Kind) String() string {
	switch k {
	case KindName:
		return "NAME"
	case KindKeyword:
		return "KEYWORD"
	case KindNumber:
		return "NUMBER"
	case KindString:
		return "STRING"
	case KindOp:
		return "OP"
	case KindComment:
		return "COMMENT"
	case KindNL:
		return "NL"
	case KindNewline:
		return "NEWLINE"
	case KindIndent:
		return "INDENT"
	case KindDedent:
		return "DEDENT"
	case KindEndMarker:
		return "ENDMARKER"
	default:
		return "UNKNOWN"
	}
}

// Pos is a location in source text.
type Pos struct {
	Line   int // 1-based line number
	Col    int // 0-based column, counted in runes
	Offset int // 0-based byte offset
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Token is one lexical unit. Start and End never change after tokenizing;
// rewriting only replaces Text.
type Token struct {
	Kind  Kind
	Text  string
	Start Pos
	End   Pos
}

// Is reports whether the token is an operator with the given text.
func (t Token) Is(op string) bool {
	return t.Kind == KindOp && t.Text == op
}

// IsKeyword reports whether the token is the given hard keyword.
func (t Token) IsKeyword(kw string) bool {
	return t.Kind == KindKeyword && t.Text == kw
}

// Layout reports whether the token only carries layout or commentary:
// comments, line breaks, and indentation changes.
func (t Token) Layout() bool {
	switch t.Kind {
	case KindComment, KindNL, KindNewline, KindIndent, KindDedent:
		return true
	}
	return false
}

func (t Token) String() string {
	return fmt.Sprintf("<%s %q %s>", t.Kind, t.Text, t.Start)
}
