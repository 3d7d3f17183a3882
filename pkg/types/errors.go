// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every fatal condition returned by the engine wraps one of
// these, so callers can test with errors.Is.
var (
	ErrLex                  = errors.New("lex error")
	ErrUnbalancedNesting    = errors.New("unbalanced nesting")
	ErrUnsupportedConstruct = errors.New("unsupported construct")
	ErrLineCountViolation   = errors.New("line count violation")
	ErrSyntax               = errors.New("syntax error")
	ErrOutOfRange           = errors.New("out of range")
)

// Error is a located failure. It unwraps to its Kind.
type Error struct {
	Kind      error  // One of the Err* sentinels
	File      string // Source file name; empty for strings
	Pos       Pos    // Location of the offending construct
	Construct string // Source line of the offending construct, if known
	Msg       string // Human-readable detail
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		b.WriteString(":")
	}
	if e.Pos.Line > 0 {
		fmt.Fprintf(&b, "%d:%d:", e.Pos.Line, e.Pos.Col+1)
	}
	if b.Len() > 0 {
		b.WriteString(" ")
	}
	b.WriteString(e.Kind.Error())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Errorf builds an *Error of the given kind at pos.
func Errorf(kind error, pos Pos, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// WithFile returns err with its File set when err is an *Error with no file
// yet. Other errors are returned unchanged.
func WithFile(err error, file string) error {
	var e *Error
	if errors.As(err, &e) && e.File == "" {
		cp := *e
		cp.File = file
		return &cp
	}
	return err
}
