// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package report formats the outcome of a strip run: per-file summaries in
// JSON or YAML, unified diffs, and source excerpts around errors.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/petar-djukic/go-striphints/pkg/types"
)

// Report formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const defaultContextLines = 2

// ErrUnknownFormat is returned by Write for an unsupported format.
var ErrUnknownFormat = errors.New("unknown report format")

// Span describes one removed annotation.
type Span struct {
	Kind string `json:"kind" yaml:"kind"`
	Plan string `json:"plan,omitempty" yaml:"plan,omitempty"`
	Line int    `json:"line" yaml:"line"`
	Col  int    `json:"col" yaml:"col"`
}

// Skip describes one construct left unchanged.
type Skip struct {
	Reason string `json:"reason" yaml:"reason"`
	Line   int    `json:"line" yaml:"line"`
	Col    int    `json:"col" yaml:"col"`
}

// File is the outcome for one input.
type File struct {
	Path    string `json:"path" yaml:"path"`
	Changed bool   `json:"changed" yaml:"changed"`
	Output  string `json:"output,omitempty" yaml:"output,omitempty"`
	Spans   []Span `json:"spans,omitempty" yaml:"spans,omitempty"`
	Skipped []Skip `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Summary is the outcome of a whole run.
type Summary struct {
	Files   []File `json:"files" yaml:"files"`
	Changed int    `json:"changed" yaml:"changed"`
	Failed  int    `json:"failed" yaml:"failed"`
}

// NewFile builds a File entry from located spans, their start positions,
// and their plans. plans may be shorter than spans (detect-only runs have
// none).
func NewFile(path string, changed bool, spans []types.Span, starts []types.Pos, plans []types.Plan, skipped []types.Skip) File {
	f := File{Path: path, Changed: changed}
	for i, sp := range spans {
		s := Span{Kind: sp.Kind.String()}
		if i < len(plans) {
			s.Plan = plans[i].String()
		}
		if i < len(starts) {
			s.Line, s.Col = starts[i].Line, starts[i].Col+1
		}
		f.Spans = append(f.Spans, s)
	}
	for _, sk := range skipped {
		f.Skipped = append(f.Skipped, Skip{Reason: sk.Reason, Line: sk.Pos.Line, Col: sk.Pos.Col + 1})
	}
	return f
}

// Add appends f and updates the counters.
func (s *Summary) Add(f File) {
	s.Files = append(s.Files, f)
	if f.Changed {
		s.Changed++
	}
	if f.Error != "" {
		s.Failed++
	}
}

// Write encodes s to w in the given format.
func Write(w io.Writer, format string, s *Summary) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// CodeContext returns numbered lines of text around line, marking line
// with "> ".
func CodeContext(text string, line, contextLines int) string {
	if contextLines == 0 {
		contextLines = defaultContextLines
	}
	lines := strings.Split(text, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	start := max(line-contextLines-1, 0)
	end := min(line+contextLines, len(lines))

	var buf strings.Builder
	for i := start; i < end; i++ {
		n := i + 1
		marker := "  "
		if n == line {
			marker = "> "
		}
		fmt.Fprintf(&buf, "%s%4d │ %s\n", marker, n, strings.TrimRight(lines[i], "\r"))
	}
	return buf.String()
}

// FormatError renders err with a source excerpt when it carries a
// position.
func FormatError(err error, text string) string {
	var terr *types.Error
	if !errors.As(err, &terr) || terr.Pos.Line == 0 {
		return err.Error() + "\n"
	}
	var buf strings.Builder
	buf.WriteString(err.Error())
	buf.WriteString("\n")
	buf.WriteString(CodeContext(text, terr.Pos.Line, defaultContextLines))
	return buf.String()
}
