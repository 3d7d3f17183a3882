// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package report

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const diffContext = 3

type lineOp struct {
	op   diffmatchpatch.Operation
	text string
}

// Diff returns a unified diff of before and after, or "" when they are
// equal.
func Diff(path, before, after string) string {
	if before == after {
		return ""
	}
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var ops []lineOp
	for _, d := range diffs {
		for _, ln := range strings.SplitAfter(d.Text, "\n") {
			if ln != "" {
				ops = append(ops, lineOp{op: d.Type, text: ln})
			}
		}
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "--- a/%s\n+++ b/%s\n", path, path)
	for _, h := range hunks(ops) {
		writeHunk(&buf, ops, h)
	}
	return buf.String()
}

type hunk struct{ lo, hi int }

// hunks groups changed lines with diffContext lines around them, merging
// groups that touch.
func hunks(ops []lineOp) []hunk {
	var out []hunk
	for i, o := range ops {
		if o.op == diffmatchpatch.DiffEqual {
			continue
		}
		lo := max(i-diffContext, 0)
		hi := min(i+diffContext+1, len(ops))
		if n := len(out); n > 0 && lo <= out[n-1].hi {
			out[n-1].hi = max(out[n-1].hi, hi)
			continue
		}
		out = append(out, hunk{lo, hi})
	}
	return out
}

func writeHunk(buf *strings.Builder, ops []lineOp, h hunk) {
	oldStart, newStart := 1, 1
	for _, o := range ops[:h.lo] {
		if o.op != diffmatchpatch.DiffInsert {
			oldStart++
		}
		if o.op != diffmatchpatch.DiffDelete {
			newStart++
		}
	}
	oldLen, newLen := 0, 0
	for _, o := range ops[h.lo:h.hi] {
		if o.op != diffmatchpatch.DiffInsert {
			oldLen++
		}
		if o.op != diffmatchpatch.DiffDelete {
			newLen++
		}
	}
	fmt.Fprintf(buf, "@@ -%d,%d +%d,%d @@\n", oldStart, oldLen, newStart, newLen)
	for _, o := range ops[h.lo:h.hi] {
		prefix := " "
		switch o.op {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		buf.WriteString(prefix)
		buf.WriteString(o.text)
		if !strings.HasSuffix(o.text, "\n") {
			buf.WriteString("\n\\ No newline at end of file\n")
		}
	}
}
