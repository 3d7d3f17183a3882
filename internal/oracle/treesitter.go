// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package oracle

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/petar-djukic/go-striphints/pkg/types"
)

const errorQuery = `(ERROR) @error`

// TreeSitter parses text with the tree-sitter Python grammar and rejects
// trees containing ERROR or MISSING nodes.
type TreeSitter struct{}

// Validate parses text and reports the first syntax error found.
func (TreeSitter) Validate(ctx context.Context, filename, text string) error {
	content := []byte(text)
	lang := python.GetLanguage()
	root, err := sitter.ParseCtx(ctx, content, lang)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", filename, err)
	}
	if root == nil || !root.HasError() {
		return nil
	}

	bad := firstErrorNode(lang, root)
	if bad == nil {
		bad = firstMissing(root)
	}
	if bad == nil {
		bad = root
	}

	pt := bad.StartPoint()
	line := int(pt.Row) + 1
	lineText := sourceLine(text, line)
	col := int(pt.Column)
	if col <= len(lineText) {
		col = utf8.RuneCountInString(lineText[:col])
	}
	msg := "invalid syntax"
	if bad.IsMissing() {
		msg = fmt.Sprintf("missing %s", bad.Type())
	}
	return &types.Error{
		Kind:      types.ErrSyntax,
		File:      filename,
		Pos:       types.Pos{Line: line, Col: col, Offset: int(bad.StartByte())},
		Construct: lineText,
		Msg:       msg,
	}
}

// firstErrorNode returns the earliest ERROR node captured by errorQuery.
func firstErrorNode(lang *sitter.Language, root *sitter.Node) *sitter.Node {
	q, err := sitter.NewQuery([]byte(errorQuery), lang)
	if err != nil {
		return nil
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, root)

	var first *sitter.Node
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			if first == nil || c.Node.StartByte() < first.StartByte() {
				first = c.Node
			}
		}
	}
	return first
}

// firstMissing walks the tree depth-first for a MISSING node.
func firstMissing(n *sitter.Node) *sitter.Node {
	if n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found := firstMissing(n.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

func sourceLine(text string, line int) string {
	lines := strings.SplitAfter(text, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[line-1], "\r\n")
}
