// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package oracle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/petar-djukic/go-striphints/pkg/types"
)

// parseScript reads source from stdin and prints "file:line:offset: msg"
// for a SyntaxError.
const parseScript = `import ast, sys
src = sys.stdin.buffer.read().decode("utf-8")
try:
    ast.parse(src, sys.argv[1])
except SyntaxError as e:
    print("%s:%d:%d: %s" % (sys.argv[1], e.lineno or 0, e.offset or 0, e.msg))
    sys.exit(1)
`

// Python validates text by running ast.parse in a Python interpreter.
type Python struct {
	Interpreter string
	Timeout     time.Duration
}

// Validate runs the interpreter on text. A missing interpreter or a crash
// is returned as a plain error; a syntax error as a *types.Error.
func (p *Python) Validate(ctx context.Context, filename, text string) error {
	timeout := p.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	interp := p.Interpreter
	if interp == "" {
		interp = defaultPython
	}
	name := filename
	if name == "" {
		name = "<string>"
	}

	out, err := runCommand(ctx, timeout, text, interp, "-c", parseScript, name)
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return fmt.Errorf("running %s: %w", interp, err)
	}
	diags := parseDiagnostics(out)
	if len(diags) == 0 {
		return fmt.Errorf("%s failed: %w: %s", interp, err, strings.TrimSpace(out))
	}
	d := diags[0]
	col := 0
	if d.Column > 0 {
		col = d.Column - 1
	}
	return &types.Error{
		Kind:      types.ErrSyntax,
		File:      filename,
		Pos:       types.Pos{Line: d.Line, Col: col},
		Construct: sourceLine(text, d.Line),
		Msg:       d.Message,
	}
}

// runCommand executes a command with a timeout, feeds it stdin, and
// captures combined output.
func runCommand(ctx context.Context, timeout time.Duration, stdin, name string, args ...string) (string, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, name, args...)
	cmd.Stdin = strings.NewReader(stdin)

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	return buf.String(), err
}

// Diagnostic is one parsed "file:line:col: message" line.
type Diagnostic struct {
	File    string
	Line    int // 1-based
	Column  int // 1-based, 0 if not available
	Message string
}

var diagRegex = regexp.MustCompile(`^(.+?):(\d+):(\d+): (.+)$`)

// parseDiagnostics extracts diagnostics from interpreter output.
func parseDiagnostics(output string) []Diagnostic {
	var diags []Diagnostic
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := diagRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lineNum, _ := strconv.Atoi(m[2])
		colNum, _ := strconv.Atoi(m[3])
		diags = append(diags, Diagnostic{File: m[1], Line: lineNum, Column: colNum, Message: m[4]})
	}
	return diags
}
