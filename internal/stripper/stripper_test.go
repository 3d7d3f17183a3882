// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package stripper

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-striphints/internal/oracle"
	"github.com/petar-djukic/go-striphints/internal/pytoken"
	"github.com/petar-djukic/go-striphints/internal/tokenlist"
	"github.com/petar-djukic/go-striphints/pkg/types"
)

const sample = `import typing
from typing import Dict, List


class Point:
    x: int
    y: int = 0

    def __init__(self, x: int, y: int = 0) -> None:
        self.x: int = x
        self.y = y

    def scale(self, k: float, *, clamp: bool = False) -> "Point":
        return Point(int(self.x * k), int(self.y * k))


def total(values: List[int], start: int = 0) -> int:
    acc: int = start
    for v in values:
        acc += v
    return acc
`

func strip(t *testing.T, src string, opts Options) *Result {
	t.Helper()
	res, err := StripString(context.Background(), src, opts)
	require.NoError(t, err)
	return res
}

func TestStrip_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"bare declaration", "x: int\n", "x     \n"},
		{"def header", "def f(x: int) -> str:\n    pass\n", "def f(x     )       :\n    pass\n"},
		{"subscript target", "d[\"key\"]: int = 4\n", "d[\"key\"]      = 4\n"},
		{"parenthesized target untouched", "(x): int = 4\n", "(x): int = 4\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := strip(t, tt.src, DefaultOptions())
			assert.Equal(t, tt.want, res.Output)
			assert.Equal(t, tt.src != tt.want, res.Changed)
		})
	}
}

func TestStrip_MultiLineAssignmentKeepsLineCount(t *testing.T) {
	src := "x: List[int,\n        int] = [1,2]\nprint(x)\n"
	res := strip(t, src, DefaultOptions())

	lines := strings.Split(res.Output, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"x", "=", "[1,2]"}, strings.Fields(lines[0]))
	assert.Equal(t, "print(x)", lines[2])
	assert.Equal(t, []types.Plan{types.PlanAssignmentRelocation}, res.Plans)
}

func TestStrip_MultiLineReturnAnnotation(t *testing.T) {
	src := "def f() -> Dict[str,\n        int]:\n    pass\n"
	res := strip(t, src, DefaultOptions())

	lines := strings.Split(res.Output, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "def f():", strings.TrimRight(lines[0], " "))
	assert.Empty(t, strings.TrimSpace(lines[1]))
	assert.Equal(t, "    pass", lines[2])
	assert.Contains(t, res.Plans, types.PlanColonRelocation)
	require.NoError(t, oracle.TreeSitter{}.Validate(context.Background(), "t.py", res.Output))
}

func TestStrip_RelocationKeepsLineCount(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts func(*Options)
	}{
		{name: "multi-line return", src: "def f() -> Dict[str,\n        int]:\n    pass\n"},
		{name: "return with star params", src: "def f(a, *args: int, **kw: str) -> Dict[str,\n        int]:\n    return 1\n"},
		{name: "assignment to name", src: "x: List[int,\n        int] = y\nprint(x)\n"},
		{name: "assignment to list", src: "x: List[int,\n        int] = [1,2]\n"},
		{name: "multi-line string annotation", src: "x: \"\"\"List[\nint]\"\"\" = []\n"},
		{name: "comment inside annotation", src: "x: Dict[str,  # c\n    int] = {}\n"},
		{name: "shared line", src: "x: List[int,\n    int] = y; z = 1\n"},
		{name: "class body declaration", src: "class A:\n    x: List[int,\n        int]\n    y = 1\n"},
		{
			name: "commented declaration",
			src:  "x: int\ny: str\n",
			opts: func(o *Options) { o.CommentDeclarations = true },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			if tt.opts != nil {
				tt.opts(&opts)
			}
			res := strip(t, tt.src, opts)
			assert.True(t, res.Changed)
			assert.Equal(t, strings.Count(tt.src, "\n"), strings.Count(res.Output, "\n"), res.Output)
			require.NoError(t, oracle.TreeSitter{}.Validate(context.Background(), "t.py", res.Output), res.Output)
		})
	}
}

func TestStrip_DetectOnly(t *testing.T) {
	opts := DefaultOptions()
	opts.Mode = ModeDetectOnly

	res := strip(t, "(x): int = 4\n", opts)
	assert.False(t, res.Changed)
	assert.Len(t, res.Skipped, 1)
	assert.Equal(t, "(x): int = 4\n", res.Output)

	res = strip(t, sample, opts)
	assert.True(t, res.Changed)
	assert.Equal(t, sample, res.Output)
	assert.Empty(t, res.Plans)
}

func TestStrip_UnbalancedNestingFailsBeforeOutput(t *testing.T) {
	opts := DefaultOptions()
	opts.Filename = "bad.py"

	res, err := StripString(context.Background(), "x: int = f(1))\n", opts)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, types.ErrUnbalancedNesting))
	assert.Contains(t, err.Error(), "bad.py:1:14:")
}

func TestStrip_LexErrorCarriesFile(t *testing.T) {
	opts := DefaultOptions()
	opts.Filename = "lex.py"

	_, err := StripString(context.Background(), "x = 'abc\n", opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrLex))
	assert.True(t, strings.HasPrefix(err.Error(), "lex.py:"))
}

func TestStrip_Idempotent(t *testing.T) {
	for _, opts := range []Options{DefaultOptions(), func() Options {
		o := DefaultOptions()
		o.BlankMode = BlankEmpty
		return o
	}()} {
		once := strip(t, sample, opts)
		require.True(t, once.Changed)
		twice := strip(t, once.Output, opts)
		assert.False(t, twice.Changed)
		assert.Equal(t, once.Output, twice.Output)
	}
}

func TestStrip_PositionsPreserved(t *testing.T) {
	res := strip(t, sample, DefaultOptions())

	orig, err := pytoken.Tokenize(sample)
	require.NoError(t, err)
	out, err := pytoken.Tokenize(res.Output)
	require.NoError(t, err)

	at := make(map[types.Pos]string)
	for _, tok := range orig {
		at[types.Pos{Line: tok.Start.Line, Col: tok.Start.Col}] = tok.Text
	}
	for _, tok := range out {
		if tok.Layout() || tok.Kind == types.KindEndMarker {
			continue
		}
		text, ok := at[types.Pos{Line: tok.Start.Line, Col: tok.Start.Col}]
		assert.True(t, ok, "token %s moved", tok)
		assert.Equal(t, text, tok.Text)
	}
	assert.Equal(t, strings.Count(sample, "\n"), strings.Count(res.Output, "\n"))
}

func TestStrip_Scope(t *testing.T) {
	opts := DefaultOptions()
	opts.Scope = ScopeAssignmentsAndDeclOnly

	res := strip(t, "def f(x: int) -> int:\n    y: int = x\n    return y\n", opts)
	assert.Equal(t, "def f(x: int) -> int:\n    y      = x\n    return y\n", res.Output)
}

func TestStrip_RelocationDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.RelocateAssignment = false

	_, err := StripString(context.Background(), "x: List[int,\n        int] = [1,2]\n", opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrLineCountViolation))
}

func TestStrip_Directives(t *testing.T) {
	src := "a: int = 1\n# strip-hints: off\nb: int = 2\n# strip-hints: on\nc: int = 3\n"

	res := strip(t, src, DefaultOptions())
	assert.Equal(t, "a      = 1\n# strip-hints: off\nb: int = 2\n# strip-hints: on\nc      = 3\n", res.Output)
	require.Len(t, res.Skipped, 1)

	opts := DefaultOptions()
	opts.Directives = false
	res = strip(t, src, opts)
	assert.NotContains(t, res.Output, ": int")
}

type rejectAll struct{ called int }

func (r *rejectAll) Validate(_ context.Context, filename, _ string) error {
	r.called++
	return &types.Error{Kind: types.ErrSyntax, File: filename, Pos: types.Pos{Line: 1}, Msg: "rejected"}
}

func TestStrip_Validation(t *testing.T) {
	o := &rejectAll{}
	opts := DefaultOptions()
	opts.Oracle = o
	opts.Filename = "v.py"

	_, err := StripString(context.Background(), "x: int = 1\n", opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrSyntax))
	assert.Equal(t, 1, o.called)

	res := strip(t, "x = 1\n", opts)
	assert.False(t, res.Changed)
	assert.Equal(t, 1, o.called, "unchanged output is not validated")

	opts.ValidateOutput = false
	res = strip(t, "x: int = 1\n", opts)
	assert.True(t, res.Changed)
	assert.Equal(t, 1, o.called)
}

func TestStrip_SampleValidatesWithTreeSitter(t *testing.T) {
	res := strip(t, sample, DefaultOptions())
	assert.NotContains(t, res.Output, "-> ")
	assert.NotContains(t, res.Output, ": int")
	assert.Contains(t, res.Output, "def total(values           , start      = 0)       :")
}

func TestStrip_LogsDecisions(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	strip(t, "x: int = 1\n(y): int = 2\n", opts)
	assert.Contains(t, buf.String(), "plan=whitespace-blank")
	assert.Contains(t, buf.String(), "reason=\"unsupported annotation target\"")
}

func TestStrip_ListInPlace(t *testing.T) {
	l, err := tokenlist.Parse("x: int = 1\n")
	require.NoError(t, err)

	res, err := Strip(l, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "x      = 1\n", res.Output)
	assert.Equal(t, " ", l.At(1).Text)
}
