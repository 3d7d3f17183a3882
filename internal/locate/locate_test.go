// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package locate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-striphints/internal/tokenlist"
	"github.com/petar-djukic/go-striphints/pkg/types"
)

type found struct {
	kind types.SpanKind
	text string
}

// spanText joins the token texts of [lo, hi) with single spaces.
func spanText(l *tokenlist.List, lo, hi int) string {
	var parts []string
	for i := lo; i < hi; i++ {
		tok := l.At(i)
		if tok.Layout() {
			continue
		}
		parts = append(parts, tok.Text)
	}
	return strings.Join(parts, " ")
}

func locateAll(t *testing.T, src string, opts Options) ([]found, []types.Skip, *tokenlist.List, []types.Span) {
	t.Helper()
	l, err := tokenlist.Parse(src)
	require.NoError(t, err)
	spans, skipped := Locate(l, opts)
	var out []found
	for _, sp := range spans {
		out = append(out, found{sp.Kind, spanText(l, sp.Start, sp.End)})
	}
	return out, skipped, l, spans
}

func TestLocate_Kinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []found
	}{
		{
			name: "declaration",
			src:  "x: int\n",
			want: []found{{types.SpanDeclaration, ": int"}},
		},
		{
			name: "assignment",
			src:  "x: int = 3\n",
			want: []found{{types.SpanAssignment, ": int"}},
		},
		{
			name: "def params and return",
			src:  "def f(x: int, y: str = 'a', *args: int, **kw: Any) -> str:\n    pass\n",
			want: []found{
				{types.SpanParam, ": int"},
				{types.SpanParam, ": str"},
				{types.SpanParam, ": int"},
				{types.SpanParam, ": Any"},
				{types.SpanReturn, "-> str"},
			},
		},
		{
			name: "nested generic annotation",
			src:  "def f(x: Dict[str, Tuple[int, int]] = {}) -> List[Dict[str, int]]: pass\n",
			want: []found{
				{types.SpanParam, ": Dict [ str , Tuple [ int , int ] ]"},
				{types.SpanReturn, "-> List [ Dict [ str , int ] ]"},
			},
		},
		{
			name: "subscript target",
			src:  "d[\"key\"]: int = 4\n",
			want: []found{{types.SpanAssignment, ": int"}},
		},
		{
			name: "dotted target",
			src:  "self.a.b: Optional[int] = None\n",
			want: []found{{types.SpanAssignment, ": Optional [ int ]"}},
		},
		{
			name: "soft keyword targets",
			src:  "match: int = 1\ntype: str\n",
			want: []found{{types.SpanAssignment, ": int"}, {types.SpanDeclaration, ": str"}},
		},
		{
			name: "semicolon separated statements",
			src:  "a: int = 1; b: str\n",
			want: []found{{types.SpanAssignment, ": int"}, {types.SpanDeclaration, ": str"}},
		},
		{
			name: "lambda defaults",
			src:  "def f(a=lambda x, y: x, b: int = 2, c=lambda: 0) -> None: ...\n",
			want: []found{{types.SpanParam, ": int"}, {types.SpanReturn, "-> None"}},
		},
		{
			name: "async method in class",
			src:  "class A:\n    x: int\n    async def m(self, v: int) -> None:\n        self.v: int = v\n",
			want: []found{
				{types.SpanDeclaration, ": int"},
				{types.SpanParam, ": int"},
				{types.SpanReturn, "-> None"},
				{types.SpanAssignment, ": int"},
			},
		},
		{
			name: "type parameters are kept",
			src:  "def f[T: int](x: T) -> T: return x\n",
			want: []found{{types.SpanParam, ": T"}, {types.SpanReturn, "-> T"}},
		},
		{
			name: "multi-line annotation",
			src:  "x: List[int,\n        int] = [1, 2]\n",
			want: []found{{types.SpanAssignment, ": List [ int , int ]"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, skipped, _, _ := locateAll(t, tt.src, Options{Directives: true})
			assert.Equal(t, tt.want, got)
			assert.Empty(t, skipped)
		})
	}
}

func TestLocate_NotAnnotations(t *testing.T) {
	srcs := []string{
		"x = {1: 2}\n",
		"y = a[1:2]\n",
		"f = lambda a, b: a\n",
		"if x: pass\n",
		"match x:\n    case [a, b]: pass\n    case _: pass\n",
		"print(f'{x:>10}')\n",
		"x:\n",
		"def f(a, b=1): return a\n",
		"class A(B, metaclass=M): pass\n",
		"for i in range(3): print(i)\n",
		"# x: int\n",
		"s = 'x: int'\n",
	}
	for _, src := range srcs {
		t.Run(src, func(t *testing.T) {
			got, skipped, _, _ := locateAll(t, src, Options{Directives: true})
			assert.Empty(t, got)
			assert.Empty(t, skipped)
		})
	}
}

func TestLocate_UnsupportedTargetsAreSkipped(t *testing.T) {
	tests := []struct {
		src  string
		line int
		col  int
	}{
		{"(x): int = 4\n", 1, 3},
		{"d[\"a\"][\"b\"]: int\n", 1, 11},
		{"a = 1\nf(x): int\n", 2, 4},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, skipped, _, _ := locateAll(t, tt.src, Options{})
			assert.Empty(t, got)
			require.Len(t, skipped, 1)
			assert.Equal(t, ReasonUnsupported, skipped[0].Reason)
			assert.Equal(t, tt.line, skipped[0].Pos.Line)
			assert.Equal(t, tt.col, skipped[0].Pos.Col)
		})
	}
}

func TestLocate_SpanFields(t *testing.T) {
	_, _, l, spans := locateAll(t, "def f(a) -> int:\n    x: int = 1\n", Options{})
	require.Len(t, spans, 2)

	ret := spans[0]
	assert.Equal(t, types.SpanReturn, ret.Kind)
	assert.True(t, l.At(ret.Anchor).Is(")"))
	assert.True(t, l.At(ret.Terminator).Is(":"))
	assert.True(t, l.At(ret.Target).IsKeyword("def"))
	assert.Equal(t, ret.Terminator, ret.End)

	asg := spans[1]
	assert.Equal(t, types.SpanAssignment, asg.Kind)
	assert.True(t, l.At(asg.Terminator).Is("="))
	assert.Equal(t, "x", l.At(asg.Stmt).Text)
	assert.Equal(t, types.KindNewline, l.At(asg.StmtEnd).Kind)
	assert.Equal(t, asg.Stmt, asg.Target)
}

func TestLocate_SkipDefs(t *testing.T) {
	got, _, _, _ := locateAll(t, "def f(x: int) -> int:\n    y: int = x\n    return y\n", Options{SkipDefs: true})
	assert.Equal(t, []found{{types.SpanAssignment, ": int"}}, got)
}

func TestLocate_Directives(t *testing.T) {
	src := strings.Join([]string{
		"a: int = 1",
		"# strip-hints: off",
		"b: int = 2",
		"def f(x: int) -> int: return x",
		"#strip-hints:on",
		"c: int = 3",
		"d: int = 4  # strip-hints: off",
		"e: int",
		"",
	}, "\n")

	got, skipped, _, _ := locateAll(t, src, Options{Directives: true})
	assert.Equal(t, []found{
		{types.SpanAssignment, ": int"},
		{types.SpanAssignment, ": int"},
		{types.SpanAssignment, ": int"},
		{types.SpanDeclaration, ": int"},
	}, got)
	require.Len(t, skipped, 3)
	for _, s := range skipped {
		assert.Equal(t, ReasonDirective, s.Reason)
	}

	got, skipped, _, _ = locateAll(t, src, Options{})
	assert.Len(t, got, 7)
	assert.Empty(t, skipped)
}

func TestLocator_StepStates(t *testing.T) {
	l, err := tokenlist.Parse("def f(a: int) -> int: pass\nx: int = 1\n")
	require.NoError(t, err)
	m := New(l, Options{})

	var states []State
	var spans int
	for i := l.Lo(); i < l.Hi(); i++ {
		st, sp := m.Step(i)
		states = append(states, st)
		if sp != nil {
			spans++
		}
	}
	assert.Equal(t, 3, spans)
	assert.Contains(t, states, InParamList)
	assert.Contains(t, states, InReturnArrow)
	assert.Contains(t, states, AfterColonCandidate)
	assert.Equal(t, Done, states[len(states)-1])
	assert.Equal(t, Done, m.State())

	st, sp := m.Step(0)
	assert.Equal(t, Done, st)
	assert.Nil(t, sp)
}
