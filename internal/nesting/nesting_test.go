// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package nesting

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-striphints/internal/pytoken"
	"github.com/petar-djukic/go-striphints/pkg/types"
)

func TestTrack_Depths(t *testing.T) {
	toks, err := pytoken.Tokenize("f(a[1], {b})\n")
	require.NoError(t, err)

	depths, err := Track(toks)
	require.NoError(t, err)

	var got []int
	for i, tok := range toks {
		if tok.Kind == types.KindNewline || tok.Kind == types.KindEndMarker {
			continue
		}
		got = append(got, depths[i])
	}
	// f ( a [ 1 ] , { b } )
	assert.Equal(t, []int{0, 1, 1, 2, 2, 2, 1, 2, 2, 2, 1}, got)
}

func TestTrack_KindOnlyMatching(t *testing.T) {
	toks, err := pytoken.Tokenize("x = (1]\n")
	require.NoError(t, err)

	_, err = Track(toks)
	assert.NoError(t, err)
}

func TestTrack_Unbalanced(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		col  int
	}{
		{"extra closer", "x = [1, 2]]\n", 1, 10},
		{"unclosed opener", "x = (1,\n     2\n", 1, 4},
		{"closer first", ")\n", 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := pytoken.Tokenize(tt.src)
			require.NoError(t, err)

			_, err = Track(toks)
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrUnbalancedNesting))

			var terr *types.Error
			require.True(t, errors.As(err, &terr))
			assert.Equal(t, tt.line, terr.Pos.Line)
			assert.Equal(t, tt.col, terr.Pos.Col)
		})
	}
}

func TestIsOpenerCloser(t *testing.T) {
	assert.True(t, IsOpener(types.Token{Kind: types.KindOp, Text: "{"}))
	assert.False(t, IsOpener(types.Token{Kind: types.KindString, Text: "("}))
	assert.True(t, IsCloser(types.Token{Kind: types.KindOp, Text: "]"}))
	assert.False(t, IsCloser(types.Token{Kind: types.KindOp, Text: ":"}))
}

func TestIsOpenerCloser_ExtendedText(t *testing.T) {
	assert.True(t, IsCloser(types.Token{Kind: types.KindOp, Text: "):"}))
	assert.True(t, IsCloser(types.Token{Kind: types.KindOp, Text: "]\n"}))
	assert.True(t, IsOpener(types.Token{Kind: types.KindOp, Text: "(\n"}))
	assert.False(t, IsCloser(types.Token{Kind: types.KindOp, Text: " "}))
	assert.False(t, IsOpener(types.Token{Kind: types.KindOp, Text: ""}))
}
