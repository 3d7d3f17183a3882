// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-striphints/internal/oracle"
	"github.com/petar-djukic/go-striphints/internal/stripper"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	path, err := Setup(v, t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, path)

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, oracle.KindTreeSitter, s.Oracle)
	assert.Equal(t, "python3", s.Python)
	assert.Equal(t, "warn", s.LogLevel)
	assert.Equal(t, stripper.DefaultOptions(), s.StripOptions())
}

func TestLoad_Pyproject(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "src", "pkg")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	writeFile(t, root, "pyproject.toml", `
[project]
name = "demo"

[tool.black]
line-length = 88

[tool.strip-hints]
to_empty = true
only-assigns-and-defs = true
jobs = 3
`)

	v := viper.New()
	path, err := Setup(v, sub)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "pyproject.toml"), path)

	s, err := Load(v)
	require.NoError(t, err)
	assert.True(t, s.ToEmpty)
	assert.True(t, s.OnlyAssignsAndDefs)
	assert.Equal(t, 3, s.Jobs)

	opts := s.StripOptions()
	assert.Equal(t, stripper.BlankEmpty, opts.BlankMode)
	assert.Equal(t, stripper.ScopeAssignmentsAndDeclOnly, opts.Scope)
}

func TestLoad_PyprojectUnknownKey(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pyproject.toml", "[tool.strip-hints]\nto-blank = true\n")

	_, err := Setup(viper.New(), dir)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pyproject.toml", "[tool.strip-hints]\noracle = \"none\"\nlog-level = \"info\"\njobs = 2\n")
	writeFile(t, dir, ".strip-hints.yaml", "oracle: python\njobs: 4\n")
	t.Setenv("STRIP_HINTS_JOBS", "6")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bool(KeyStripNL, false, "")
	v := viper.New()
	require.NoError(t, v.BindPFlag(KeyStripNL, flags.Lookup(KeyStripNL)))
	require.NoError(t, flags.Parse([]string{"--strip-nl"}))

	_, err := Setup(v, dir)
	require.NoError(t, err)

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, oracle.KindPython, s.Oracle)
	assert.Equal(t, 6, s.Jobs)
	assert.True(t, s.StripNL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"oracle", KeyOracle, "mypy"},
		{"report", KeyReport, "xml"},
		{"jobs", KeyJobs, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			_, err := Setup(v, t.TempDir())
			require.NoError(t, err)
			v.Set(tt.key, tt.val)

			_, err = Load(v)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestStripOptions(t *testing.T) {
	s := Settings{
		NoAST:               true,
		NoColonMove:         true,
		NoEqualMove:         true,
		StripNL:             true,
		CommentDeclarations: true,
		NoDirectives:        true,
		Oracle:              oracle.KindTreeSitter,
	}
	opts := s.StripOptions()
	assert.False(t, opts.ValidateOutput)
	assert.False(t, opts.RelocateColon)
	assert.False(t, opts.RelocateAssignment)
	assert.True(t, opts.StripInternalNewlines)
	assert.True(t, opts.CommentDeclarations)
	assert.False(t, opts.Directives)

	none := Settings{Oracle: oracle.KindNone}
	assert.False(t, none.StripOptions().ValidateOutput)
	assert.Equal(t, oracle.Config{Kind: oracle.KindNone}, none.OracleConfig())
}
