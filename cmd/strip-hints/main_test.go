// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	annotated = "x: int = 1\n"
	stripped  = "x      = 1\n"
	plain     = "y = 2\n"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	code, out, _ := run(t, "version")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "strip-hints "+version+"\n", out)
}

func TestStrip_Stdout(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "a.py", annotated)

	code, out, errOut := run(t, path)
	assert.Equal(t, exitOK, code, errOut)
	assert.Equal(t, stripped, out)
}

func TestStrip_Options(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "a.py", "def f(x: int) -> str:\n    y: int = x\n")

	code, out, errOut := run(t, "--to-empty", "--oracle", "none", path)
	assert.Equal(t, exitOK, code, errOut)
	assert.Equal(t, "def f(x )  :\n    y  = x\n", out)

	code, out, errOut = run(t, "--only-assigns-and-defs", path)
	assert.Equal(t, exitOK, code, errOut)
	assert.Equal(t, "def f(x: int) -> str:\n    y      = x\n", out)
}

func TestOnlyTestForChanges(t *testing.T) {
	dir := t.TempDir()
	a := writeFixture(t, dir, "a.py", annotated)
	b := writeFixture(t, dir, "b.py", plain)

	code, out, _ := run(t, "--only-test-for-changes", a)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "True\n", out)

	code, out, _ = run(t, "--only-test-for-changes", b)
	assert.Equal(t, exitNoChanges, code)
	assert.Equal(t, "False\n", out)

	data, err := os.ReadFile(a)
	require.NoError(t, err)
	assert.Equal(t, annotated, string(data))
}

func TestDiff(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "a.py", annotated)

	code, out, errOut := run(t, "--diff", path)
	assert.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, "-x: int = 1\n")
	assert.Contains(t, out, "+x      = 1\n")
}

func TestOutfile(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "a.py", annotated)
	dest := filepath.Join(dir, "out.py")

	code, out, errOut := run(t, "-o", dest, path)
	assert.Equal(t, exitOK, code, errOut)
	assert.Empty(t, out)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, stripped, string(data))
}

func TestInplaceDirectory(t *testing.T) {
	dir := t.TempDir()
	a := writeFixture(t, dir, "a.py", annotated)
	b := writeFixture(t, dir, "pkg/b.py", plain)

	code, _, errOut := run(t, "--inplace", dir)
	assert.Equal(t, exitOK, code, errOut)

	data, err := os.ReadFile(a)
	require.NoError(t, err)
	assert.Equal(t, stripped, string(data))
	data, err = os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, plain, string(data))
}

func TestReport(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.py", annotated)
	writeFixture(t, dir, "b.py", plain)

	code, out, errOut := run(t, "--report", "json", dir)
	assert.Equal(t, exitOK, code, errOut)

	var summary struct {
		Files []struct {
			Path    string `json:"path"`
			Changed bool   `json:"changed"`
		} `json:"files"`
		Changed int `json:"changed"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	require.Len(t, summary.Files, 2)
	assert.Equal(t, 1, summary.Changed)
	assert.True(t, summary.Files[0].Changed)
	assert.False(t, summary.Files[1].Changed)
}

func TestFailure(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "bad.py", "a = 1\nx: int = (1))\nb = 2\n")

	code, out, errOut := run(t, path)
	assert.Equal(t, exitFailure, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "unbalanced nesting")
	assert.Contains(t, errOut, ">    2 │ x: int = (1))")
}

func TestUsageErrors(t *testing.T) {
	dir := t.TempDir()
	a := writeFixture(t, dir, "a.py", annotated)
	b := writeFixture(t, dir, "b.py", plain)

	tests := []struct {
		name string
		args []string
	}{
		{"no inputs", nil},
		{"exclusive outputs", []string{"--inplace", "--outdir", dir, a}},
		{"outfile with two inputs", []string{"-o", filepath.Join(dir, "o.py"), a, b}},
		{"several inputs to stdout", []string{a, b}},
		{"bad oracle", []string{"--oracle", "mypy", a}},
		{"missing input", []string{filepath.Join(dir, "nope.py")}},
		{"watch without outdir", []string{"watch", dir}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := run(t, tt.args...)
			assert.Equal(t, exitFailure, code)
			assert.Contains(t, errOut, "Error:")
		})
	}
}
