// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package source reads and writes Python files, honoring the byte-order
// mark and PEP 263 coding declarations, and replaces files atomically.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

const utf8Name = "utf-8"

var bom = []byte{0xEF, 0xBB, 0xBF}

// ErrEncoding is returned for undecodable input or unknown encodings.
var ErrEncoding = errors.New("encoding error")

// cookieRe matches a coding declaration comment.
var cookieRe = regexp.MustCompile(`^[ \t\f]*#.*?coding[:=][ \t]*([-\w.]+)`)

// blankOrCommentRe matches a line that lets the cookie search continue to
// the second line.
var blankOrCommentRe = regexp.MustCompile(`^[ \t\f]*(?:[#\r\n]|$)`)

// File is a decoded Python source file.
type File struct {
	Path     string
	Text     string      // Decoded text
	Encoding string      // Declared or default encoding name
	BOM      bool        // Input started with a UTF-8 byte-order mark
	Perm     os.FileMode // Permissions of the file on disk
}

// Read loads and decodes the file at path.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = path
	if info, err := os.Stat(path); err == nil {
		f.Perm = info.Mode().Perm()
	}
	return f, nil
}

// Decode turns raw bytes into text.
func Decode(data []byte) (*File, error) {
	f := &File{Encoding: utf8Name, Perm: 0o644}
	if bytes.HasPrefix(data, bom) {
		f.BOM = true
		data = data[len(bom):]
	}

	if name := Cookie(data); name != "" {
		norm := normalize(name)
		if f.BOM && norm != utf8Name {
			return nil, fmt.Errorf("%w: byte-order mark conflicts with coding %q", ErrEncoding, name)
		}
		f.Encoding = norm
	}

	if f.Encoding == utf8Name {
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("%w: invalid utf-8", ErrEncoding)
		}
		f.Text = string(data)
		return f, nil
	}

	enc, err := lookup(f.Encoding)
	if err != nil {
		return nil, err
	}
	text, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrEncoding, f.Encoding, err)
	}
	f.Text = string(text)
	return f, nil
}

// Encode converts text back to the file's encoding, restoring the
// byte-order mark.
func (f *File) Encode(text string) ([]byte, error) {
	var out []byte
	if f.BOM {
		out = append(out, bom...)
	}
	if f.Encoding == "" || f.Encoding == utf8Name {
		return append(out, text...), nil
	}
	enc, err := lookup(f.Encoding)
	if err != nil {
		return nil, err
	}
	data, err := enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("%w: encoding %s: %v", ErrEncoding, f.Encoding, err)
	}
	return append(out, data...), nil
}

// Cookie returns the encoding declared in the first two lines of data, or
// "" when there is none. The second line is only consulted when the first
// is blank or a comment.
func Cookie(data []byte) string {
	lines := bytes.SplitAfterN(data, []byte("\n"), 3)
	for i, line := range lines {
		if i == 2 {
			break
		}
		if m := cookieRe.FindSubmatch(line); m != nil {
			return string(m[1])
		}
		if !blankOrCommentRe.Match(line) {
			break
		}
	}
	return ""
}

// normalize maps the spellings Python accepts to canonical names.
func normalize(name string) string {
	n := strings.ToLower(strings.ReplaceAll(name, "_", "-"))
	switch {
	case n == "utf-8" || strings.HasPrefix(n, "utf-8-") || n == "utf8":
		return utf8Name
	case n == "latin-1" || n == "iso-8859-1" || n == "iso-latin-1" ||
		strings.HasPrefix(n, "latin-1-") || strings.HasPrefix(n, "iso-8859-1-") ||
		strings.HasPrefix(n, "iso-latin-1-"):
		return "iso-8859-1"
	}
	return n
}

func lookup(name string) (encoding.Encoding, error) {
	for _, idx := range []*ianaindex.Index{ianaindex.IANA, ianaindex.MIME} {
		enc, err := idx.Encoding(name)
		if err == nil && enc != nil {
			return enc, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown encoding %q", ErrEncoding, name)
}

// WriteFile replaces path with data atomically: the data goes to a
// temporary file in the same directory which is then renamed over path.
// Existing permissions are kept.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)

	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	f, err := os.CreateTemp(dir, ".strip-hints-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
