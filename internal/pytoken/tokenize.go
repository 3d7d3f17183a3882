// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package pytoken turns Python source text into the token stream the
// rewriting engine consumes. It follows the shape of the reference Python
// tokenizer: NEWLINE ends a logical line, NL marks every other line break,
// INDENT and DEDENT track block structure. Bracket balance is not checked
// here; that belongs to the nesting tracker.
package pytoken

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/petar-djukic/go-striphints/pkg/types"
)

const tabSize = 8

// keywords holds the hard keywords of Python 3. Soft keywords (match, case,
// type, _) are deliberately absent: they tokenize as names.
var keywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true,
	"class": true, "continue": true, "def": true, "del": true, "elif": true,
	"else": true, "except": true, "finally": true, "for": true, "from": true,
	"global": true, "if": true, "import": true, "in": true, "is": true,
	"lambda": true, "nonlocal": true, "not": true, "or": true, "pass": true,
	"raise": true, "return": true, "try": true, "while": true, "with": true,
	"yield": true,
}

// IsKeyword reports whether name is a hard Python keyword.
func IsKeyword(name string) bool {
	return keywords[name]
}

// operators is ordered longest first so the first match wins.
var operators = []string{
	"**=", "//=", ">>=", "<<=", "...",
	"->", "**", "//", "<<", ">>", "<=", ">=", "==", "!=", ":=",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "@=",
	"(", ")", "[", "]", "{", "}", ",", ":", ";", ".", "+", "-", "*", "/",
	"%", "&", "|", "^", "~", "<", ">", "=", "@", "!",
}

var stringPrefixes = map[string]bool{
	"": true, "r": true, "u": true, "b": true, "f": true,
	"br": true, "rb": true, "fr": true, "rf": true,
}

// contString tracks a string literal that continues past a line break.
type contString struct {
	start types.Pos
	quote string
	text  strings.Builder
}

type tokenizer struct {
	src      string
	toks     []types.Token
	indents  []int
	parenlev int
	cont     bool
	str      *contString

	lnum      int
	lineStart int
	line      string
}

// Tokenize splits src into tokens. The returned slice always ends with an
// ENDMARKER token. Errors wrap types.ErrLex.
func Tokenize(src string) ([]types.Token, error) {
	t := &tokenizer{src: src, indents: []int{0}}
	for _, ln := range splitLines(src) {
		t.lnum++
		t.lineStart = ln.offset
		t.line = ln.text
		if err := t.scanLine(); err != nil {
			return nil, err
		}
	}
	if err := t.finish(); err != nil {
		return nil, err
	}
	return t.toks, nil
}

type physLine struct {
	offset int
	text   string
}

// splitLines splits src into physical lines, each keeping its terminator
// ("\n", "\r\n" or "\r").
func splitLines(src string) []physLine {
	var lines []physLine
	start := 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\n':
			lines = append(lines, physLine{start, src[start : i+1]})
			start = i + 1
		case '\r':
			if i+1 < len(src) && src[i+1] == '\n' {
				i++
			}
			lines = append(lines, physLine{start, src[start : i+1]})
			start = i + 1
		}
	}
	if start < len(src) {
		lines = append(lines, physLine{start, src[start:]})
	}
	return lines
}

func (t *tokenizer) pos(i int) types.Pos {
	return types.Pos{
		Line:   t.lnum,
		Col:    utf8.RuneCountInString(t.line[:i]),
		Offset: t.lineStart + i,
	}
}

func (t *tokenizer) emit(kind types.Kind, start, end int) {
	t.toks = append(t.toks, types.Token{
		Kind:  kind,
		Text:  t.line[start:end],
		Start: t.pos(start),
		End:   t.pos(end),
	})
}

func (t *tokenizer) fail(i int, format string, args ...any) error {
	return types.Errorf(types.ErrLex, t.pos(i), format, args...)
}

func (t *tokenizer) scanLine() error {
	pos := 0
	if t.str != nil {
		end, found, continued := scanStringBody(t.line, 0, t.str.quote)
		if !found {
			if len(t.str.quote) == 1 && !continued {
				return types.Errorf(types.ErrLex, t.str.start, "unterminated string literal")
			}
			t.str.text.WriteString(t.line)
			return nil
		}
		t.str.text.WriteString(t.line[:end])
		t.toks = append(t.toks, types.Token{
			Kind:  types.KindString,
			Text:  t.str.text.String(),
			Start: t.str.start,
			End:   t.pos(end),
		})
		t.str = nil
		pos = end
	} else if t.parenlev <= 0 && !t.cont {
		column := 0
	measure:
		for ; pos < len(t.line); pos++ {
			switch t.line[pos] {
			case ' ':
				column++
			case '\t':
				column = (column/tabSize + 1) * tabSize
			case '\f':
				column = 0
			default:
				break measure
			}
		}
		if pos == len(t.line) {
			return nil
		}
		switch t.line[pos] {
		case '#', '\r', '\n':
			// Blank and comment-only lines never affect indentation.
			if t.line[pos] == '#' {
				end := lineBodyEnd(t.line)
				t.emit(types.KindComment, pos, end)
				pos = end
			}
			if pos < len(t.line) {
				t.emit(types.KindNL, pos, len(t.line))
			}
			return nil
		}
		if err := t.indent(column, pos); err != nil {
			return err
		}
	} else {
		t.cont = false
	}
	return t.scanTokens(pos)
}

func (t *tokenizer) indent(column, pos int) error {
	if column > t.indents[len(t.indents)-1] {
		t.indents = append(t.indents, column)
		t.emit(types.KindIndent, 0, pos)
		return nil
	}
	for column < t.indents[len(t.indents)-1] {
		t.indents = t.indents[:len(t.indents)-1]
		if column > t.indents[len(t.indents)-1] {
			return t.fail(pos, "unindent does not match any outer indentation level")
		}
		t.emit(types.KindDedent, pos, pos)
	}
	return nil
}

func (t *tokenizer) scanTokens(pos int) error {
	line := t.line
	for pos < len(line) {
		c := line[pos]
		if c == ' ' || c == '\t' || c == '\f' {
			pos++
			continue
		}
		start := pos
		switch {
		case c == '#':
			pos = lineBodyEnd(line)
			t.emit(types.KindComment, start, pos)
		case c == '\r' || c == '\n':
			kind := types.KindNewline
			if t.parenlev > 0 {
				kind = types.KindNL
			}
			t.emit(kind, start, len(line))
			return nil
		case c == '\\':
			if lineBodyEnd(line) == pos+1 && pos+1 < len(line) {
				t.cont = true
				return nil
			}
			if pos+1 == len(line) {
				return t.fail(pos, "unexpected EOF after line continuation character")
			}
			return t.fail(pos, "unexpected character after line continuation character")
		case isDigit(c) || (c == '.' && pos+1 < len(line) && isDigit(line[pos+1])):
			pos = scanNumber(line, pos)
			t.emit(types.KindNumber, start, pos)
		case c == '"' || c == '\'':
			var err error
			if pos, err = t.scanString(start, start); err != nil {
				return err
			}
		case isIdentStart(line, pos):
			end := scanIdent(line, pos)
			if end < len(line) && (line[end] == '"' || line[end] == '\'') &&
				stringPrefixes[strings.ToLower(line[start:end])] {
				var err error
				if pos, err = t.scanString(start, end); err != nil {
					return err
				}
				continue
			}
			kind := types.KindName
			if keywords[line[start:end]] {
				kind = types.KindKeyword
			}
			t.emit(kind, start, end)
			pos = end
		default:
			op := matchOperator(line[pos:])
			if op == "" {
				r, _ := utf8.DecodeRuneInString(line[pos:])
				return t.fail(pos, "invalid character %q", r)
			}
			switch op {
			case "(", "[", "{":
				t.parenlev++
			case ")", "]", "}":
				t.parenlev--
			}
			pos += len(op)
			t.emit(types.KindOp, start, pos)
		}
	}
	return nil
}

// scanString handles a literal whose prefix starts at start and whose
// opening quote is at q. It returns the byte index after the literal, or
// len(line) when the literal continues on the next line.
func (t *tokenizer) scanString(start, q int) (int, error) {
	line := t.line
	quote := line[q : q+1]
	if strings.HasPrefix(line[q:], strings.Repeat(quote, 3)) {
		quote = strings.Repeat(quote, 3)
	}
	end, found, continued := scanStringBody(line, q+len(quote), quote)
	if found {
		t.emit(types.KindString, start, end)
		return end, nil
	}
	if len(quote) == 1 && !continued {
		return 0, t.fail(start, "unterminated string literal")
	}
	t.str = &contString{start: t.pos(start), quote: quote}
	t.str.text.WriteString(line[start:])
	return len(line), nil
}

// scanStringBody looks for quote in s starting at from, honoring backslash
// escapes. Single-quoted literals stop at an unescaped line break.
// continued reports that s ended in an escaped line break.
func scanStringBody(s string, from int, quote string) (end int, found bool, continued bool) {
	for i := from; i < len(s); {
		switch {
		case s[i] == '\\':
			if i+1 < len(s) && (s[i+1] == '\n' || s[i+1] == '\r') {
				return len(s), false, true
			}
			i += 2
		case strings.HasPrefix(s[i:], quote):
			return i + len(quote), true, false
		case len(quote) == 1 && (s[i] == '\n' || s[i] == '\r'):
			return i, false, false
		default:
			i++
		}
	}
	return len(s), false, false
}

func (t *tokenizer) finish() error {
	t.lnum++
	t.lineStart = len(t.src)
	t.line = ""
	if t.str != nil {
		return types.Errorf(types.ErrLex, t.str.start, "EOF in multi-line string")
	}
	if t.cont {
		return t.fail(0, "EOF in multi-line statement")
	}
	if n := len(t.toks); n > 0 {
		// The last line had no terminator: close it with an empty break.
		last := t.toks[n-1]
		kind, open := types.KindNewline, true
		switch last.Kind {
		case types.KindNewline, types.KindNL, types.KindDedent, types.KindIndent:
			open = false
		case types.KindComment:
			if n == 1 || t.toks[n-2].End.Line != last.Start.Line || t.toks[n-2].Layout() {
				kind = types.KindNL
			}
		}
		if t.parenlev > 0 {
			kind = types.KindNL
		}
		if open {
			t.toks = append(t.toks, types.Token{Kind: kind, Start: last.End, End: last.End})
		}
	}
	for len(t.indents) > 1 {
		t.indents = t.indents[:len(t.indents)-1]
		t.emit(types.KindDedent, 0, 0)
	}
	t.emit(types.KindEndMarker, 0, 0)
	return nil
}

// lineBodyEnd returns the index of the line terminator in line, or
// len(line) when there is none.
func lineBodyEnd(line string) int {
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		return i
	}
	return len(line)
}

func matchOperator(s string) string {
	for _, op := range operators {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	return ""
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(s string, i int) bool {
	r, _ := utf8.DecodeRuneInString(s[i:])
	return r == '_' || unicode.IsLetter(r)
}

func scanIdent(s string, i int) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) &&
			!unicode.In(r, unicode.Mn, unicode.Mc, unicode.Pc) {
			break
		}
		i += size
	}
	return i
}

func scanNumber(s string, i int) int {
	if s[i] == '0' && i+1 < len(s) && strings.ContainsRune("xXbBoO", rune(s[i+1])) {
		i += 2
		for i < len(s) && (isHex(s[i]) || s[i] == '_') {
			i++
		}
		return i
	}
	i = scanDigits(s, i)
	if i < len(s) && s[i] == '.' {
		i = scanDigits(s, i+1)
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			i = scanDigits(s, j)
		}
	}
	if i < len(s) && (s[i] == 'j' || s[i] == 'J') {
		i++
	}
	return i
}

func scanDigits(s string, i int) int {
	for i < len(s) && (isDigit(s[i]) || s[i] == '_') {
		i++
	}
	return i
}

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
