// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package script

import "strings"

// scanMode is the lexical context the splitter is currently in.
type scanMode int

const (
	modeNone scanMode = iota
	modeLineComment
	modeBlockComment
	modeSingleQuote
	modeDoubleQuote
	modeDollarQuote
)

// scanner holds the state of a single Split call.
type scanner struct {
	src  string
	mode scanMode
	// escapes is set inside E'...' strings, where a backslash escapes the next byte
	escapes bool
	// dollarTag is the opening delimiter of the current dollar-quoted body, e.g. "$fn$"
	dollarTag string
	line      int
	// start is the byte offset of the first significant character of the
	// statement being built, or -1 when nothing significant was seen yet
	start     int
	startLine int
	stmts     []Statement
}

// Split breaks SQL text into statements on top-level semicolons.
//
// Semicolons inside single-quoted strings, double-quoted identifiers,
// dollar-quoted bodies, "--" line comments and "/* */" block comments never
// end a statement. Comments and whitespace preceding a statement are dropped;
// everything from the statement's first significant character up to and
// including its terminating semicolon is kept verbatim, so the statement text
// is an exact span of the source. Unterminated strings or comments at end of
// input are not an error: whatever was accumulated is emitted as-is.
func Split(text string) []Statement {
	s := &scanner{src: text, line: 1, start: -1}
	for i := 0; i < len(text); i++ {
		i = s.step(i)
	}
	if s.start >= 0 {
		s.emit(len(text))
	}
	return s.stmts
}

// step consumes the byte at i (and any bytes that belong to the same token)
// and returns the offset of the last byte consumed.
func (s *scanner) step(i int) int {
	c := s.src[i]
	if c == '\n' {
		s.line++
	}

	switch s.mode {
	case modeLineComment:
		if c == '\n' {
			s.mode = modeNone
		}
		return i
	case modeBlockComment:
		if c == '*' && s.peek(i+1) == '/' {
			s.mode = modeNone
			return i + 1
		}
		return i
	case modeSingleQuote, modeDoubleQuote:
		quote := byte('\'')
		if s.mode == modeDoubleQuote {
			quote = '"'
		}
		if s.escapes && c == '\\' {
			return s.skip(i + 1)
		}
		if c == quote {
			if s.peek(i+1) == quote {
				return i + 1
			}
			s.mode = modeNone
			s.escapes = false
		}
		return i
	case modeDollarQuote:
		if c == '$' && strings.HasPrefix(s.src[i:], s.dollarTag) {
			end := i + len(s.dollarTag) - 1
			s.mode = modeNone
			s.dollarTag = ""
			return end
		}
		return i
	}

	switch {
	case c == '-' && s.peek(i+1) == '-':
		s.mode = modeLineComment
		return i + 1
	case c == '/' && s.peek(i+1) == '*':
		s.mode = modeBlockComment
		return i + 1
	case isSpace(c):
		return i
	case c == ';':
		if s.start >= 0 {
			s.emit(i + 1)
		}
		return i
	}

	s.mark(i)
	switch c {
	case '\'':
		s.mode = modeSingleQuote
		s.escapes = s.hasEscapePrefix(i)
	case '"':
		s.mode = modeDoubleQuote
	case '$':
		if tag := s.dollarTagAt(i); tag != "" {
			s.mode = modeDollarQuote
			s.dollarTag = tag
			return i + len(tag) - 1
		}
	}
	return i
}

// mark records i as the start of the current statement if none is set yet.
func (s *scanner) mark(i int) {
	if s.start < 0 {
		s.start = i
		s.startLine = s.line
	}
}

// emit closes the current statement at byte offset end (exclusive).
func (s *scanner) emit(end int) {
	text := strings.TrimSpace(s.src[s.start:end])
	if text != "" {
		s.stmts = append(s.stmts, Statement{
			Text:      text,
			Index:     len(s.stmts) + 1,
			StartLine: s.startLine,
		})
	}
	s.start = -1
}

// skip consumes the escaped byte at i, keeping the line counter in sync.
func (s *scanner) skip(i int) int {
	if i < len(s.src) && s.src[i] == '\n' {
		s.line++
	}
	return i
}

func (s *scanner) peek(i int) byte {
	if i < len(s.src) {
		return s.src[i]
	}
	return 0
}

// hasEscapePrefix reports whether the quote at i opens an E'...' string.
func (s *scanner) hasEscapePrefix(i int) bool {
	if i == 0 {
		return false
	}
	if p := s.src[i-1]; p != 'E' && p != 'e' {
		return false
	}
	return i == 1 || !isIdentChar(s.src[i-2])
}

// dollarTagAt returns the dollar-quote delimiter starting at i ("$$" or
// "$tag$"), or "" when the '$' at i does not open one. Positional parameters
// such as $1 and identifiers containing '$' are not delimiters.
func (s *scanner) dollarTagAt(i int) string {
	if i > 0 && isIdentChar(s.src[i-1]) {
		return ""
	}
	j := i + 1
	if j < len(s.src) && s.src[j] >= '0' && s.src[j] <= '9' {
		return ""
	}
	for j < len(s.src) && isIdentChar(s.src[j]) {
		j++
	}
	if j < len(s.src) && s.src[j] == '$' {
		return s.src[i : j+1]
	}
	return ""
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isIdentChar(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_'
}
