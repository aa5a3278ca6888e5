// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package diagnostics maps a database-reported error position back onto the
// source script as a line, a column and a short excerpt around the error.
package diagnostics

import (
	"strings"
)

// contextRadius is how many lines are shown before and after the error line.
const contextRadius = 2

// ContextLine is one line of the source excerpt around an error.
type ContextLine struct {
	Number      int    `json:"number"`
	Text        string `json:"text"`
	IsErrorLine bool   `json:"is_error_line"`
}

// Diagnostic locates an error inside the source script.
type Diagnostic struct {
	// Line is the absolute 1-based source line of the error
	Line int `json:"line"`
	// Column is the 1-based character column within Line
	Column  int           `json:"column"`
	Context []ContextLine `json:"context"`
}

// Locate converts a character offset into text into an absolute position.
// offset counts characters, not bytes, and is clamped to the text bounds;
// startLine is the source line on which text begins.
func Locate(text string, offset, startLine int) Diagnostic {
	runes := []rune(text)
	if offset < 0 {
		offset = 0
	}
	if offset > len(runes) {
		offset = len(runes)
	}
	prefix := string(runes[:offset])

	local := strings.Count(prefix, "\n")
	column := offset
	if nl := strings.LastIndexByte(prefix, '\n'); nl >= 0 {
		column = len([]rune(prefix[nl+1:]))
	}

	d := Diagnostic{
		Line:   startLine + local,
		Column: column + 1,
	}

	lines := strings.Split(text, "\n")
	from := max(local-contextRadius, 0)
	to := min(local+contextRadius, len(lines)-1)
	for i := from; i <= to; i++ {
		d.Context = append(d.Context, ContextLine{
			Number:      startLine + i,
			Text:        strings.TrimRight(lines[i], "\r"),
			IsErrorLine: i == local,
		})
	}
	return d
}

// ErrorLine returns the context entry of the error line.
func (d Diagnostic) ErrorLine() (ContextLine, bool) {
	for _, l := range d.Context {
		if l.IsErrorLine {
			return l, true
		}
	}
	return ContextLine{}, false
}

// Pointer returns a caret line that sits under the error column when printed
// directly below the error line. Tabs before the column are kept so the
// caret lines up regardless of tab width.
func (d Diagnostic) Pointer() string {
	line, ok := d.ErrorLine()
	if !ok {
		return ""
	}
	var b strings.Builder
	n := 0
	for _, r := range line.Text {
		if n >= d.Column-1 {
			break
		}
		if r == '\t' {
			b.WriteRune('\t')
		} else {
			b.WriteByte(' ')
		}
		n++
	}
	for ; n < d.Column-1; n++ {
		b.WriteByte(' ')
	}
	b.WriteByte('^')
	return b.String()
}
