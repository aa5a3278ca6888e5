// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package script turns SQL script text into executable statements.
// It owns the script source value, the statement splitter and the coarse
// statement classifier. Nothing in this package performs database I/O and
// none of its functions fail on malformed SQL: malformed input only ever
// produces a different split, never an error.
package script

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	apperr "sqlrun/cli/internal/errors"
)

// StdinPath is the path that makes Load read the script from standard input.
const StdinPath = "-"

// Statement is one executable SQL command extracted from a script.
type Statement struct {
	// Text is the trimmed statement text, including its terminating ';' when present
	Text string `json:"text"`
	// Index is the 1-based position of the statement within the script
	Index int `json:"index"`
	// StartLine is the 1-based source line of the statement's first character
	StartLine int `json:"start_line"`
}

// SourceScript is the immutable input of a run.
type SourceScript struct {
	Path string
	Text string
}

// FromString builds a SourceScript from in-memory text.
func FromString(origin, text string) SourceScript {
	return SourceScript{Path: origin, Text: text}
}

// Load reads a script from disk, or from stdin when path is "-".
// The content must be valid UTF-8; a leading byte order mark is dropped.
func Load(path string) (SourceScript, error) {
	var (
		data []byte
		err  error
	)
	if path == StdinPath {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return SourceScript{}, apperr.Wrap(apperr.ScriptUnreadable, fmt.Sprintf("cannot read %s", path), err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return SourceScript{}, apperr.New(apperr.ScriptUnreadable, fmt.Sprintf("%s is not valid UTF-8", path))
	}
	return SourceScript{Path: path, Text: string(data)}, nil
}

// Statements splits the script text.
func (s SourceScript) Statements() []Statement {
	return Split(s.Text)
}
