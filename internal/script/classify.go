// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package script

import (
	"strings"
	"unicode"
)

// Category is the coarse kind of a statement, used to decide how its
// execution result is read.
type Category int

const (
	// Other covers every statement without a recognized leading keyword.
	Other Category = iota
	// Query statements return rows (SELECT, WITH).
	Query
	// Mutation statements change rows (INSERT, UPDATE, DELETE).
	Mutation
	// Definition statements change schema (CREATE, ALTER, DROP).
	Definition
)

var keywordCategories = map[string]Category{
	"SELECT": Query,
	"WITH":   Query,
	"INSERT": Mutation,
	"UPDATE": Mutation,
	"DELETE": Mutation,
	"CREATE": Definition,
	"ALTER":  Definition,
	"DROP":   Definition,
}

// Classify returns the category of a statement from its first keyword.
// Matching ignores case and leading whitespace; empty text is Other.
func Classify(text string) Category {
	return keywordCategories[strings.ToUpper(Keyword(text))]
}

// Keyword returns the leading word of a statement as written.
func Keyword(text string) string {
	text = strings.TrimLeftFunc(text, unicode.IsSpace)
	end := strings.IndexFunc(text, func(r rune) bool {
		return r > unicode.MaxASCII || !unicode.IsLetter(r)
	})
	if end < 0 {
		return text
	}
	return text[:end]
}

func (c Category) String() string {
	switch c {
	case Query:
		return "query"
	case Mutation:
		return "mutation"
	case Definition:
		return "definition"
	default:
		return "other"
	}
}

// MarshalText implements encoding.TextMarshaler so categories read well in JSON.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
