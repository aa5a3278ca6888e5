// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dsn parses PostgreSQL connection strings and decides which one a run uses.
// URL forms are normalized so that passwords with unescaped special characters still
// reach the driver intact; keyword/value forms are validated and passed through.
package dsn

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"strings"
)

// DefaultPort is assumed when a URL carries no port.
const DefaultPort = "5432"

// Info contains parsed information from a connection string
type Info struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Params   map[string]string

	// keyword is the original keyword/value string, empty for URL forms
	keyword string
}

// String returns the normalized connection string.
func (i *Info) String() string {
	if i.keyword != "" {
		return i.keyword
	}
	return i.url().String()
}

// Redacted returns the connection string with the password replaced.
func (i *Info) Redacted() string {
	if i.keyword != "" {
		return fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=***", i.Host, i.Port, i.User, i.Database)
	}
	return i.url().Redacted()
}

func (i *Info) url() *url.URL {
	u := &url.URL{
		Scheme: "postgresql",
		Host:   net.JoinHostPort(i.Host, i.Port),
		Path:   "/" + i.Database,
	}
	if i.Host == "" {
		u.Host = ""
	}
	switch {
	case i.User != "" && i.Password != "":
		u.User = url.UserPassword(i.User, i.Password)
	case i.User != "":
		u.User = url.User(i.User)
	}
	if len(i.Params) > 0 {
		q := url.Values{}
		keys := make([]string, 0, len(i.Params))
		for k := range i.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			q.Set(k, i.Params[k])
		}
		u.RawQuery = q.Encode()
	}
	return u
}

// ParseError represents an error that occurred during connection string parsing.
// The offending string is kept for callers but never printed.
type ParseError struct {
	DSN    string
	Reason string
	Hint   string
}

func (e *ParseError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("invalid DSN format: %s\nHint: %s", e.Reason, e.Hint)
	}
	return fmt.Sprintf("invalid DSN format: %s", e.Reason)
}

func newParseError(dsn, reason, hint string) *ParseError {
	return &ParseError{DSN: dsn, Reason: reason, Hint: hint}
}

func isURL(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}
