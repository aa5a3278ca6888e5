// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"os"
	"strings"

	apperr "sqlrun/cli/internal/errors"
)

// Environment variables consulted by Resolve, in priority order.
const (
	EnvDSN         = "SQLRUN_DSN"
	EnvDatabaseURL = "DATABASE_URL"
)

// Origin names where a resolved connection string came from.
type Origin string

const (
	OriginFlag        Origin = "--dsn flag"
	OriginEnv         Origin = EnvDSN
	OriginDatabaseURL Origin = EnvDatabaseURL
	OriginConfig      Origin = "config file"
	OriginKeychain    Origin = "keychain"
)

// Sources holds every place a connection string may come from.
// Keychain is consulted last and only when nothing else is set, since it may prompt.
type Sources struct {
	Flag     string
	Env      func(string) string
	Config   string
	Keychain func() (string, error)
}

// Resolved is the connection string chosen for a run.
type Resolved struct {
	DSN    string
	Origin Origin
}

// Resolve picks the first non-empty connection string in priority order:
// --dsn flag, SQLRUN_DSN, DATABASE_URL, config file, keychain.
// The chosen value is validated and normalized by Parse.
func Resolve(src Sources) (Resolved, error) {
	env := src.Env
	if env == nil {
		env = os.Getenv
	}

	candidates := []struct {
		origin Origin
		value  string
	}{
		{OriginFlag, src.Flag},
		{OriginEnv, env(EnvDSN)},
		{OriginDatabaseURL, env(EnvDatabaseURL)},
		{OriginConfig, src.Config},
	}
	for _, c := range candidates {
		if strings.TrimSpace(c.value) != "" {
			return resolved(c.origin, c.value)
		}
	}

	if src.Keychain != nil {
		stored, err := src.Keychain()
		if err == nil && strings.TrimSpace(stored) != "" {
			return resolved(OriginKeychain, stored)
		}
	}

	return Resolved{}, apperr.New(apperr.DSNMissing,
		"no database connection configured; pass --dsn, set "+EnvDSN+" or DATABASE_URL, or run 'sqlrun connect'")
}

func resolved(origin Origin, raw string) (Resolved, error) {
	normalized, err := Parse(raw)
	if err != nil {
		return Resolved{}, apperr.Wrap(apperr.ConnectFailed, "invalid connection string from "+string(origin), err)
	}
	return Resolved{DSN: normalized, Origin: origin}, nil
}
