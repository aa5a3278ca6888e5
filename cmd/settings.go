// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"

	"sqlrun/cli/internal/config"
	"sqlrun/cli/internal/dsn"
	"sqlrun/cli/internal/keychain"
	"sqlrun/cli/internal/logging"

	"github.com/pterm/pterm"
)

// settings bundles what every database command needs before it starts.
type settings struct {
	cfg config.Config
	log *pterm.Logger
}

// loadSettings reads the config file selected by --config and builds the logger.
// verbose forces debug logging regardless of the configured level.
func loadSettings(verbose bool) (settings, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return settings{}, err
	}
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return settings{cfg: cfg, log: logging.New(level, os.Stderr)}, nil
}

// resolveDSN picks the connection string for this invocation.
func (s settings) resolveDSN(flag string) (dsn.Resolved, error) {
	resolved, err := dsn.Resolve(dsn.Sources{
		Flag:     flag,
		Config:   s.cfg.DSN,
		Keychain: keychain.Lookup,
	})
	if err != nil {
		return resolved, err
	}
	s.log.Debug("resolved connection string", s.log.Args("origin", string(resolved.Origin), "dsn", logging.Mask(resolved.DSN)))
	return resolved, nil
}
