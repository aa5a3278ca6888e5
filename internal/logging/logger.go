// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
)

var levels = map[string]pterm.LogLevel{
	"trace":    pterm.LogLevelTrace,
	"debug":    pterm.LogLevelDebug,
	"info":     pterm.LogLevelInfo,
	"warn":     pterm.LogLevelWarn,
	"warning":  pterm.LogLevelWarn,
	"error":    pterm.LogLevelError,
	"off":      pterm.LogLevelDisabled,
	"disabled": pterm.LogLevelDisabled,
}

// ParseLevel maps a config log level name to a pterm level.
func ParseLevel(name string) (pterm.LogLevel, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return pterm.LogLevelInfo, nil
	}
	lvl, ok := levels[name]
	if !ok {
		return pterm.LogLevelInfo, fmt.Errorf("unknown log level %q", name)
	}
	return lvl, nil
}

// New builds the CLI logger writing to w. Unknown level names fall back to info.
func New(level string, w io.Writer) *pterm.Logger {
	lvl, _ := ParseLevel(level)
	return pterm.DefaultLogger.
		WithLevel(lvl).
		WithWriter(w).
		WithTime(false)
}
