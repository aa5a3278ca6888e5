// Package xdg resolves the XDG Base Directory config path for sqlrun.
// It falls back to the traditional ~/.config location when XDG_CONFIG_HOME
// is not set and keeps the directory private since it may hold a DSN.
package xdg

import (
	"os"
	"path/filepath"
)

// App is the directory name used under the XDG base directories.
const App = "sqlrun"

// ConfigDir returns the XDG config directory for sqlrun.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.config/sqlrun when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	dir := filepath.Join(base, App)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
