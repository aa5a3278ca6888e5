// Package config loads and stores CLI configuration in the XDG config dir.
// Settings come from config.yaml, overlaid by SQLRUN_* environment variables.
// A DSN may be kept here, but `sqlrun connect` stores it in the OS keychain instead.
package config

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	apperr "sqlrun/cli/internal/errors"
	"sqlrun/cli/internal/logging"
	"sqlrun/cli/internal/xdg"
)

// EnvPrefix prefixes every environment override, e.g. SQLRUN_LOG_LEVEL.
const EnvPrefix = "SQLRUN"

// Config holds CLI settings.
type Config struct {
	LogLevel         string        `mapstructure:"log_level"`
	StopOnError      bool          `mapstructure:"stop_on_error"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
	DSN              string        `mapstructure:"dsn"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{LogLevel: "info", StopOnError: true}
}

// Path returns the default config file location.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func newViper(path string) *viper.Viper {
	d := Default()
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetConfigPermissions(0o600)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// defaults register every key so env overrides reach Unmarshal
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("stop_on_error", d.StopOnError)
	v.SetDefault("statement_timeout", d.StatementTimeout)
	v.SetDefault("dsn", d.DSN)
	return v
}

// Load reads configuration from path, or from the default location when path is empty.
// A missing default file yields defaults; a missing explicit file is an error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return Config{}, apperr.Wrap(apperr.ConfigInvalid, "cannot resolve config directory", err)
		}
		path = p
	}

	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, apperr.Wrap(apperr.ConfigInvalid, "read config "+path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, apperr.Wrap(apperr.ConfigInvalid, "unmarshal config", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, apperr.Wrap(apperr.ConfigInvalid, path, err)
	}
	return c, nil
}

// Validate rejects settings the CLI cannot act on.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.StatementTimeout < 0 {
		return errors.New("statement_timeout must not be negative")
	}
	return nil
}

// Save writes configuration to path, or to the default location when path is empty.
// The file is written with 0600 permissions.
func Save(path string, c Config) error {
	if path == "" {
		p, err := Path()
		if err != nil {
			return err
		}
		path = p
	}
	v := viper.New()
	v.SetConfigPermissions(0o600)
	v.Set("log_level", c.LogLevel)
	v.Set("stop_on_error", c.StopOnError)
	v.Set("statement_timeout", c.StatementTimeout.String())
	v.Set("dsn", c.DSN)
	return v.WriteConfigAs(path)
}
