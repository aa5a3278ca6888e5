// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages, so the CLI can tell a run that never reached the
// database apart from a run whose statements failed.
//
// Per-statement database failures are never reported through this package; they are
// captured in execution results. E values are reserved for faults that make
// continuing a run meaningless.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// ConnectFailed indicates the database could not be reached or authenticated.
	ConnectFailed Kind = "connect_failed"
	// ScriptUnreadable indicates the SQL script could not be read or decoded.
	ScriptUnreadable Kind = "script_unreadable"
	// DSNMissing indicates no connection string was configured anywhere.
	DSNMissing Kind = "dsn_missing"
	// ConfigInvalid indicates the configuration file could not be loaded.
	ConfigInvalid Kind = "config_invalid"
	// StatementsFailed indicates a run finished without overall success.
	StatementsFailed Kind = "statements_failed"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// Is reports whether err, or any error it wraps, is an *E of the given kind.
func Is(err error, kind Kind) bool {
	var e *E
	return stderrors.As(err, &e) && e.Kind == kind
}
