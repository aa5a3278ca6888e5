// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"encoding/json"
	"errors"
	"time"

	"sqlrun/cli/internal/diagnostics"
	"sqlrun/cli/internal/script"

	"github.com/jackc/pgx/v5/pgconn"
)

// ExecutionResult is the outcome of running one statement.
// Exactly one of Message and ErrorMessage is set.
type ExecutionResult struct {
	Statement script.Statement `json:"statement"`
	Category  script.Category  `json:"category"`
	Success   bool             `json:"success"`
	Duration  time.Duration    `json:"-"`
	// RowsReturned is set for successful queries only
	RowsReturned *int64 `json:"rows_returned,omitempty"`
	// RowsAffected is set for successful mutations and definitions only
	RowsAffected *int64 `json:"rows_affected,omitempty"`
	Message      string `json:"message,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	// ErrorOffset is the 0-based character offset into Statement.Text reported
	// by the server, when it reported one
	ErrorOffset *int   `json:"error_offset,omitempty"`
	SQLState    string `json:"sqlstate,omitempty"`
	Detail      string `json:"detail,omitempty"`
	Hint        string `json:"hint,omitempty"`
}

// MarshalJSON adds the duration in seconds as duration_seconds.
func (r ExecutionResult) MarshalJSON() ([]byte, error) {
	type alias ExecutionResult
	return json.Marshal(struct {
		alias
		DurationSeconds float64 `json:"duration_seconds"`
	}{alias(r), r.Duration.Seconds()})
}

// Diagnostic maps the reported error offset onto the source script.
// ok is false when the result carries no offset.
func (r ExecutionResult) Diagnostic() (d diagnostics.Diagnostic, ok bool) {
	if r.Success || r.ErrorOffset == nil {
		return d, false
	}
	return diagnostics.Locate(r.Statement.Text, *r.ErrorOffset, r.Statement.StartLine), true
}

// fail records err as the statement's failure. Server errors contribute
// their position, SQLSTATE, detail and hint; other errors only their text.
func (r *ExecutionResult) fail(err error) {
	r.Success = false
	r.RowsReturned = nil
	r.RowsAffected = nil
	r.Message = ""
	r.ErrorMessage = err.Error()

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return
	}
	r.SQLState = pgErr.Code
	r.Detail = pgErr.Detail
	r.Hint = pgErr.Hint
	if pgErr.Position > 0 {
		offset := int(pgErr.Position) - 1
		r.ErrorOffset = &offset
	}
}
