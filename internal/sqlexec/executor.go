// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package sqlexec provides a sequential SQL execution engine over a single pgx connection.
// It runs the statements of a script one after another, each inside its own transaction,
// and captures a structured result per statement instead of returning errors.
//
// Key features include:
//   - One unit of work per statement: commit on success, rollback on failure
//   - Row counts for queries and affected-row counts for writes
//   - Error position, SQLSTATE, detail and hint from PostgreSQL server errors
//   - Stop-on-error or continue-on-error policies
//   - Guaranteed connection release on every exit path
//
// Statements are never run concurrently: later statements usually depend on the
// effects of earlier ones. A failing statement never undoes statements that already
// committed.
package sqlexec

import (
	"context"
	"fmt"
	"time"

	apperr "sqlrun/cli/internal/errors"
	"sqlrun/cli/internal/script"

	"github.com/pterm/pterm"
)

// Policy controls how a run reacts to failing statements.
type Policy struct {
	// StopOnError halts the run after the first failed statement.
	StopOnError bool
}

// Executor runs statements sequentially against one connection.
type Executor struct {
	// StatementTimeout bounds each statement when non-zero.
	StatementTimeout time.Duration
	// OnStart is called before a statement is submitted.
	OnStart func(script.Statement)
	// OnResult is called with each result as soon as it is known.
	OnResult func(ExecutionResult)

	log *pterm.Logger
}

// New creates an Executor that reports debug events to log.
// A nil logger disables logging.
func New(log *pterm.Logger) *Executor {
	if log == nil {
		log = pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled)
	}
	return &Executor{log: log}
}

// RunWith dials a connection, runs the statements on it and releases the
// connection whether the run completes, halts early or panics.
// A dial failure is returned as a ConnectFailed error and no statement runs.
func (e *Executor) RunWith(ctx context.Context, dial DialFunc, stmts []script.Statement, policy Policy) ([]ExecutionResult, error) {
	conn, err := dial(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.ConnectFailed, "cannot connect to database", err)
	}
	defer func() {
		if err := conn.Close(context.WithoutCancel(ctx)); err != nil {
			e.log.Debug("closing connection failed", e.log.Args("error", err))
		}
	}()

	return e.Run(ctx, conn, stmts, policy), nil
}

// Run executes stmts in order on conn and returns one result per attempted
// statement. When the policy stops on error, or ctx is cancelled, the
// returned slice is shorter than stmts.
func (e *Executor) Run(ctx context.Context, conn Conn, stmts []script.Statement, policy Policy) []ExecutionResult {
	results := make([]ExecutionResult, 0, len(stmts))
	for _, stmt := range stmts {
		if ctx.Err() != nil {
			e.log.Debug("run cancelled", e.log.Args("remaining", len(stmts)-len(results)))
			break
		}
		if e.OnStart != nil {
			e.OnStart(stmt)
		}

		res := e.execute(ctx, conn, stmt)
		results = append(results, res)
		if e.OnResult != nil {
			e.OnResult(res)
		}

		if !res.Success && policy.StopOnError {
			e.log.Debug("halting after failed statement", e.log.Args("index", stmt.Index, "remaining", len(stmts)-len(results)))
			break
		}
	}
	return results
}

// execute runs a single statement and times it.
func (e *Executor) execute(ctx context.Context, conn Conn, stmt script.Statement) ExecutionResult {
	res := ExecutionResult{
		Statement: stmt,
		Category:  script.Classify(stmt.Text),
	}
	if e.StatementTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.StatementTimeout)
		defer cancel()
	}

	e.log.Debug("executing statement", e.log.Args("index", stmt.Index, "line", stmt.StartLine, "category", res.Category))
	start := time.Now()
	err := e.runUnit(ctx, conn, &res)
	res.Duration = time.Since(start)

	if err != nil {
		res.fail(err)
		e.log.Debug("statement failed", e.log.Args("index", stmt.Index, "error", res.ErrorMessage, "duration", res.Duration))
		return res
	}
	res.Success = true
	e.log.Debug("statement succeeded", e.log.Args("index", stmt.Index, "message", res.Message, "duration", res.Duration))
	return res
}

// runUnit wraps the statement in its own transaction. The deferred rollback
// is a no-op once the transaction has committed.
func (e *Executor) runUnit(ctx context.Context, conn Conn, res *ExecutionResult) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin failed: %w", err)
	}
	defer func() {
		// The statement deadline must not prevent the rollback itself.
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	sql := res.Statement.Text
	if res.Category == script.Query {
		n, err := countRows(ctx, tx, sql)
		if err != nil {
			return err
		}
		res.RowsReturned = &n
		res.Message = fmt.Sprintf("%d %s returned", n, rowWord(n))
	} else {
		tag, err := tx.Exec(ctx, sql)
		if err != nil {
			return err
		}
		if res.Category != script.Other {
			n := tag.RowsAffected()
			res.RowsAffected = &n
		}
		res.Message = tag.String()
		if res.Message == "" {
			res.Message = "OK"
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}
	return nil
}

// countRows drains a query and counts its rows. Server errors raised while
// streaming rows are reported through rows.Err.
func countRows(ctx context.Context, tx Tx, sql string) (int64, error) {
	rows, err := tx.Query(ctx, sql)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var n int64
	for rows.Next() {
		n++
	}
	return n, rows.Err()
}

func rowWord(n int64) string {
	if n == 1 {
		return "row"
	}
	return "rows"
}
