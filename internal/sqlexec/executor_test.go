// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "sqlrun/cli/internal/errors"
	"sqlrun/cli/internal/script"
)

// ---- fakes ----

type response struct {
	tag       string
	rows      int
	err       error // returned by Exec/Query
	streamErr error // returned by rows.Err after iteration
	commitErr error
}

type fakeConn struct {
	responses map[string]response
	beginErr  error

	executed  []string
	begins    int
	commits   int
	rollbacks int
	closes    int
	deadlines int
}

func (c *fakeConn) Begin(ctx context.Context) (Tx, error) {
	if c.beginErr != nil {
		return nil, c.beginErr
	}
	c.begins++
	return &fakeTx{conn: c}, nil
}

func (c *fakeConn) Close(ctx context.Context) error {
	c.closes++
	return nil
}

type fakeTx struct {
	conn *fakeConn
	resp response
	done bool
}

func (t *fakeTx) record(ctx context.Context, sql string) response {
	t.conn.executed = append(t.conn.executed, sql)
	if _, ok := ctx.Deadline(); ok {
		t.conn.deadlines++
	}
	t.resp = t.conn.responses[sql]
	return t.resp
}

func (t *fakeTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	r := t.record(ctx, sql)
	if r.err != nil {
		return pgconn.CommandTag{}, r.err
	}
	return pgconn.NewCommandTag(r.tag), nil
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	r := t.record(ctx, sql)
	if r.err != nil {
		return nil, r.err
	}
	return &fakeRows{left: r.rows, err: r.streamErr}, nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	if t.resp.commitErr != nil {
		return t.resp.commitErr
	}
	t.conn.commits++
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.conn.rollbacks++
	return nil
}

type fakeRows struct {
	left   int
	err    error
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Scan(dest ...any) error                       { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }
func (r *fakeRows) Next() bool {
	if r.closed || r.left == 0 {
		return false
	}
	r.left--
	return true
}

func dialer(c *fakeConn) DialFunc {
	return func(ctx context.Context) (Conn, error) { return c, nil }
}

// ---- tests ----

func TestRun_CreateInsertSelect(t *testing.T) {
	stmts := script.Split("CREATE TABLE t(id int); INSERT INTO t VALUES (1); SELECT * FROM t;")
	require.Len(t, stmts, 3)

	conn := &fakeConn{responses: map[string]response{
		"CREATE TABLE t(id int);":   {tag: "CREATE TABLE"},
		"INSERT INTO t VALUES (1);": {tag: "INSERT 0 1"},
		"SELECT * FROM t;":          {rows: 1},
	}}

	results := New(nil).Run(context.Background(), conn, stmts, Policy{StopOnError: true})
	require.Len(t, results, 3)

	assert.Equal(t, script.Definition, results[0].Category)
	assert.True(t, results[0].Success)
	require.NotNil(t, results[0].RowsAffected)
	assert.Nil(t, results[0].RowsReturned)
	assert.Equal(t, "CREATE TABLE", results[0].Message)

	assert.Equal(t, script.Mutation, results[1].Category)
	assert.True(t, results[1].Success)
	require.NotNil(t, results[1].RowsAffected)
	assert.EqualValues(t, 1, *results[1].RowsAffected)
	assert.Equal(t, "INSERT 0 1", results[1].Message)

	assert.Equal(t, script.Query, results[2].Category)
	assert.True(t, results[2].Success)
	require.NotNil(t, results[2].RowsReturned)
	assert.EqualValues(t, 1, *results[2].RowsReturned)
	assert.Nil(t, results[2].RowsAffected)
	assert.Equal(t, "1 row returned", results[2].Message)

	for _, r := range results {
		assert.Empty(t, r.ErrorMessage)
		assert.GreaterOrEqual(t, r.Duration, time.Duration(0))
	}
	assert.Equal(t, 3, conn.begins)
	assert.Equal(t, 3, conn.commits)
	assert.Equal(t, 0, conn.rollbacks)
}

func TestRun_StopOnErrorHalts(t *testing.T) {
	stmts := script.Split("SELECT 1;\nSELECT *\nFROM bad_table;\nSELECT 3;")
	conn := &fakeConn{responses: map[string]response{
		"SELECT 1;":                 {rows: 1},
		"SELECT *\nFROM bad_table;": {err: &pgconn.PgError{Severity: "ERROR", Code: "42P01", Message: `relation "bad_table" does not exist`, Position: 15}},
	}}

	results := New(nil).Run(context.Background(), conn, stmts, Policy{StopOnError: true})
	require.Len(t, results, 2)
	assert.Equal(t, []string{"SELECT 1;", "SELECT *\nFROM bad_table;"}, conn.executed)

	failed := results[1]
	assert.False(t, failed.Success)
	assert.Empty(t, failed.Message)
	assert.Contains(t, failed.ErrorMessage, `relation "bad_table" does not exist`)
	assert.Equal(t, "42P01", failed.SQLState)
	require.NotNil(t, failed.ErrorOffset)
	assert.Equal(t, 14, *failed.ErrorOffset)
	assert.Nil(t, failed.RowsReturned)
	assert.Equal(t, 1, conn.rollbacks)

	d, ok := failed.Diagnostic()
	require.True(t, ok)
	assert.Equal(t, 3, d.Line)
	assert.Equal(t, 6, d.Column)
}

func TestRun_ContinueOnError(t *testing.T) {
	stmts := script.Split("INSERT INTO t VALUES (1); INSERT INTO missing VALUES (1); DELETE FROM t;")
	conn := &fakeConn{responses: map[string]response{
		"INSERT INTO t VALUES (1);":       {tag: "INSERT 0 1"},
		"INSERT INTO missing VALUES (1);": {err: errors.New("boom")},
		"DELETE FROM t;":                  {tag: "DELETE 1"},
	}}

	results := New(nil).Run(context.Background(), conn, stmts, Policy{})
	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.True(t, results[2].Success)

	// Failures that are not server errors carry no position.
	assert.Equal(t, "boom", results[1].ErrorMessage)
	assert.Nil(t, results[1].ErrorOffset)
	_, ok := results[1].Diagnostic()
	assert.False(t, ok)

	assert.Equal(t, 2, conn.commits)
	assert.Equal(t, 1, conn.rollbacks)
}

func TestRun_OtherStatements(t *testing.T) {
	stmts := script.Split("VACUUM; LISTEN ch;")
	conn := &fakeConn{responses: map[string]response{
		"VACUUM;": {tag: "VACUUM"},
	}}

	results := New(nil).Run(context.Background(), conn, stmts, Policy{StopOnError: true})
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, script.Other, r.Category)
		assert.True(t, r.Success)
		assert.Nil(t, r.RowsAffected)
		assert.Nil(t, r.RowsReturned)
	}
	assert.Equal(t, "VACUUM", results[0].Message)
	assert.Equal(t, "OK", results[1].Message)
}

func TestRun_QueryStreamError(t *testing.T) {
	stmts := script.Split("SELECT 1/0 FROM t;")
	conn := &fakeConn{responses: map[string]response{
		"SELECT 1/0 FROM t;": {rows: 2, streamErr: &pgconn.PgError{Code: "22012", Message: "division by zero"}},
	}}

	results := New(nil).Run(context.Background(), conn, stmts, Policy{StopOnError: true})
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Nil(t, results[0].RowsReturned)
	assert.Equal(t, "22012", results[0].SQLState)
	assert.Nil(t, results[0].ErrorOffset)
	assert.Equal(t, 1, conn.rollbacks)
}

func TestRun_CommitFailure(t *testing.T) {
	stmts := script.Split("UPDATE t SET a = 1;")
	conn := &fakeConn{responses: map[string]response{
		"UPDATE t SET a = 1;": {tag: "UPDATE 3", commitErr: &pgconn.PgError{Code: "40001", Message: "could not serialize access"}},
	}}

	results := New(nil).Run(context.Background(), conn, stmts, Policy{StopOnError: true})
	require.Len(t, results, 1)
	r := results[0]
	assert.False(t, r.Success)
	assert.Nil(t, r.RowsAffected)
	assert.Empty(t, r.Message)
	assert.Contains(t, r.ErrorMessage, "commit failed")
	assert.Equal(t, "40001", r.SQLState)
}

func TestRun_BeginFailure(t *testing.T) {
	conn := &fakeConn{beginErr: errors.New("conn closed")}

	results := New(nil).Run(context.Background(), conn, script.Split("SELECT 1; SELECT 2;"), Policy{})
	require.Len(t, results, 2)
	for _, r := range results {
		assert.False(t, r.Success)
		assert.Equal(t, "begin failed: conn closed", r.ErrorMessage)
	}
}

func TestRun_CancelledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conn := &fakeConn{}
	results := New(nil).Run(ctx, conn, script.Split("SELECT 1; SELECT 2;"), Policy{})
	assert.Empty(t, results)
	assert.Equal(t, 0, conn.begins)
}

func TestRun_StatementTimeoutSetsDeadline(t *testing.T) {
	conn := &fakeConn{responses: map[string]response{"SELECT 1;": {rows: 1}}}

	e := New(nil)
	e.StatementTimeout = time.Minute
	results := e.Run(context.Background(), conn, script.Split("SELECT 1;"), Policy{})
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, 1, conn.deadlines)

	conn.deadlines = 0
	New(nil).Run(context.Background(), conn, script.Split("SELECT 1;"), Policy{})
	assert.Equal(t, 0, conn.deadlines)
}

func TestRun_Hooks(t *testing.T) {
	conn := &fakeConn{responses: map[string]response{"SELECT 1;": {rows: 1}}}

	var started []int
	var finished []bool
	e := New(nil)
	e.OnStart = func(s script.Statement) { started = append(started, s.Index) }
	e.OnResult = func(r ExecutionResult) { finished = append(finished, r.Success) }

	e.Run(context.Background(), conn, script.Split("SELECT 1; SELECT 2;"), Policy{})
	assert.Equal(t, []int{1, 2}, started)
	assert.Equal(t, []bool{true, true}, finished)
}

func TestRunWith_DialFailure(t *testing.T) {
	dial := func(ctx context.Context) (Conn, error) { return nil, errors.New("password authentication failed") }

	results, err := New(nil).RunWith(context.Background(), dial, script.Split("SELECT 1;"), Policy{})
	require.Error(t, err)
	assert.Nil(t, results)
	assert.True(t, apperr.Is(err, apperr.ConnectFailed))
	assert.Contains(t, err.Error(), "password authentication failed")
}

func TestRunWith_ClosesConnection(t *testing.T) {
	t.Run("after normal completion", func(t *testing.T) {
		conn := &fakeConn{responses: map[string]response{"SELECT 1;": {rows: 1}}}
		results, err := New(nil).RunWith(context.Background(), dialer(conn), script.Split("SELECT 1;"), Policy{})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, 1, conn.closes)
	})

	t.Run("after early halt", func(t *testing.T) {
		conn := &fakeConn{responses: map[string]response{"SELECT 1;": {err: errors.New("x")}}}
		results, err := New(nil).RunWith(context.Background(), dialer(conn), script.Split("SELECT 1; SELECT 2;"), Policy{StopOnError: true})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, 1, conn.closes)
	})

	t.Run("after a panic", func(t *testing.T) {
		conn := &fakeConn{responses: map[string]response{"SELECT 1;": {rows: 1}}}
		e := New(nil)
		e.OnResult = func(ExecutionResult) { panic("renderer exploded") }

		assert.Panics(t, func() {
			_, _ = e.RunWith(context.Background(), dialer(conn), script.Split("SELECT 1;"), Policy{})
		})
		assert.Equal(t, 1, conn.closes)
		assert.Equal(t, 1, conn.commits)
	})
}

func TestExecutionResult_MarshalJSON(t *testing.T) {
	n := int64(2)
	r := ExecutionResult{
		Statement:    script.Statement{Text: "DELETE FROM t;", Index: 4, StartLine: 9},
		Category:     script.Mutation,
		Success:      true,
		Duration:     1500 * time.Millisecond,
		RowsAffected: &n,
		Message:      "DELETE 2",
	}

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"statement": {"text": "DELETE FROM t;", "index": 4, "start_line": 9},
		"category": "mutation",
		"success": true,
		"rows_affected": 2,
		"message": "DELETE 2",
		"duration_seconds": 1.5
	}`, string(b))
}
