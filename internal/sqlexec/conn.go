// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Conn is the database connection the Executor needs: something that can open
// a unit of work and be closed.
type Conn interface {
	Begin(ctx context.Context) (Tx, error)
	Close(ctx context.Context) error
}

// Tx is a single unit of work. pgx.Tx satisfies it.
type Tx interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DialFunc opens the connection for a run.
type DialFunc func(ctx context.Context) (Conn, error)

// PgConn adapts a *pgx.Conn to Conn.
type PgConn struct {
	conn *pgx.Conn
}

// Dial returns a DialFunc that connects to the PostgreSQL server at dsn.
// A single connection is used for the whole run; there is no pooling.
func Dial(dsn string) DialFunc {
	return func(ctx context.Context) (Conn, error) {
		cfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, err
		}
		conn, err := pgx.ConnectConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &PgConn{conn: conn}, nil
	}
}

func (c *PgConn) Begin(ctx context.Context) (Tx, error) {
	tx, err := c.conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (c *PgConn) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// Ping verifies the server answers on this connection.
func (c *PgConn) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

// Verify connects to dsn, pings the server and disconnects.
func Verify(ctx context.Context, dsn string) error {
	conn, err := Dial(dsn)(ctx)
	if err != nil {
		return err
	}
	pc := conn.(*PgConn)
	defer pc.Close(context.WithoutCancel(ctx))
	return pc.Ping(ctx)
}
