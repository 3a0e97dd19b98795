package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the read side of a connection, satisfied by *pgx.Conn.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Executor is the write side of a connection, satisfied by *pgx.Conn.
type Executor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// DB is everything the reconciler needs from a connection.
type DB interface {
	Querier
	Executor
}

// Connect opens a single connection and pings it. The caller closes it.
func Connect(ctx context.Context, connStr string) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return conn, nil
}

// SchemaExists reports whether namespace exists in the connected database.
func SchemaExists(ctx context.Context, conn *pgx.Conn, namespace string) (bool, error) {
	var exists bool
	err := conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.schemata WHERE schema_name = $1)`,
		namespace,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking schema %s: %w", namespace, err)
	}
	return exists, nil
}
