package utils

import (
	"context"
	"database/sql"

	"github.com/sirupsen/logrus"
)

// QueryWrapper is implemented by *sql.DB, *sql.Tx and the wrappers which log the statements run through them.
type QueryWrapper interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// DebugQueryWrapper writes every statement and its arguments to the debug log before running it.
type DebugQueryWrapper struct {
	QW    QueryWrapper
	Entry *logrus.Entry
}

func (d DebugQueryWrapper) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	d.log("query", query, args)
	return d.QW.QueryContext(ctx, query, args...)
}

func (d DebugQueryWrapper) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	d.log("query", query, args)
	return d.QW.QueryRowContext(ctx, query, args...)
}

func (d DebugQueryWrapper) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	d.log("exec", query, args)
	return d.QW.ExecContext(ctx, query, args...)
}

func (d DebugQueryWrapper) log(kind, query string, args []any) {
	d.Entry.WithField(kind, query).WithField("args", args).Debug("SQL statement")
}
