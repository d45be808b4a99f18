package db

import (
	"context"
)

// Client gives access to the draft state database. Reads may run concurrently; writes are serialized and each
// one runs in its own transaction.
type Client interface {
	Init(ctx context.Context) error
	Read(ctx context.Context, op func(context.Context, ReadOnly) error) error
	Write(ctx context.Context, op func(context.Context, Transaction) error) error
	Close() error
}

// ClientInterface creates and removes the draft state databases stored in a directory.
type ClientInterface interface {
	// New opens the named database, creating it if needed. The returned bool is true if it was created.
	New(dir string, name string) (Client, bool, error)

	// Delete schedules the removal of the named database. See DeleteDB.
	Delete(dir string, name string) error
}

// ClientReadType runs a read which produces a result, such as the state of one draft.
func ClientReadType[T any](ctx context.Context, c Client, op func(context.Context, ReadOnly) (T, error)) (T, error) {
	var result T

	if err := c.Read(ctx, func(ctx context.Context, rd ReadOnly) (err error) {
		result, err = op(ctx, rd)
		return
	}); err != nil {
		var zero T
		return zero, err
	}

	return result, nil
}

// ClientWriteType runs a write transaction which produces a result, such as the updated state of a draft.
// The result is only returned if the transaction was committed.
func ClientWriteType[T any](ctx context.Context, c Client, op func(context.Context, Transaction) (T, error)) (T, error) {
	var result T

	if err := c.Write(ctx, func(ctx context.Context, tx Transaction) (err error) {
		result, err = op(ctx, tx)
		return
	}); err != nil {
		var zero T
		return zero, err
	}

	return result, nil
}
