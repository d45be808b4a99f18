package store

import (
	"errors"
	"fmt"

	"github.com/ProtonMail/draftsync/draft"
)

var ErrNotFound = errors.New("draft not found in store")

func IsErrNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Store holds raw draft content keyed by draft identity.
type Store interface {
	// Get returns ErrNotFound if nothing is stored for the draft.
	Get(id draft.ID) ([]byte, error)

	// DeleteUser removes the content of every draft of the user.
	DeleteUser(userID draft.UserID) error

	NewTransaction() Transaction
	Close() error
}

// Transaction groups writes which are applied together on Commit.
type Transaction interface {
	Set(id draft.ID, data []byte) error
	Delete(ids ...draft.ID) error
	Commit() error
	Rollback() error
}

// Builder opens and removes the store kept in a directory.
type Builder interface {
	New(dir string, passphrase []byte) (Store, error)
	Delete(dir string) error
}

// Tx runs fn in a transaction which is committed if fn succeeds and rolled back otherwise.
func Tx(store Store, fn func(Transaction) error) error {
	_, err := TxResult(store, func(tx Transaction) (struct{}, error) {
		return struct{}{}, fn(tx)
	})

	return err
}

// TxResult is Tx for functions which produce a result. The result is only returned if the transaction committed.
func TxResult[T any](store Store, fn func(Transaction) (T, error)) (T, error) {
	var zero T

	tx := store.NewTransaction()

	result, err := fn(tx)
	if err == nil {
		if err = tx.Commit(); err == nil {
			return result, nil
		}

		err = fmt.Errorf("failed to commit draft store transaction: %w", err)
	}

	if rerr := tx.Rollback(); rerr != nil {
		return zero, fmt.Errorf("failed to roll back draft store transaction (%v): %w", rerr, err)
	}

	return zero, err
}
