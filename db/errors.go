package db

import "errors"

var (
	// ErrNotFound is returned when no state is stored for a draft.
	ErrNotFound = errors.New("draft state not found")

	ErrTransactionFailed = errors.New("draft state transaction failed")
	ErrMigrationFailed   = errors.New("draft state database migration failed")
)

func IsErrNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
