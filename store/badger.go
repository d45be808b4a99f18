package store

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/ProtonMail/draftsync/draft"
	"github.com/ProtonMail/draftsync/internal/hash"
	"github.com/dgraph-io/badger/v3"
	"github.com/sirupsen/logrus"
)

const (
	badgerGCInterval     = 5 * time.Minute
	badgerGCDiscardRatio = 0.5
	badgerIndexCacheSize = 16 << 20
)

// BadgerStore keeps the drafts on disk, encrypted with a key derived from the passphrase.
type BadgerStore struct {
	db *badger.DB

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewBadgerStore(path string, passphrase []byte) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions(path).
		WithLogger(logrus.WithField("pkg", "draftsync/store")).
		WithLoggingLevel(badger.ERROR).
		WithEncryptionKey(hash.PassphraseKey(passphrase)).
		WithIndexCacheSize(badgerIndexCacheSize),
	)
	if err != nil {
		return nil, err
	}

	store := &BadgerStore{
		db:     db,
		stopCh: make(chan struct{}),
	}

	store.wg.Add(1)

	go func() {
		defer store.wg.Done()
		store.collectGarbage()
	}()

	return store, nil
}

// collectGarbage rewrites the value log periodically; badger never does it on its own.
func (b *BadgerStore) collectGarbage() {
	ticker := time.NewTicker(badgerGCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for b.db.RunValueLogGC(badgerGCDiscardRatio) == nil {
			}

		case <-b.stopCh:
			return
		}
	}
}

func (b *BadgerStore) Get(id draft.ID) ([]byte, error) {
	var data []byte

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(id.Key())
		if err != nil {
			return err
		}

		data, err = item.ValueCopy(nil)

		return err
	})

	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, ErrNotFound

	case err != nil:
		return nil, err

	default:
		return data, nil
	}
}

func (b *BadgerStore) DeleteUser(userID draft.UserID) error {
	return b.db.DropPrefix(userID.KeyPrefix())
}

func (b *BadgerStore) NewTransaction() Transaction {
	return badgerTransaction{txn: b.db.NewTransaction(true)}
}

func (b *BadgerStore) Close() error {
	close(b.stopCh)
	b.wg.Wait()

	return b.db.Close()
}

type badgerTransaction struct {
	txn *badger.Txn
}

func (t badgerTransaction) Set(id draft.ID, data []byte) error {
	return t.txn.Set(id.Key(), data)
}

func (t badgerTransaction) Delete(ids ...draft.ID) error {
	for _, id := range ids {
		if err := t.txn.Delete(id.Key()); err != nil {
			return err
		}
	}

	return nil
}

func (t badgerTransaction) Commit() error {
	return t.txn.Commit()
}

// Rollback discards the writes. It is a no-op after Commit.
func (t badgerTransaction) Rollback() error {
	t.txn.Discard()
	return nil
}

type BadgerStoreBuilder struct{}

func (*BadgerStoreBuilder) New(dir string, passphrase []byte) (Store, error) {
	return NewBadgerStore(dir, passphrase)
}

func (*BadgerStoreBuilder) Delete(dir string) error {
	return os.RemoveAll(dir)
}
