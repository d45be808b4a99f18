package store

import (
	"sync"

	"github.com/ProtonMail/draftsync/draft"
)

type inMemoryStore struct {
	data map[draft.ID][]byte
	lock sync.RWMutex
}

func NewInMemoryStore() Store {
	return &inMemoryStore{
		data: make(map[draft.ID][]byte),
	}
}

func (c *inMemoryStore) Get(id draft.ID) ([]byte, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	data, ok := c.data[id]
	if !ok {
		return nil, ErrNotFound
	}

	return data, nil
}

func (c *inMemoryStore) DeleteUser(userID draft.UserID) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	for id := range c.data {
		if id.UserID == userID {
			delete(c.data, id)
		}
	}

	return nil
}

func (c *inMemoryStore) NewTransaction() Transaction {
	return &inMemoryTransaction{store: c}
}

func (c *inMemoryStore) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.data = make(map[draft.ID][]byte)

	return nil
}

// inMemoryTransaction buffers the operations and applies them all at once on commit.
type inMemoryTransaction struct {
	store *inMemoryStore
	ops   []func(map[draft.ID][]byte)
}

func (t *inMemoryTransaction) Set(id draft.ID, data []byte) error {
	data = append([]byte(nil), data...)

	t.ops = append(t.ops, func(m map[draft.ID][]byte) {
		m[id] = data
	})

	return nil
}

func (t *inMemoryTransaction) Delete(ids ...draft.ID) error {
	t.ops = append(t.ops, func(m map[draft.ID][]byte) {
		for _, id := range ids {
			delete(m, id)
		}
	})

	return nil
}

func (t *inMemoryTransaction) Commit() error {
	t.store.lock.Lock()
	defer t.store.lock.Unlock()

	for _, op := range t.ops {
		op(t.store.data)
	}

	t.ops = nil

	return nil
}

func (t *inMemoryTransaction) Rollback() error {
	t.ops = nil

	return nil
}

type InMemoryStoreBuilder struct{}

func (*InMemoryStoreBuilder) New(string, []byte) (Store, error) {
	return NewInMemoryStore(), nil
}

func (*InMemoryStoreBuilder) Delete(string) error {
	return nil
}
