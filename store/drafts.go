package store

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/ProtonMail/draftsync/draft"
)

// DraftStore stores draft snapshots in a byte store, keyed by draft identity.
type DraftStore struct {
	impl Store
	cmp  Compressor
}

func NewDraftStore(impl Store, opt ...Option) *DraftStore {
	store := &DraftStore{impl: impl}

	for _, opt := range opt {
		opt.config(store)
	}

	return store
}

// Get returns ErrNotFound if no draft is stored under the identity.
func (s *DraftStore) Get(id draft.ID) (draft.Draft, error) {
	b, err := s.impl.Get(id)
	if err != nil {
		return draft.Draft{}, err
	}

	return s.decode(b)
}

// Put stores the draft under its own identity, replacing any previous content.
func (s *DraftStore) Put(d draft.Draft) error {
	b, err := s.encode(d)
	if err != nil {
		return err
	}

	return Tx(s.impl, func(tx Transaction) error {
		return tx.Set(d.ID, b)
	})
}

// Move atomically removes the content stored under from and stores the draft under its own identity.
func (s *DraftStore) Move(from draft.ID, d draft.Draft) error {
	b, err := s.encode(d)
	if err != nil {
		return err
	}

	return Tx(s.impl, func(tx Transaction) error {
		if from != d.ID {
			if err := tx.Delete(from); err != nil {
				return err
			}
		}

		return tx.Set(d.ID, b)
	})
}

func (s *DraftStore) Delete(ids ...draft.ID) error {
	return Tx(s.impl, func(tx Transaction) error {
		return tx.Delete(ids...)
	})
}

func (s *DraftStore) DeleteUser(userID draft.UserID) error {
	return s.impl.DeleteUser(userID)
}

func (s *DraftStore) Close() error {
	return s.impl.Close()
}

func (s *DraftStore) encode(d draft.Draft) ([]byte, error) {
	buf := new(bytes.Buffer)

	if err := gob.NewEncoder(buf).Encode(d); err != nil {
		return nil, fmt.Errorf("failed to encode draft: %w", err)
	}

	if s.cmp == nil {
		return buf.Bytes(), nil
	}

	return s.cmp.Compress(buf.Bytes())
}

func (s *DraftStore) decode(b []byte) (draft.Draft, error) {
	if s.cmp != nil {
		dec, err := s.cmp.Decompress(b)
		if err != nil {
			return draft.Draft{}, fmt.Errorf("failed to decompress draft: %w", err)
		}

		b = dec
	}

	var d draft.Draft

	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&d); err != nil {
		return draft.Draft{}, fmt.Errorf("failed to decode draft: %w", err)
	}

	return d, nil
}
