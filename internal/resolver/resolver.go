// Package resolver finds the local content of a draft from any of its identities.
//
// A draft is first stored under the identifier assigned on the device. Once the API created it, the content is
// moved under the identifier the API assigned and the sync state records the mapping between the two.
// Callers keep using the identifier they started with.
package resolver

import (
	"context"
	"errors"

	"github.com/ProtonMail/draftsync/db"
	"github.com/ProtonMail/draftsync/draft"
	"github.com/ProtonMail/draftsync/store"
	"github.com/sirupsen/logrus"
)

var ErrDraftNotFound = errors.New("no local draft found")

type StateReader interface {
	Get(ctx context.Context, id draft.ID) (draft.State, error)
}

type Resolver struct {
	drafts *store.DraftStore
	states StateReader
}

func New(drafts *store.DraftStore, states StateReader) *Resolver {
	return &Resolver{
		drafts: drafts,
		states: states,
	}
}

// Canonical returns the identifier the API assigned to the draft, if any.
func (r *Resolver) Canonical(ctx context.Context, id draft.ID) (draft.MessageID, bool, error) {
	state, err := r.states.Get(ctx, id)
	if db.IsErrNotFound(err) {
		return "", false, nil
	} else if err != nil {
		return "", false, err
	}

	if !state.IsKnownToAPI() {
		return "", false, nil
	}

	return state.APIMessageID, true, nil
}

// Find returns the draft stored under the identity, falling back to the identifier assigned by the API.
// ErrDraftNotFound is returned if neither holds any content.
func (r *Resolver) Find(ctx context.Context, id draft.ID) (draft.Draft, error) {
	d, err := r.drafts.Get(id)
	if err == nil {
		return d, nil
	} else if !store.IsErrNotFound(err) {
		return draft.Draft{}, err
	}

	apiMessageID, ok, err := r.Canonical(ctx, id)
	if err != nil {
		return draft.Draft{}, err
	}

	if !ok || apiMessageID == id.MessageID {
		return draft.Draft{}, ErrDraftNotFound
	}

	logrus.WithField("pkg", "draftsync/resolver").
		WithField("messageID", id.MessageID.ShortID()).
		WithField("apiMessageID", apiMessageID.ShortID()).
		Trace("Resolving draft through the API message ID")

	d, err = r.drafts.Get(id.WithMessageID(apiMessageID))
	if store.IsErrNotFound(err) {
		return draft.Draft{}, ErrDraftNotFound
	} else if err != nil {
		return draft.Draft{}, err
	}

	return d, nil
}

// Get returns the draft as Find does, or a new empty draft for the sender if none is stored.
func (r *Resolver) Get(ctx context.Context, id draft.ID, sender draft.Sender, addressID string) (draft.Draft, error) {
	d, err := r.Find(ctx, id)
	if errors.Is(err, ErrDraftNotFound) {
		return draft.NewEmpty(id, sender, addressID), nil
	} else if err != nil {
		return draft.Draft{}, err
	}

	return d, nil
}
