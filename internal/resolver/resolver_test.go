package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/ProtonMail/draftsync/db"
	"github.com/ProtonMail/draftsync/draft"
	"github.com/ProtonMail/draftsync/store"
	"github.com/stretchr/testify/require"
)

type fakeStates map[draft.ID]draft.State

func (f fakeStates) Get(_ context.Context, id draft.ID) (draft.State, error) {
	state, ok := f[id]
	if !ok {
		return draft.State{}, db.ErrNotFound
	}

	return state, nil
}

type failingStates struct{}

func (failingStates) Get(context.Context, draft.ID) (draft.State, error) {
	return draft.State{}, errors.New("db is closed")
}

var sender = draft.Sender{Address: "alice@pm.me"}

func TestFind_ByLocalID(t *testing.T) {
	drafts := store.NewDraftStore(store.NewInMemoryStore())
	id := draft.NewID("user", "local-1")

	local := draft.NewEmpty(id, sender, "address")
	local.Subject = "Subject"
	require.NoError(t, drafts.Put(local))

	found, err := New(drafts, fakeStates{}).Find(context.Background(), id)
	require.NoError(t, err)
	require.True(t, local.Equal(found))
}

func TestFind_ByAPIMessageID(t *testing.T) {
	drafts := store.NewDraftStore(store.NewInMemoryStore())
	id := draft.NewID("user", "local-1")

	remote := draft.NewEmpty(id.WithMessageID("api-1"), sender, "address")
	remote.Subject = "Subject"
	require.NoError(t, drafts.Put(remote))

	states := fakeStates{id: {ID: id, APIMessageID: "api-1", SyncState: draft.Synchronized, Action: draft.ActionCompose}}
	res := New(drafts, states)

	found, err := res.Find(context.Background(), id)
	require.NoError(t, err)
	require.True(t, remote.Equal(found))

	canonical, ok, err := res.Canonical(context.Background(), id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, draft.MessageID("api-1"), canonical)
}

func TestFind_NotFound(t *testing.T) {
	drafts := store.NewDraftStore(store.NewInMemoryStore())
	id := draft.NewID("user", "local-1")

	for name, states := range map[string]fakeStates{
		"no state":          {},
		"not known to API":  {id: draft.NewLocalState(id, draft.ActionCompose)},
		"nothing under API": {id: {ID: id, APIMessageID: "api-1", Action: draft.ActionCompose}},
	} {
		states := states

		t.Run(name, func(t *testing.T) {
			_, err := New(drafts, states).Find(context.Background(), id)
			require.ErrorIs(t, err, ErrDraftNotFound)
		})
	}
}

func TestFind_StateError(t *testing.T) {
	drafts := store.NewDraftStore(store.NewInMemoryStore())

	_, err := New(drafts, failingStates{}).Find(context.Background(), draft.NewID("user", "local-1"))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrDraftNotFound)
}

func TestGet_FallsBackToEmptyDraft(t *testing.T) {
	drafts := store.NewDraftStore(store.NewInMemoryStore())
	id := draft.NewID("user", "local-1")

	d, err := New(drafts, fakeStates{}).Get(context.Background(), id, sender, "address")
	require.NoError(t, err)
	require.True(t, draft.NewEmpty(id, sender, "address").Equal(d))
}
