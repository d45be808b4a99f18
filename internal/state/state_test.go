package state

import (
	"context"
	"sync"
	"testing"

	"github.com/ProtonMail/draftsync/db"
	"github.com/ProtonMail/draftsync/draft"
	"github.com/ProtonMail/draftsync/events"
	"github.com/ProtonMail/draftsync/internal/db_impl"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	events []events.Event
	lock   sync.Mutex
}

func (r *recorder) publish(event events.Event) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.events = append(r.events, event)
}

func newTestRepository(t *testing.T) (*Repository, *recorder) {
	client, _, err := db_impl.NewSQLiteDB().New(t.TempDir(), "drafts")
	require.NoError(t, err)
	require.NoError(t, client.Init(context.Background()))

	t.Cleanup(func() { require.NoError(t, client.Close()) })

	rec := &recorder{}

	return NewRepository(client, rec.publish), rec
}

func TestRepository_CreateOrUpdateLocal(t *testing.T) {
	ctx := context.Background()
	repo, rec := newTestRepository(t)
	id := draft.NewID("user", "local-1")

	created, err := repo.CreateOrUpdateLocal(ctx, id, draft.ActionReply)
	require.NoError(t, err)
	require.Equal(t, draft.NewLocalState(id, draft.ActionReply), created)

	synced, err := repo.SetSynchronized(ctx, id, "api-1")
	require.NoError(t, err)
	require.Equal(t, draft.Synchronized, synced.SyncState)
	require.Equal(t, draft.MessageID("api-1"), synced.APIMessageID)

	// Restarting the upload goes back to Local but keeps the API id.
	restarted, err := repo.CreateOrUpdateLocal(ctx, id, draft.ActionForward)
	require.NoError(t, err)
	require.Equal(t, draft.Local, restarted.SyncState)
	require.Equal(t, draft.ActionForward, restarted.Action)
	require.Equal(t, draft.MessageID("api-1"), restarted.APIMessageID)

	require.Len(t, rec.events, 3)
	require.Equal(t, events.DraftStateChanged{State: restarted}, rec.events[2])
}

func TestRepository_CreateIfMissing(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)
	id := draft.NewID("user", "local-1")

	_, err := repo.CreateIfMissing(ctx, id, draft.ActionCompose)
	require.NoError(t, err)

	_, err = repo.SetSynchronized(ctx, id, "api-1")
	require.NoError(t, err)

	state, err := repo.CreateIfMissing(ctx, id, draft.ActionReply)
	require.NoError(t, err)
	require.Equal(t, draft.Synchronized, state.SyncState)
	require.Equal(t, draft.ActionCompose, state.Action)
}

func TestRepository_SetSyncState(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)
	id := draft.NewID("user", "local-1")

	_, err := repo.SetSyncState(ctx, id, draft.ErrorSending, nil)
	require.True(t, db.IsErrNotFound(err))

	_, err = repo.CreateOrUpdateLocal(ctx, id, draft.ActionCompose)
	require.NoError(t, err)

	failed, err := repo.SetSyncState(ctx, id, draft.ErrorSending, &draft.SendingError{Kind: draft.SendingErrorOther})
	require.NoError(t, err)
	require.Equal(t, draft.ErrorSending, failed.SyncState)
	require.NotNil(t, failed.SendingError)

	// A successful upload clears the sending error.
	synced, err := repo.SetSynchronized(ctx, id, "")
	require.NoError(t, err)
	require.Nil(t, synced.SendingError)
	require.False(t, synced.IsKnownToAPI())

	_, err = repo.SetSyncState(ctx, id, draft.SyncState(42), nil)
	require.Error(t, err)
}

func TestRepository_SendingStatus(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)
	id := draft.NewID("user", "local-1")

	_, err := repo.CreateOrUpdateLocal(ctx, id, draft.ActionCompose)
	require.NoError(t, err)

	confirmed, err := repo.ConfirmSendingStatus(ctx, id)
	require.NoError(t, err)
	require.True(t, confirmed.SendingStatusConfirmed)

	sending, err := repo.SetSyncState(ctx, id, draft.Sending, nil)
	require.NoError(t, err)
	require.False(t, sending.SendingStatusConfirmed)
}

func TestRepository_LookupAndDelete(t *testing.T) {
	ctx := context.Background()
	repo, rec := newTestRepository(t)
	id := draft.NewID("user", "local-1")

	_, err := repo.CreateOrUpdateLocal(ctx, id, draft.ActionCompose)
	require.NoError(t, err)

	_, err = repo.SetSynchronized(ctx, id, "api-1")
	require.NoError(t, err)

	byAPI, err := repo.GetByAPIMessageID(ctx, "user", "api-1")
	require.NoError(t, err)
	require.Equal(t, id, byAPI.ID)

	synced, err := repo.ListWithSyncState(ctx, "user", draft.Synchronized)
	require.NoError(t, err)
	require.Len(t, synced, 1)

	require.NoError(t, repo.Delete(ctx, id))
	require.Equal(t, events.DraftStateDeleted{ID: id}, rec.events[len(rec.events)-1])

	_, err = repo.Get(ctx, id)
	require.True(t, db.IsErrNotFound(err))

	all, err := repo.List(ctx, "user")
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestRepository_DeleteUser(t *testing.T) {
	ctx := context.Background()
	repo, rec := newTestRepository(t)

	id1 := draft.NewID("user", "local-1")
	id2 := draft.NewID("user", "local-2")
	other := draft.NewID("other", "local-1")

	for _, id := range []draft.ID{id1, id2, other} {
		_, err := repo.CreateOrUpdateLocal(ctx, id, draft.ActionCompose)
		require.NoError(t, err)
	}

	ids, err := repo.DeleteUser(ctx, "user")
	require.NoError(t, err)
	require.Equal(t, []draft.ID{id1, id2}, ids)

	states, err := repo.List(ctx, "user")
	require.NoError(t, err)
	require.Empty(t, states)

	_, err = repo.Get(ctx, other)
	require.NoError(t, err)

	require.Equal(t, events.DraftStateDeleted{ID: id2}, rec.events[len(rec.events)-1])

	// Nothing left to delete.
	ids, err = repo.DeleteUser(ctx, "user")
	require.NoError(t, err)
	require.Empty(t, ids)
}
