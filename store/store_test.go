package store_test

import (
	"errors"
	"testing"

	"github.com/ProtonMail/draftsync/draft"
	"github.com/ProtonMail/draftsync/store"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore(t *testing.T) {
	testStore(t, store.NewInMemoryStore())
}

func TestBadgerStore(t *testing.T) {
	badgerStore, err := store.NewBadgerStore(t.TempDir(), []byte("pass"))
	require.NoError(t, err)

	testStore(t, badgerStore)
}

func TestBadgerStoreReopenWithPassphrase(t *testing.T) {
	dir := t.TempDir()
	id := draft.NewID("user", "local-1")

	{
		badgerStore, err := store.NewBadgerStore(dir, []byte("pass"))
		require.NoError(t, err)

		require.NoError(t, store.Tx(badgerStore, func(tx store.Transaction) error {
			return tx.Set(id, []byte("draft"))
		}))

		require.NoError(t, badgerStore.Close())
	}

	badgerStore, err := store.NewBadgerStore(dir, []byte("pass"))
	require.NoError(t, err)

	defer func() { require.NoError(t, badgerStore.Close()) }()

	require.Equal(t, []byte("draft"), must(badgerStore.Get(id)))
}

func TestDraftStore(t *testing.T) {
	for name, opts := range map[string][]store.Option{
		"plain":      nil,
		"compressed": {store.WithCompressor(&store.ZLibCompressor{})},
	} {
		opts := opts

		t.Run(name, func(t *testing.T) {
			drafts := store.NewDraftStore(store.NewInMemoryStore(), opts...)
			defer func() { require.NoError(t, drafts.Close()) }()

			local := draft.NewEmpty(draft.NewID("user", "local-1"), draft.Sender{Address: "alice@pm.me"}, "address")
			local.Subject = "Subject"
			local.Body = "body"
			local.Attachments = []draft.Attachment{{ID: "att-1", Name: "a.txt", Headers: map[string]string{"k": "v"}}}

			require.NoError(t, drafts.Put(local))

			stored, err := drafts.Get(local.ID)
			require.NoError(t, err)
			require.True(t, local.Equal(stored))

			// Moving the draft makes it available under the new identity only.
			remote := local.Clone()
			remote.ID = local.ID.WithMessageID("api-1")
			remote.ConversationID = "conv-1"

			require.NoError(t, drafts.Move(local.ID, remote))

			_, err = drafts.Get(local.ID)
			require.True(t, store.IsErrNotFound(err))

			moved, err := drafts.Get(remote.ID)
			require.NoError(t, err)
			require.True(t, remote.Equal(moved))

			require.NoError(t, drafts.Delete(remote.ID))

			_, err = drafts.Get(remote.ID)
			require.True(t, store.IsErrNotFound(err))
		})
	}
}

func TestDraftStoreAttachments(t *testing.T) {
	badgerStore, err := store.NewBadgerStore(t.TempDir(), []byte("pass"))
	require.NoError(t, err)

	drafts := store.NewDraftStore(badgerStore, store.WithCompressor(&store.ZLibCompressor{}))
	defer func() { require.NoError(t, drafts.Close()) }()

	id := draft.NewID("user", "local-1")

	require.NoError(t, drafts.Put(draft.NewEmpty(id, draft.Sender{Address: "alice@pm.me"}, "address")))
	require.NoError(t, drafts.PutAttachment(id, "att-1", []byte("data-1")))
	require.NoError(t, drafts.PutAttachment(id, "att-2", []byte("data-2")))

	require.Equal(t, []byte("data-1"), must(drafts.GetAttachment(id, "att-1")))

	// The attachments of another draft are kept apart.
	_, err = drafts.GetAttachment(id.WithMessageID("local-2"), "att-1")
	require.True(t, store.IsErrNotFound(err))

	require.NoError(t, drafts.DeleteAttachments(id, "att-1"))

	_, err = drafts.GetAttachment(id, "att-1")
	require.True(t, store.IsErrNotFound(err))

	// The draft itself is untouched.
	_, err = drafts.Get(id)
	require.NoError(t, err)

	// Deleting the user removes the attachment content too.
	require.NoError(t, drafts.DeleteUser("user"))

	_, err = drafts.GetAttachment(id, "att-2")
	require.True(t, store.IsErrNotFound(err))
}

func TestTxRollsBackOnError(t *testing.T) {
	st := store.NewInMemoryStore()
	id := draft.NewID("user", "local-1")

	err := store.Tx(st, func(tx store.Transaction) error {
		if err := tx.Set(id, []byte("draft")); err != nil {
			return err
		}

		return errors.New("failed")
	})
	require.Error(t, err)

	_, err = st.Get(id)
	require.True(t, store.IsErrNotFound(err))
}

func testStore(t *testing.T, st store.Store) {
	defer func() { require.NoError(t, st.Close()) }()

	id1 := draft.NewID("user", "local-1")
	id2 := draft.NewID("user", "local-2")
	id3 := draft.NewID("other", "local-1")

	require.NoError(t, store.Tx(st, func(tx store.Transaction) error {
		for id, data := range map[draft.ID]string{id1: "draft1", id2: "draft2", id3: "draft3"} {
			if err := tx.Set(id, []byte(data)); err != nil {
				return err
			}
		}

		return nil
	}))

	require.Equal(t, []byte("draft1"), must(st.Get(id1)))
	require.Equal(t, []byte("draft2"), must(st.Get(id2)))
	require.Equal(t, []byte("draft3"), must(st.Get(id3)))

	require.NoError(t, store.Tx(st, func(tx store.Transaction) error {
		return tx.Delete(id1, id2)
	}))

	_, err := st.Get(id1)
	require.True(t, store.IsErrNotFound(err))

	_, err = st.Get(id2)
	require.True(t, store.IsErrNotFound(err))

	require.Equal(t, []byte("draft3"), must(st.Get(id3)))

	// Only the drafts of the given user are dropped, even if another user id starts the same way.
	id4 := draft.NewID("other-user", "local-1")

	require.NoError(t, store.Tx(st, func(tx store.Transaction) error {
		return tx.Set(id4, []byte("draft4"))
	}))

	require.NoError(t, st.DeleteUser("other"))

	_, err = st.Get(id3)
	require.True(t, store.IsErrNotFound(err))

	require.Equal(t, []byte("draft4"), must(st.Get(id4)))
}

func must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}

	return val
}
