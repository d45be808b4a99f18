package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ProtonMail/draftsync/db"
	"github.com/ProtonMail/draftsync/draft"
	"github.com/stretchr/testify/require"
)

type fakeStates struct {
	states map[draft.ID]draft.State
	err    error
}

func (f *fakeStates) Get(_ context.Context, id draft.ID) (draft.State, error) {
	if f.err != nil {
		return draft.State{}, f.err
	}

	state, ok := f.states[id]
	if !ok {
		return draft.State{}, db.ErrNotFound
	}

	return state, nil
}

type fakeDrafts map[draft.ID]draft.Draft

func (f fakeDrafts) Find(_ context.Context, id draft.ID) (draft.Draft, error) {
	d, ok := f[id]
	if !ok {
		return draft.Draft{}, errors.New("not found")
	}

	return d, nil
}

var id = draft.NewID("user", "local-1")

func newTestDraft() draft.Draft {
	d := draft.NewEmpty(id, draft.Sender{Address: "alice@pm.me"}, "address")
	d.Subject = "Subject"
	d.Body = "body"

	return d
}

func synchronized() *fakeStates {
	return &fakeStates{states: map[draft.ID]draft.State{
		id: {ID: id, APIMessageID: "api-1", SyncState: draft.Synchronized, Action: draft.ActionCompose},
	}}
}

func TestUploadRequired_StateNotSynchronized(t *testing.T) {
	for _, syncState := range []draft.SyncState{draft.Local, draft.Sending, draft.Sent, draft.ErrorSending, draft.ErrorUploadAttachments} {
		states := &fakeStates{states: map[draft.ID]draft.State{id: {ID: id, SyncState: syncState, Action: draft.ActionCompose}}}
		tr := New(states, fakeDrafts{id: newTestDraft()})

		tr.NotifyUploadedDraft(id, newTestDraft())

		require.True(t, tr.UploadRequired(context.Background(), id), syncState.String())
	}
}

func TestUploadRequired_NothingUploaded(t *testing.T) {
	tr := New(synchronized(), fakeDrafts{id: newTestDraft()})

	require.True(t, tr.UploadRequired(context.Background(), id))
}

func TestUploadRequired_NoStateAndNothingUploaded(t *testing.T) {
	tr := New(&fakeStates{}, fakeDrafts{id: newTestDraft()})

	require.True(t, tr.UploadRequired(context.Background(), id))
}

func TestUploadRequired_SameDraftUploaded(t *testing.T) {
	tr := New(synchronized(), fakeDrafts{id: newTestDraft()})

	tr.NotifyUploadedDraft(id, newTestDraft())

	require.False(t, tr.UploadRequired(context.Background(), id))
}

func TestUploadRequired_NoStateSameDraftUploaded(t *testing.T) {
	tr := New(&fakeStates{}, fakeDrafts{id: newTestDraft()})

	tr.NotifyUploadedDraft(id, newTestDraft())

	require.False(t, tr.UploadRequired(context.Background(), id))
}

func TestUploadRequired_DraftChangedSinceUpload(t *testing.T) {
	changes := map[string]func(*draft.Draft){
		"subject":     func(d *draft.Draft) { d.Subject = "Changed" },
		"sender":      func(d *draft.Draft) { d.Sender = draft.Sender{Address: "eve@pm.me"} },
		"to":          func(d *draft.Draft) { d.ToList = []draft.Recipient{{Address: "bob@pm.me"}} },
		"cc":          func(d *draft.Draft) { d.CCList = []draft.Recipient{{Address: "bob@pm.me"}} },
		"bcc":         func(d *draft.Draft) { d.BCCList = []draft.Recipient{{Address: "bob@pm.me"}} },
		"labels":      func(d *draft.Draft) { d.LabelIDs = append(d.LabelIDs, "10") },
		"body":        func(d *draft.Draft) { d.Body = "changed" },
		"mime type":   func(d *draft.Draft) { d.MIMEType = draft.MIMETypePlainText },
		"attachments": func(d *draft.Draft) { d.Attachments = []draft.Attachment{{Name: "a.txt"}} },
		"expiration":  func(d *draft.Draft) { d.ExpirationTime = 1 },
		"address":     func(d *draft.Draft) { d.AddressID = "other" },
	}

	for name, change := range changes {
		change := change

		t.Run(name, func(t *testing.T) {
			local := newTestDraft()
			change(&local)

			tr := New(synchronized(), fakeDrafts{id: local})

			tr.NotifyUploadedDraft(id, newTestDraft())

			require.True(t, tr.UploadRequired(context.Background(), id))
		})
	}
}

func TestUploadRequired_LookupFailures(t *testing.T) {
	t.Run("state", func(t *testing.T) {
		tr := New(&fakeStates{err: errors.New("closed")}, fakeDrafts{id: newTestDraft()})
		tr.NotifyUploadedDraft(id, newTestDraft())

		require.True(t, tr.UploadRequired(context.Background(), id))
	})

	t.Run("draft", func(t *testing.T) {
		tr := New(synchronized(), fakeDrafts{})
		tr.NotifyUploadedDraft(id, newTestDraft())

		require.True(t, tr.UploadRequired(context.Background(), id))
	})
}

func TestNotifyUploadedDraftOverwrites(t *testing.T) {
	local := newTestDraft()
	local.Subject = "Second"

	tr := New(synchronized(), fakeDrafts{id: local})

	tr.NotifyUploadedDraft(id, newTestDraft())
	require.True(t, tr.UploadRequired(context.Background(), id))

	tr.NotifyUploadedDraft(id, local)
	require.False(t, tr.UploadRequired(context.Background(), id))
}

func TestNotifyUploadedDraftStoresACopy(t *testing.T) {
	tr := New(synchronized(), fakeDrafts{id: newTestDraft()})

	snapshot := newTestDraft()
	tr.NotifyUploadedDraft(id, snapshot)

	snapshot.LabelIDs[0] = "changed"

	require.False(t, tr.UploadRequired(context.Background(), id))
}

func TestNotifySentMessages(t *testing.T) {
	other := id.WithMessageID("local-2")

	otherDraft := newTestDraft()
	otherDraft.ID = other

	tr := New(&fakeStates{}, fakeDrafts{id: newTestDraft(), other: otherDraft})

	tr.NotifyUploadedDraft(id, newTestDraft())
	tr.NotifyUploadedDraft(other, otherDraft)

	tr.NotifySentMessages(id)

	require.True(t, tr.UploadRequired(context.Background(), id))
	require.False(t, tr.UploadRequired(context.Background(), other))

	tr.Forget("user")

	require.True(t, tr.UploadRequired(context.Background(), other))
}

func TestConcurrentAccess(t *testing.T) {
	tr := New(synchronized(), fakeDrafts{id: newTestDraft()})

	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(3)

		go func() {
			defer wg.Done()
			tr.NotifyUploadedDraft(id, newTestDraft())
		}()

		go func() {
			defer wg.Done()
			tr.UploadRequired(context.Background(), id)
		}()

		go func() {
			defer wg.Done()
			tr.NotifySentMessages(id)
		}()
	}

	wg.Wait()

	tr.NotifyUploadedDraft(id, newTestDraft())
	require.False(t, tr.UploadRequired(context.Background(), id))
}
