package remote

import (
	"context"
	"testing"
	"time"

	"github.com/ProtonMail/draftsync/connector"
	"github.com/ProtonMail/draftsync/draft"
	"github.com/ProtonMail/draftsync/events"
	"github.com/ProtonMail/draftsync/store"
	"github.com/stretchr/testify/require"
)

// storeLocalAttachment adds an attachment created on the device to the draft stored under id.
func (env *testEnv) storeLocalAttachment(t *testing.T, id draft.ID, att draft.Attachment, data []byte) {
	ctx := context.Background()

	d, err := env.resolver.Find(ctx, id)
	require.NoError(t, err)

	d.Attachments = append(d.Attachments, att)
	require.NoError(t, env.drafts.Put(d))

	if data != nil {
		require.NoError(t, env.drafts.PutAttachment(id, att.ID, data))
	}

	_, err = env.states.CreateOrUpdateLocalAttachment(ctx, id, att.ID)
	require.NoError(t, err)
}

func (env *testEnv) getAttachmentState(t *testing.T, id draft.ID, attachmentID string) draft.AttachmentState {
	atts, err := env.states.ListAttachments(context.Background(), id)
	require.NoError(t, err)

	for _, att := range atts {
		if att.AttachmentID == attachmentID {
			return att
		}
	}

	require.FailNow(t, "attachment state not found", attachmentID)

	return draft.AttachmentState{}
}

var localAttachment = draft.Attachment{
	ID:         "local-att-1",
	Name:       "notes.txt",
	MIMEType:   "text/plain",
	KeyPackets: "key-packets",
	Signature:  "signature",
}

func TestUpload_UploadsLocalAttachmentsAfterCreate(t *testing.T) {
	ctx := context.Background()
	conn := connector.NewDummy()
	env := newTestEnv(t, conn)

	env.storeDraft(t, localID, "body")
	env.storeLocalAttachment(t, localID, localAttachment, []byte("data packet"))

	require.NoError(t, env.remote.Upload(ctx, localID))

	st := env.getState(t, localID)
	require.Equal(t, draft.Synchronized, st.SyncState)
	require.Equal(t, 1, conn.Calls(connector.OpUploadAttachment))

	// The attachment reached the API through its own upload only.
	remote, ok := conn.GetDraft("user", st.APIMessageID)
	require.True(t, ok)
	require.Len(t, remote.Attachments, 1)

	uploaded := remote.Attachments[0]
	require.NotEqual(t, localAttachment.ID, uploaded.ID)
	require.Equal(t, localAttachment.Name, uploaded.Name)

	data, ok := conn.GetAttachmentData(uploaded.ID)
	require.True(t, ok)
	require.Equal(t, []byte("data packet"), data)

	require.Equal(t, draft.AttachmentState{
		ID:              localID,
		AttachmentID:    localAttachment.ID,
		APIAttachmentID: uploaded.ID,
		SyncState:       draft.AttachmentUploaded,
	}, env.getAttachmentState(t, localID, localAttachment.ID))

	// The local draft refers to the attachment by the id the API assigned.
	found, err := env.resolver.Find(ctx, localID)
	require.NoError(t, err)
	require.Len(t, found.Attachments, 1)
	require.Equal(t, uploaded.ID, found.Attachments[0].ID)

	// The uploaded content is no longer kept on the device.
	_, err = env.drafts.GetAttachment(localID, localAttachment.ID)
	require.True(t, store.IsErrNotFound(err))

	require.False(t, env.tracker.UploadRequired(ctx, localID))

	// Later pushes leave the uploaded attachment alone.
	require.NoError(t, env.remote.Upload(ctx, localID))
	require.Equal(t, 1, conn.Calls(connector.OpUploadAttachment))

	remote, ok = conn.GetDraft("user", st.APIMessageID)
	require.True(t, ok)
	require.Equal(t, []string{uploaded.ID}, []string{remote.Attachments[0].ID})
}

func TestUpload_UploadsLocalAttachmentsAfterUpdate(t *testing.T) {
	ctx := context.Background()
	conn := connector.NewDummy()
	env := newTestEnv(t, conn)

	env.storeDraft(t, localID, "body")
	require.NoError(t, env.remote.Upload(ctx, localID))

	env.storeLocalAttachment(t, localID, localAttachment, []byte("data packet"))
	require.True(t, env.tracker.UploadRequired(ctx, localID))

	require.NoError(t, env.remote.Sync(ctx, localID))
	require.Equal(t, 1, conn.Calls(connector.OpUpdateDraft))
	require.Equal(t, 1, conn.Calls(connector.OpUploadAttachment))
	require.Equal(t, draft.AttachmentUploaded, env.getAttachmentState(t, localID, localAttachment.ID).SyncState)

	require.Equal(t, []events.Event{
		events.DraftUploaded{ID: localID, APIMessageID: env.getState(t, localID).APIMessageID, Created: true},
		events.DraftUploaded{ID: localID, APIMessageID: env.getState(t, localID).APIMessageID},
	}, env.uploadEvents())
}

func TestUpload_ParentAttachmentsAreNotUploaded(t *testing.T) {
	ctx := context.Background()
	conn := connector.NewDummy()
	env := newTestEnv(t, conn)

	d := env.storeDraft(t, localID, "body")
	d.Attachments = []draft.Attachment{{ID: "parent-att", Name: "photo.png", MIMEType: "image/png"}}
	require.NoError(t, env.drafts.Put(d))
	require.NoError(t, env.states.StoreParentAttachments(ctx, localID, "parent-att"))

	require.NoError(t, env.remote.Upload(ctx, localID))
	require.Zero(t, conn.Calls(connector.OpUploadAttachment))

	require.Equal(t, draft.AttachmentState{
		ID:              localID,
		AttachmentID:    "parent-att",
		APIAttachmentID: "parent-att",
		SyncState:       draft.AttachmentParentUploaded,
	}, env.getAttachmentState(t, localID, "parent-att"))

	// The parent attachment was sent along with the draft itself.
	remote, ok := conn.GetDraft("user", env.getState(t, localID).APIMessageID)
	require.True(t, ok)
	require.Len(t, remote.Attachments, 1)
	require.Equal(t, "parent-att", remote.Attachments[0].ID)

	require.NoError(t, env.remote.Upload(ctx, localID))
	require.Zero(t, conn.Calls(connector.OpUploadAttachment))
	require.Equal(t, draft.AttachmentParentUploaded, env.getAttachmentState(t, localID, "parent-att").SyncState)
}

func TestUpload_AttachmentFailures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind draft.SendingErrorKind
	}{
		{
			name:     "rejected",
			err:      &connector.APIError{Status: 413, Code: 2024, Message: "attachment too large"},
			wantKind: draft.SendingErrorOther,
		},
		{
			name:     "already sent",
			err:      &connector.APIError{Status: 422, Code: connector.CodeMessageUpdateDraftNotDraft, Message: "Message is not a draft"},
			wantKind: draft.SendingErrorMessageAlreadySent,
		},
	}

	for _, test := range tests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			ctx := context.Background()
			conn := connector.NewDummy()
			env := newTestEnv(t, conn)

			env.storeDraft(t, localID, "body")
			env.storeLocalAttachment(t, localID, localAttachment, []byte("data packet"))

			conn.FailNext(connector.OpUploadAttachment, test.err)

			err := env.remote.Upload(ctx, localID)
			require.ErrorIs(t, err, test.err)
			require.True(t, connector.IsAttachmentUploadError(err))

			// The draft itself was created, only its attachment is missing.
			st := env.getState(t, localID)
			require.True(t, st.IsKnownToAPI())
			require.Equal(t, draft.ErrorUploadAttachments, st.SyncState)
			require.NotNil(t, st.SendingError)
			require.Equal(t, test.wantKind, st.SendingError.Kind)

			uploadEvents := env.uploadEvents()
			require.Len(t, uploadEvents, 2)
			require.IsType(t, events.DraftUploaded{}, uploadEvents[0])
			require.IsType(t, events.DraftUploadFailed{}, uploadEvents[1])

			require.Equal(t, draft.AttachmentLocal, env.getAttachmentState(t, localID, localAttachment.ID).SyncState)

			data, err := env.drafts.GetAttachment(localID, localAttachment.ID)
			require.NoError(t, err)
			require.Equal(t, []byte("data packet"), data)
		})
	}
}

func TestUpload_AttachmentRetriedOnNextSync(t *testing.T) {
	ctx := context.Background()
	conn := connector.NewDummy()
	env := newTestEnv(t, conn)

	env.storeDraft(t, localID, "body")
	env.storeLocalAttachment(t, localID, localAttachment, []byte("data packet"))

	conn.FailNext(connector.OpUploadAttachment, &connector.APIError{Status: 503, Message: "unavailable", Retryable: true})

	require.Error(t, env.remote.Upload(ctx, localID))
	require.Equal(t, draft.ErrorUploadAttachments, env.getState(t, localID).SyncState)

	// A draft in error is not synchronized, so the next sync pushes it again.
	require.True(t, env.tracker.UploadRequired(ctx, localID))
	require.NoError(t, env.remote.Sync(ctx, localID))

	require.Equal(t, draft.Synchronized, env.getState(t, localID).SyncState)
	require.Equal(t, 2, conn.Calls(connector.OpUploadAttachment))
	require.Equal(t, draft.AttachmentUploaded, env.getAttachmentState(t, localID, localAttachment.ID).SyncState)
}

func TestUpload_AttachmentWithoutContent(t *testing.T) {
	ctx := context.Background()
	conn := connector.NewDummy()
	env := newTestEnv(t, conn)

	env.storeDraft(t, localID, "body")
	env.storeLocalAttachment(t, localID, localAttachment, nil)

	require.Error(t, env.remote.Upload(ctx, localID))
	require.Zero(t, conn.Calls(connector.OpUploadAttachment))
	require.Equal(t, draft.ErrorUploadAttachments, env.getState(t, localID).SyncState)
}

func TestUpload_AttachmentRemovedFromDraft(t *testing.T) {
	ctx := context.Background()
	conn := connector.NewDummy()
	env := newTestEnv(t, conn)

	env.storeDraft(t, localID, "body")

	_, err := env.states.CreateOrUpdateLocalAttachment(ctx, localID, "local-att-gone")
	require.NoError(t, err)

	err = env.remote.Upload(ctx, localID)
	require.ErrorIs(t, err, ErrAttachmentNotFound)
	require.Zero(t, conn.Calls(connector.OpUploadAttachment))
	require.Equal(t, draft.ErrorUploadAttachments, env.getState(t, localID).SyncState)
}

func TestUpload_ExpiredContextLeavesStateUntouched(t *testing.T) {
	conn := connector.NewDummy()
	conn.SetLatency(time.Second)

	env := newTestEnv(t, conn)
	env.storeDraft(t, localID, "body")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.ErrorIs(t, env.remote.Upload(ctx, localID), context.DeadlineExceeded)

	st := env.getState(t, localID)
	require.Equal(t, draft.Local, st.SyncState)
	require.Nil(t, st.SendingError)
	require.Empty(t, env.uploadEvents())
}

func TestWithoutPendingAttachments(t *testing.T) {
	d := draft.NewEmpty(localID, draft.Sender{Address: "alice@pm.me"}, "address")
	d.Attachments = []draft.Attachment{{ID: "local-att-1"}, {ID: "uploaded"}, {ID: "parent"}}

	atts := []draft.AttachmentState{
		{ID: localID, AttachmentID: "local-att-1", SyncState: draft.AttachmentLocal},
		{ID: localID, AttachmentID: "uploaded", APIAttachmentID: "uploaded", SyncState: draft.AttachmentUploaded},
		{ID: localID, AttachmentID: "parent", APIAttachmentID: "parent", SyncState: draft.AttachmentParent},
	}

	payload := withoutPendingAttachments(d, atts)
	require.Equal(t, []draft.Attachment{{ID: "uploaded"}, {ID: "parent"}}, payload.Attachments)

	// The local draft keeps all its attachments.
	require.Len(t, d.Attachments, 3)
	require.Equal(t, d, withoutPendingAttachments(d, nil))
}
