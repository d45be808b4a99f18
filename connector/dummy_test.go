package connector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ProtonMail/draftsync/draft"
	"github.com/stretchr/testify/require"
)

func newTestDraft() draft.Draft {
	d := draft.NewEmpty(draft.NewID("user", "local-1"), draft.Sender{Address: "alice@pm.me"}, "address")

	d.Subject = "Subject"
	d.Body = "body"
	d.Attachments = []draft.Attachment{{Name: "a.txt", MIMEType: "text/plain"}}

	return d
}

func TestDummy_CreateAndUpdateDraft(t *testing.T) {
	ctx := context.Background()
	conn := NewDummy()

	created, err := conn.CreateDraft(ctx, "user", newTestDraft(), draft.ActionReply)
	require.NoError(t, err)
	require.NotEqual(t, draft.MessageID("local-1"), created.ID.MessageID)
	require.NotEmpty(t, created.ConversationID)
	require.NotEmpty(t, created.Attachments[0].ID)

	remote, ok := conn.GetDraft("user", created.ID.MessageID)
	require.True(t, ok)
	require.True(t, created.Equal(remote))

	changed := created.Clone()
	changed.Subject = "Other"

	updated, err := conn.UpdateDraft(ctx, "user", created.ID.MessageID, changed)
	require.NoError(t, err)
	require.Equal(t, "Other", updated.Subject)
	require.Equal(t, created.ConversationID, updated.ConversationID)
	require.Equal(t, created.Attachments[0].ID, updated.Attachments[0].ID)

	require.Len(t, conn.GetDrafts("user"), 1)
	require.Empty(t, conn.GetDrafts("other"))
	require.Equal(t, 1, conn.Calls(OpCreateDraft))
	require.Equal(t, 1, conn.Calls(OpUpdateDraft))
}

func TestDummy_UpdateSentDraft(t *testing.T) {
	ctx := context.Background()
	conn := NewDummy()

	created, err := conn.CreateDraft(ctx, "user", newTestDraft(), draft.ActionCompose)
	require.NoError(t, err)

	require.NoError(t, conn.MarkSent("user", created.ID.MessageID))

	_, err = conn.UpdateDraft(ctx, "user", created.ID.MessageID, created)
	require.ErrorIs(t, err, ErrMessageAlreadySent)
}

func TestDummy_UpdateAndDeleteMissingDraft(t *testing.T) {
	ctx := context.Background()
	conn := NewDummy()

	_, err := conn.UpdateDraft(ctx, "user", "missing", newTestDraft())
	require.ErrorIs(t, err, ErrDraftNotFound)

	require.ErrorIs(t, conn.DeleteDraft(ctx, "user", "missing"), ErrDraftNotFound)
}

func TestDummy_DeleteDraft(t *testing.T) {
	ctx := context.Background()
	conn := NewDummy()

	created, err := conn.CreateDraft(ctx, "user", newTestDraft(), draft.ActionCompose)
	require.NoError(t, err)

	require.NoError(t, conn.DeleteDraft(ctx, "user", created.ID.MessageID))

	_, ok := conn.GetDraft("user", created.ID.MessageID)
	require.False(t, ok)
}

func TestDummy_FailNext(t *testing.T) {
	ctx := context.Background()
	conn := NewDummy()

	first, second := errors.New("first"), &APIError{Status: 503, Retryable: true}

	conn.FailNext(OpCreateDraft, first, second)

	_, err := conn.CreateDraft(ctx, "user", newTestDraft(), draft.ActionCompose)
	require.ErrorIs(t, err, first)

	_, err = conn.CreateDraft(ctx, "user", newTestDraft(), draft.ActionCompose)
	require.True(t, IsRetryable(err))

	_, err = conn.CreateDraft(ctx, "user", newTestDraft(), draft.ActionCompose)
	require.NoError(t, err)

	require.Equal(t, 3, conn.Calls(OpCreateDraft))
	require.Len(t, conn.GetDrafts("user"), 1)
}

func TestDummy_LatencyHonoursContext(t *testing.T) {
	conn := NewDummy()
	conn.SetLatency(time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := conn.CreateDraft(ctx, "user", newTestDraft(), draft.ActionCompose)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Empty(t, conn.GetDrafts("user"))
}

func TestDummy_UploadAttachment(t *testing.T) {
	ctx := context.Background()
	conn := NewDummy()

	created, err := conn.CreateDraft(ctx, "user", newTestDraft(), draft.ActionCompose)
	require.NoError(t, err)

	local := draft.Attachment{ID: "local-att-1", Name: "b.pdf", MIMEType: "application/pdf", KeyPackets: "keys"}

	uploaded, err := conn.UploadAttachment(ctx, "user", created.ID.MessageID, local, []byte("data"))
	require.NoError(t, err)
	require.NotEqual(t, local.ID, uploaded.ID)
	require.Equal(t, local.Name, uploaded.Name)
	require.Equal(t, local.KeyPackets, uploaded.KeyPackets)

	data, ok := conn.GetAttachmentData(uploaded.ID)
	require.True(t, ok)
	require.Equal(t, []byte("data"), data)

	// The attachment is added to the remote draft.
	remote, ok := conn.GetDraft("user", created.ID.MessageID)
	require.True(t, ok)
	require.Len(t, remote.Attachments, 2)
	require.True(t, uploaded.Equal(remote.Attachments[1]))

	_, err = conn.UploadAttachment(ctx, "user", "missing", local, []byte("data"))
	require.ErrorIs(t, err, ErrDraftNotFound)

	require.NoError(t, conn.MarkSent("user", created.ID.MessageID))

	_, err = conn.UploadAttachment(ctx, "user", created.ID.MessageID, local, []byte("data"))
	require.ErrorIs(t, err, ErrMessageAlreadySent)

	require.Equal(t, 3, conn.Calls(OpUploadAttachment))
}
