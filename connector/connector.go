package connector

import (
	"context"

	"github.com/ProtonMail/draftsync/draft"
)

// Connector connects the draft synchronization to the remote mail API.
type Connector interface {
	// CreateDraft creates a draft the API does not know yet. The returned draft carries the identifiers assigned by
	// the API: its message id, conversation id and attachment ids.
	CreateDraft(ctx context.Context, userID draft.UserID, d draft.Draft, action draft.Action) (draft.Draft, error)

	// UpdateDraft replaces the content of the draft the API knows under apiMessageID.
	UpdateDraft(ctx context.Context, userID draft.UserID, apiMessageID draft.MessageID, d draft.Draft) (draft.Draft, error)

	// DeleteDraft deletes the draft the API knows under apiMessageID.
	DeleteDraft(ctx context.Context, userID draft.UserID, apiMessageID draft.MessageID) error

	// UploadAttachment uploads the encrypted content of an attachment and attaches it to the draft the API knows
	// under apiMessageID. The returned attachment carries the id assigned by the API.
	UploadAttachment(
		ctx context.Context,
		userID draft.UserID,
		apiMessageID draft.MessageID,
		att draft.Attachment,
		dataPacket []byte,
	) (draft.Attachment, error)
}
