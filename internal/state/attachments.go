package state

import (
	"context"

	"github.com/ProtonMail/draftsync/db"
	"github.com/ProtonMail/draftsync/draft"
)

// ListAttachments returns the upload states of the draft's attachments.
func (r *Repository) ListAttachments(ctx context.Context, id draft.ID) ([]draft.AttachmentState, error) {
	return db.ClientReadType(ctx, r.client, func(ctx context.Context, rd db.ReadOnly) ([]draft.AttachmentState, error) {
		return rd.GetAttachmentStates(ctx, id)
	})
}

// CreateOrUpdateLocalAttachment records that the attachment content must be uploaded with the next push.
func (r *Repository) CreateOrUpdateLocalAttachment(ctx context.Context, id draft.ID, attachmentID string) (draft.AttachmentState, error) {
	state := draft.AttachmentState{
		ID:           id,
		AttachmentID: attachmentID,
		SyncState:    draft.AttachmentLocal,
	}

	if err := r.client.Write(ctx, func(ctx context.Context, tx db.Transaction) error {
		return tx.UpsertAttachmentState(ctx, state)
	}); err != nil {
		return draft.AttachmentState{}, err
	}

	return state, nil
}

// StoreParentAttachments records attachments copied from the parent message. The API already holds them under
// the same ids.
func (r *Repository) StoreParentAttachments(ctx context.Context, id draft.ID, attachmentIDs ...string) error {
	return r.client.Write(ctx, func(ctx context.Context, tx db.Transaction) error {
		for _, attachmentID := range attachmentIDs {
			if err := tx.UpsertAttachmentState(ctx, draft.AttachmentState{
				ID:              id,
				AttachmentID:    attachmentID,
				APIAttachmentID: attachmentID,
				SyncState:       draft.AttachmentParent,
			}); err != nil {
				return err
			}
		}

		return nil
	})
}

// SetAttachmentUploaded records the id the API assigned to the uploaded attachment.
func (r *Repository) SetAttachmentUploaded(
	ctx context.Context,
	id draft.ID,
	attachmentID, apiAttachmentID string,
) (draft.AttachmentState, error) {
	state := draft.AttachmentState{
		ID:              id,
		AttachmentID:    attachmentID,
		APIAttachmentID: apiAttachmentID,
		SyncState:       draft.AttachmentUploaded,
	}

	if err := r.client.Write(ctx, func(ctx context.Context, tx db.Transaction) error {
		return tx.UpsertAttachmentState(ctx, state)
	}); err != nil {
		return draft.AttachmentState{}, err
	}

	return state, nil
}

// SetParentAttachmentsUploaded records that the parent attachments of the draft were attached by its last push.
func (r *Repository) SetParentAttachmentsUploaded(ctx context.Context, id draft.ID) error {
	return r.client.Write(ctx, func(ctx context.Context, tx db.Transaction) error {
		states, err := tx.GetAttachmentStates(ctx, id)
		if err != nil {
			return err
		}

		for _, state := range states {
			if state.SyncState != draft.AttachmentParent {
				continue
			}

			state.SyncState = draft.AttachmentParentUploaded

			if err := tx.UpsertAttachmentState(ctx, state); err != nil {
				return err
			}
		}

		return nil
	})
}

// DeleteAttachments deletes the states of the given attachments, known by their local or API id.
func (r *Repository) DeleteAttachments(ctx context.Context, id draft.ID, attachmentIDs ...string) error {
	return r.client.Write(ctx, func(ctx context.Context, tx db.Transaction) error {
		return tx.DeleteAttachmentStates(ctx, id, attachmentIDs...)
	})
}
