package db

import (
	"context"

	"github.com/ProtonMail/draftsync/draft"
)

type ReadOnly interface {
	DraftStateReadOps
	AttachmentStateReadOps
}

type Transaction interface {
	ReadOnly
	DraftStateWriteOps
	AttachmentStateWriteOps
}

type DraftStateReadOps interface {
	// GetDraftState returns ErrNotFound if no state is stored for the draft.
	GetDraftState(ctx context.Context, id draft.ID) (draft.State, error)

	// GetDraftStateByAPIMessageID looks up the state of the draft the API knows under the given id.
	GetDraftStateByAPIMessageID(ctx context.Context, userID draft.UserID, apiMessageID draft.MessageID) (draft.State, error)

	GetDraftStates(ctx context.Context, userID draft.UserID) ([]draft.State, error)

	GetDraftStatesWithSyncState(ctx context.Context, userID draft.UserID, state draft.SyncState) ([]draft.State, error)
}

type DraftStateWriteOps interface {
	CreateDraftState(ctx context.Context, state draft.State) error

	// UpdateDraftState overwrites every column of an existing state. Returns ErrNotFound if there is none.
	UpdateDraftState(ctx context.Context, state draft.State) error

	DeleteDraftState(ctx context.Context, ids ...draft.ID) error

	DeleteDraftStatesForUser(ctx context.Context, userID draft.UserID) error
}

type AttachmentStateReadOps interface {
	// GetAttachmentStates returns the states of the draft's attachments, ordered by attachment id.
	GetAttachmentStates(ctx context.Context, id draft.ID) ([]draft.AttachmentState, error)
}

type AttachmentStateWriteOps interface {
	// UpsertAttachmentState creates the state of the attachment or overwrites the existing one.
	UpsertAttachmentState(ctx context.Context, state draft.AttachmentState) error

	// DeleteAttachmentStates deletes the states of the given attachments of the draft. Attachments are matched by
	// their local id or by the id the API assigned to them.
	DeleteAttachmentStates(ctx context.Context, id draft.ID, attachmentIDs ...string) error

	DeleteAttachmentStatesForDraft(ctx context.Context, ids ...draft.ID) error

	DeleteAttachmentStatesForUser(ctx context.Context, userID draft.UserID) error
}
