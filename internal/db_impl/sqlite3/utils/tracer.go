package utils

import (
	"context"

	"github.com/ProtonMail/draftsync/db"
	"github.com/ProtonMail/draftsync/draft"
	"github.com/sirupsen/logrus"
)

// ReadTracer prints all method names to a trace log.
type ReadTracer struct {
	RD    db.ReadOnly
	Entry *logrus.Entry
}

func (r ReadTracer) GetDraftState(ctx context.Context, id draft.ID) (draft.State, error) {
	r.Entry.Tracef("GetDraftState")

	return r.RD.GetDraftState(ctx, id)
}

func (r ReadTracer) GetDraftStateByAPIMessageID(ctx context.Context, userID draft.UserID, apiMessageID draft.MessageID) (draft.State, error) {
	r.Entry.Tracef("GetDraftStateByAPIMessageID")

	return r.RD.GetDraftStateByAPIMessageID(ctx, userID, apiMessageID)
}

func (r ReadTracer) GetDraftStates(ctx context.Context, userID draft.UserID) ([]draft.State, error) {
	r.Entry.Tracef("GetDraftStates")

	return r.RD.GetDraftStates(ctx, userID)
}

func (r ReadTracer) GetDraftStatesWithSyncState(ctx context.Context, userID draft.UserID, state draft.SyncState) ([]draft.State, error) {
	r.Entry.Tracef("GetDraftStatesWithSyncState")

	return r.RD.GetDraftStatesWithSyncState(ctx, userID, state)
}

// WriteTracer prints all method names to a trace log.
type WriteTracer struct {
	ReadTracer
	TX db.Transaction
}

func (w WriteTracer) CreateDraftState(ctx context.Context, state draft.State) error {
	w.Entry.Tracef("CreateDraftState")

	return w.TX.CreateDraftState(ctx, state)
}

func (w WriteTracer) UpdateDraftState(ctx context.Context, state draft.State) error {
	w.Entry.Tracef("UpdateDraftState")

	return w.TX.UpdateDraftState(ctx, state)
}

func (w WriteTracer) DeleteDraftState(ctx context.Context, ids ...draft.ID) error {
	w.Entry.Tracef("DeleteDraftState")

	return w.TX.DeleteDraftState(ctx, ids...)
}

func (w WriteTracer) DeleteDraftStatesForUser(ctx context.Context, userID draft.UserID) error {
	w.Entry.Tracef("DeleteDraftStatesForUser")

	return w.TX.DeleteDraftStatesForUser(ctx, userID)
}

func (r ReadTracer) GetAttachmentStates(ctx context.Context, id draft.ID) ([]draft.AttachmentState, error) {
	r.Entry.Tracef("GetAttachmentStates")

	return r.RD.GetAttachmentStates(ctx, id)
}

func (w WriteTracer) UpsertAttachmentState(ctx context.Context, state draft.AttachmentState) error {
	w.Entry.Tracef("UpsertAttachmentState")

	return w.TX.UpsertAttachmentState(ctx, state)
}

func (w WriteTracer) DeleteAttachmentStates(ctx context.Context, id draft.ID, attachmentIDs ...string) error {
	w.Entry.Tracef("DeleteAttachmentStates")

	return w.TX.DeleteAttachmentStates(ctx, id, attachmentIDs...)
}

func (w WriteTracer) DeleteAttachmentStatesForDraft(ctx context.Context, ids ...draft.ID) error {
	w.Entry.Tracef("DeleteAttachmentStatesForDraft")

	return w.TX.DeleteAttachmentStatesForDraft(ctx, ids...)
}

func (w WriteTracer) DeleteAttachmentStatesForUser(ctx context.Context, userID draft.UserID) error {
	w.Entry.Tracef("DeleteAttachmentStatesForUser")

	return w.TX.DeleteAttachmentStatesForUser(ctx, userID)
}
