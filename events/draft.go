package events

import "github.com/ProtonMail/draftsync/draft"

// DraftStateChanged is published every time the persisted sync state of a draft is written.
type DraftStateChanged struct {
	eventBase

	State draft.State
}

func (e DraftStateChanged) DraftID() draft.ID {
	return e.State.ID
}

// DraftStateDeleted is published when the sync state of a discarded draft is removed.
type DraftStateDeleted struct {
	eventBase

	ID draft.ID
}

func (e DraftStateDeleted) DraftID() draft.ID {
	return e.ID
}

type DraftUploaded struct {
	eventBase

	ID           draft.ID
	APIMessageID draft.MessageID

	// Created is true if the upload created the draft on the API.
	Created bool
}

func (e DraftUploaded) DraftID() draft.ID {
	return e.ID
}

type DraftUploadFailed struct {
	eventBase

	ID    draft.ID
	Error error
}

func (e DraftUploadFailed) DraftID() draft.ID {
	return e.ID
}
