package events

import "github.com/ProtonMail/draftsync/draft"

type ContinuousUploadStarted struct {
	eventBase

	ID     draft.ID
	Action draft.Action
}

func (e ContinuousUploadStarted) DraftID() draft.ID {
	return e.ID
}

type ContinuousUploadStopped struct {
	eventBase

	ID draft.ID
}

func (e ContinuousUploadStopped) DraftID() draft.ID {
	return e.ID
}
