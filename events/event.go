// Package events holds the events published while drafts are synchronized.
package events

import "github.com/ProtonMail/draftsync/draft"

type Event interface {
	// DraftID is the local identity of the draft the event is about.
	DraftID() draft.ID

	_isEvent()
}

type eventBase struct{}

func (eventBase) _isEvent() {}
