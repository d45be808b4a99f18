// Package draftsync keeps the drafts edited on the device synchronized with the API.
package draftsync

import (
	"errors"

	"github.com/ProtonMail/draftsync/connector"
	"github.com/ProtonMail/draftsync/db"
	"github.com/ProtonMail/draftsync/internal/remote"
	"github.com/ProtonMail/draftsync/internal/resolver"
)

var (
	ErrNoConnector = errors.New("no connector configured")
	ErrClosed      = errors.New("draft syncer is closed")
	ErrNoDataDir   = errors.New("no data directory configured")

	// ErrActionWithNoParent is returned when parent attachments are stored for a draft composed from scratch.
	ErrActionWithNoParent = errors.New("draft action has no parent message")

	// ErrNoAttachmentsToStore is returned when none of the parent attachments is carried over by the action.
	ErrNoAttachmentsToStore = errors.New("no parent attachments to store")
)

// IsDraftNotFound returns true if no local content exists for the draft under any of its identifiers.
func IsDraftNotFound(err error) bool {
	return errors.Is(err, resolver.ErrDraftNotFound)
}

// IsAttachmentNotFound returns true if the local draft has no attachment with the given id.
func IsAttachmentNotFound(err error) bool {
	return errors.Is(err, remote.ErrAttachmentNotFound)
}

// IsNoSuchDraftState returns true if no sync state is stored for the draft.
func IsNoSuchDraftState(err error) bool {
	return errors.Is(err, db.ErrNotFound)
}

// IsCreateDraftRequestNotPerformed returns true if a draft was not created on the API because it has no body yet.
func IsCreateDraftRequestNotPerformed(err error) bool {
	return errors.Is(err, connector.ErrCreateDraftRequestNotPerformed)
}

// IsMessageAlreadySent returns true if the API refused to update a draft because it was sent.
func IsMessageAlreadySent(err error) bool {
	return errors.Is(err, connector.ErrMessageAlreadySent)
}
