package draft

import "fmt"

// AttachmentSyncState is the position of one attachment of a draft in its upload lifecycle.
type AttachmentSyncState int

const (
	// AttachmentLocal attachments were added on the device and their content was not uploaded yet.
	AttachmentLocal AttachmentSyncState = iota
	AttachmentUploaded

	// AttachmentParent attachments were copied from the message the draft replies to or forwards.
	// The API already holds their content: they are attached by the next upload of the draft.
	AttachmentParent
	AttachmentParentUploaded
)

func (s AttachmentSyncState) String() string {
	switch s {
	case AttachmentLocal:
		return "Local"

	case AttachmentUploaded:
		return "Uploaded"

	case AttachmentParent:
		return "Parent"

	case AttachmentParentUploaded:
		return "ParentUploaded"

	default:
		return fmt.Sprintf("AttachmentSyncState(%d)", int(s))
	}
}

func (s AttachmentSyncState) IsValid() bool {
	return s >= AttachmentLocal && s <= AttachmentParentUploaded
}

// AttachmentState is the persisted upload record of an attachment of a draft.
type AttachmentState struct {
	// ID is the identity of the draft the attachment belongs to.
	ID ID

	AttachmentID string

	// APIAttachmentID is empty until the attachment content was uploaded.
	APIAttachmentID string

	SyncState AttachmentSyncState
}
