package draft

import (
	"fmt"

	"github.com/ProtonMail/draftsync/internal/utils"
	"github.com/google/uuid"
)

type UserID string

func (u UserID) ShortID() string {
	return utils.ShortID(string(u))
}

// KeyPrefix is the storage key prefix shared by all the drafts of the user.
func (u UserID) KeyPrefix() []byte {
	return []byte(string(u) + "/")
}

// MessageID identifies a draft either by the identifier assigned locally when the draft was first composed
// or by the identifier the API returned when the draft was created remotely.
type MessageID string

// NewLocalMessageID returns a fresh client-side identifier for a draft that has not been uploaded yet.
func NewLocalMessageID() MessageID {
	return MessageID("local-" + uuid.NewString())
}

// NewLocalAttachmentID returns the identifier of an attachment added to a draft on the device.
// It is replaced by the identifier the API assigns once the attachment is uploaded.
func NewLocalAttachmentID() string {
	return "local-att-" + uuid.NewString()
}

func (m MessageID) ShortID() string {
	return utils.ShortID(string(m))
}

func (m MessageID) String() string {
	return string(m)
}

// ID is the identity of a draft: the owning user and the draft's message id.
type ID struct {
	UserID    UserID
	MessageID MessageID
}

func NewID(userID UserID, messageID MessageID) ID {
	return ID{UserID: userID, MessageID: messageID}
}

// WithMessageID returns the same user's identity for another message id.
func (id ID) WithMessageID(messageID MessageID) ID {
	return ID{UserID: id.UserID, MessageID: messageID}
}

// Key is the storage key of the draft identity.
func (id ID) Key() []byte {
	return append(id.UserID.KeyPrefix(), id.MessageID...)
}

func (id ID) String() string {
	return fmt.Sprintf("%v/%v", id.UserID.ShortID(), id.MessageID.ShortID())
}
