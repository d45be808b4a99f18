package store

import (
	"fmt"

	"github.com/ProtonMail/draftsync/draft"
)

// attachmentKey is the identity under which the content of an attachment of the draft is stored.
// It shares the key prefix of the draft's user so that DeleteUser removes it too.
func attachmentKey(id draft.ID, attachmentID string) draft.ID {
	return id.WithMessageID(draft.MessageID(fmt.Sprintf("%v/attachments/%v", id.MessageID, attachmentID)))
}

// PutAttachment stores the encrypted content of an attachment of the draft.
// Attachment content is not compressed: it is encrypted already.
func (s *DraftStore) PutAttachment(id draft.ID, attachmentID string, data []byte) error {
	return Tx(s.impl, func(tx Transaction) error {
		return tx.Set(attachmentKey(id, attachmentID), data)
	})
}

// GetAttachment returns ErrNotFound if no content is stored for the attachment.
func (s *DraftStore) GetAttachment(id draft.ID, attachmentID string) ([]byte, error) {
	return s.impl.Get(attachmentKey(id, attachmentID))
}

func (s *DraftStore) DeleteAttachments(id draft.ID, attachmentIDs ...string) error {
	keys := make([]draft.ID, 0, len(attachmentIDs))

	for _, attachmentID := range attachmentIDs {
		keys = append(keys, attachmentKey(id, attachmentID))
	}

	return s.Delete(keys...)
}
