package draftsync

import (
	"context"
	"fmt"

	"github.com/ProtonMail/draftsync/body"
	"github.com/ProtonMail/draftsync/draft"
	"github.com/ProtonMail/draftsync/internal/remote"
	"github.com/ProtonMail/draftsync/observability"
	"github.com/ProtonMail/draftsync/observability/metrics"
	"github.com/ProtonMail/gopenpgp/v2/crypto"
	"github.com/bradenaw/juniper/sets"
	"github.com/bradenaw/juniper/xslices"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
)

// StoreAttachment encrypts the attachment with the address key ring and adds it to the local draft.
// The encrypted content stays on the device until the next upload of the draft pushes it to the API.
func (s *Syncer) StoreAttachment(
	ctx context.Context,
	userID draft.UserID,
	messageID draft.MessageID,
	name, mimeType string,
	data []byte,
	kr *crypto.KeyRing,
) (draft.Attachment, error) {
	var stored draft.Attachment

	if err := s.whileOpen(func() (err error) {
		stored, err = s.storeAttachment(s.context(ctx), draft.NewID(userID, messageID), name, mimeType, data, kr)
		return err
	}); err != nil {
		return draft.Attachment{}, err
	}

	return stored, nil
}

func (s *Syncer) storeAttachment(
	ctx context.Context,
	id draft.ID,
	name, mimeType string,
	data []byte,
	kr *crypto.KeyRing,
) (draft.Attachment, error) {
	enc, err := body.EncryptAttachment(kr, name, data)
	if err != nil {
		return draft.Attachment{}, err
	}

	att := draft.Attachment{
		ID:         draft.NewLocalAttachmentID(),
		Name:       name,
		MIMEType:   mimeType,
		Size:       int64(len(data)),
		KeyPackets: enc.KeyPackets,
		Signature:  enc.Signature,
	}

	if err := s.remote.Edit(id, func() error {
		d, err := s.resolver.Find(ctx, id)
		if err != nil {
			return err
		}

		if err := s.drafts.PutAttachment(id, att.ID, enc.DataPacket); err != nil {
			return fmt.Errorf("failed to store attachment content: %w", err)
		}

		d.Attachments = append(d.Attachments, att)

		if err := s.drafts.Put(d); err != nil {
			observability.AddStateMetric(ctx, metrics.GenerateFailedToStoreDraftMetric())
			return fmt.Errorf("failed to store draft: %w", err)
		}

		if _, err := s.states.CreateOrUpdateLocalAttachment(ctx, id, att.ID); err != nil {
			return fmt.Errorf("failed to store attachment state: %w", err)
		}

		return nil
	}); err != nil {
		return draft.Attachment{}, err
	}

	logrus.WithField("pkg", "draftsync").
		WithField("messageID", id.MessageID.ShortID()).
		WithField("size", att.Size).
		Debug("Attachment stored")

	return att, nil
}

// DeleteAttachment removes the attachment from the local draft, by the id it was stored with or the id the API
// assigned to it. The API copy is removed by the next upload of the draft.
func (s *Syncer) DeleteAttachment(ctx context.Context, userID draft.UserID, messageID draft.MessageID, attachmentID string) error {
	return s.whileOpen(func() error {
		return s.deleteAttachment(s.context(ctx), draft.NewID(userID, messageID), attachmentID)
	})
}

func (s *Syncer) deleteAttachment(ctx context.Context, id draft.ID, attachmentID string) error {
	return s.remote.Edit(id, func() error {
		d, err := s.resolver.Find(ctx, id)
		if err != nil {
			return err
		}

		atts, err := s.states.ListAttachments(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get attachment states: %w", err)
		}

		// The attachment may be known by the id it was created with and the id the API assigned to it.
		ids := make(sets.Map[string])
		ids.Add(attachmentID)

		for _, att := range atts {
			if att.AttachmentID == attachmentID || att.APIAttachmentID == attachmentID {
				ids.Add(att.AttachmentID)

				if att.APIAttachmentID != "" {
					ids.Add(att.APIAttachmentID)
				}
			}
		}

		kept := xslices.Filter(d.Attachments, func(att draft.Attachment) bool { return !ids.Contains(att.ID) })
		if len(kept) == len(d.Attachments) {
			return remote.ErrAttachmentNotFound
		}

		d.Attachments = kept

		if err := s.drafts.Put(d); err != nil {
			observability.AddStateMetric(ctx, metrics.GenerateFailedToStoreDraftMetric())
			return fmt.Errorf("failed to store draft: %w", err)
		}

		if err := s.drafts.DeleteAttachments(id, maps.Keys(ids)...); err != nil {
			return fmt.Errorf("failed to delete attachment content: %w", err)
		}

		if err := s.states.DeleteAttachments(ctx, id, attachmentID); err != nil {
			return fmt.Errorf("failed to delete attachment state: %w", err)
		}

		return nil
	})
}

// GetAttachmentStates returns the upload states of the attachments of the draft.
func (s *Syncer) GetAttachmentStates(ctx context.Context, userID draft.UserID, messageID draft.MessageID) ([]draft.AttachmentState, error) {
	return s.states.ListAttachments(s.context(ctx), draft.NewID(userID, messageID))
}

// StoreDraftWithParentAttachments saves the attachments of the message being replied to or forwarded into the
// local draft. A forward carries all of them, a reply only those displayed inline. The API already holds their
// content, so they are never uploaded from the device.
func (s *Syncer) StoreDraftWithParentAttachments(
	ctx context.Context,
	userID draft.UserID,
	messageID draft.MessageID,
	action draft.Action,
	sender draft.Sender,
	addressID string,
	parent []draft.Attachment,
) (draft.Draft, error) {
	var stored draft.Draft

	if err := s.whileOpen(func() (err error) {
		stored, err = s.storeDraftWithParentAttachments(s.context(ctx), draft.NewID(userID, messageID), action, sender, addressID, parent)
		return err
	}); err != nil {
		return draft.Draft{}, err
	}

	return stored, nil
}

func (s *Syncer) storeDraftWithParentAttachments(
	ctx context.Context,
	id draft.ID,
	action draft.Action,
	sender draft.Sender,
	addressID string,
	parent []draft.Attachment,
) (draft.Draft, error) {
	atts := parentAttachments(action, parent)

	switch {
	case action == draft.ActionCompose:
		return draft.Draft{}, ErrActionWithNoParent

	case len(atts) == 0:
		return draft.Draft{}, ErrNoAttachmentsToStore
	}

	var stored draft.Draft

	if err := s.remote.Edit(id, func() error {
		d, err := s.resolver.Get(ctx, id, sender, addressID)
		if err != nil {
			return err
		}

		d.Attachments = atts

		if err := s.drafts.Put(d); err != nil {
			observability.AddStateMetric(ctx, metrics.GenerateFailedToStoreDraftMetric())
			return fmt.Errorf("failed to store draft: %w", err)
		}

		stored = d

		return nil
	}); err != nil {
		return draft.Draft{}, err
	}

	if _, err := s.states.CreateIfMissing(ctx, id, action); err != nil {
		return draft.Draft{}, fmt.Errorf("failed to store draft state: %w", err)
	}

	if err := s.states.StoreParentAttachments(ctx, id, xslices.Map(atts, func(att draft.Attachment) string {
		return att.ID
	})...); err != nil {
		return draft.Draft{}, fmt.Errorf("failed to store parent attachment states: %w", err)
	}

	return stored, nil
}

// parentAttachments returns the parent attachments the action carries over, stripped of their signatures.
func parentAttachments(action draft.Action, parent []draft.Attachment) []draft.Attachment {
	if action != draft.ActionForward {
		parent = xslices.Filter(parent, draft.Attachment.IsInline)
	}

	return xslices.Map(parent, func(att draft.Attachment) draft.Attachment {
		att.Headers = maps.Clone(att.Headers)
		att.Signature = ""

		return att
	})
}
