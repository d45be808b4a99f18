package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/ProtonMail/draftsync/connector"
	"github.com/ProtonMail/draftsync/draft"
	"github.com/ProtonMail/draftsync/events"
	"github.com/ProtonMail/draftsync/internal/utils"
	"github.com/ProtonMail/draftsync/observability"
	"github.com/ProtonMail/draftsync/observability/metrics"
	"github.com/ProtonMail/draftsync/reporter"
	"github.com/bradenaw/juniper/sets"
	"github.com/bradenaw/juniper/xslices"
	"github.com/sirupsen/logrus"
)

// ErrAttachmentNotFound is returned when an attachment waiting for upload is no longer part of the local draft.
var ErrAttachmentNotFound = errors.New("attachment not found in local draft")

// uploadAttachments uploads the content of the attachments added on the device to the draft the API knows.
// Attachments copied from the parent message were attached by the draft push itself.
// It returns the local draft with the ids the API assigned to the uploaded attachments.
func (d *Drafts) uploadAttachments(
	ctx context.Context,
	entry *logrus.Entry,
	st draft.State,
	snapshot draft.Draft,
	atts []draft.AttachmentState,
) (draft.Draft, error) {
	if xslices.IndexFunc(atts, hasSyncState(draft.AttachmentParent)) >= 0 {
		if err := d.states.SetParentAttachmentsUploaded(ctx, st.ID); err != nil {
			return snapshot, fmt.Errorf("failed to update parent attachment states: %w", err)
		}
	}

	for _, att := range xslices.Filter(atts, hasSyncState(draft.AttachmentLocal)) {
		attEntry := entry.WithField("attachmentID", utils.ShortID(att.AttachmentID))

		uploaded, err := d.uploadAttachment(ctx, st, snapshot, att.AttachmentID)
		if err != nil {
			return snapshot, d.handleAttachmentFailure(ctx, attEntry, st.ID, att.AttachmentID, err)
		}

		next := snapshot.Clone()
		next.Attachments = xslices.Map(next.Attachments, func(other draft.Attachment) draft.Attachment {
			if other.ID == att.AttachmentID {
				return uploaded
			}

			return other
		})

		if err := d.drafts.Put(next); err != nil {
			observability.AddStateMetric(ctx, metrics.GenerateFailedToStoreDraftMetric())
			return snapshot, fmt.Errorf("failed to store uploaded attachment: %w", err)
		}

		snapshot = next

		if _, err := d.states.SetAttachmentUploaded(ctx, st.ID, att.AttachmentID, uploaded.ID); err != nil {
			return snapshot, fmt.Errorf("failed to update attachment state: %w", err)
		}

		if err := d.drafts.DeleteAttachments(st.ID, att.AttachmentID); err != nil {
			attEntry.WithError(err).Warn("Failed to delete uploaded attachment content")
		}

		attEntry.WithField("apiAttachmentID", utils.ShortID(uploaded.ID)).Debug("Attachment uploaded")
	}

	return snapshot, nil
}

func (d *Drafts) uploadAttachment(ctx context.Context, st draft.State, snapshot draft.Draft, attachmentID string) (draft.Attachment, error) {
	idx := xslices.IndexFunc(snapshot.Attachments, func(att draft.Attachment) bool {
		return att.ID == attachmentID
	})
	if idx < 0 {
		return draft.Attachment{}, ErrAttachmentNotFound
	}

	data, err := d.drafts.GetAttachment(st.ID, attachmentID)
	if err != nil {
		return draft.Attachment{}, fmt.Errorf("failed to read attachment content: %w", err)
	}

	return d.conn.UploadAttachment(ctx, st.ID.UserID, st.APIMessageID, snapshot.Attachments[idx], data)
}

func (d *Drafts) handleAttachmentFailure(ctx context.Context, entry *logrus.Entry, id draft.ID, attachmentID string, err error) error {
	err = &connector.AttachmentUploadError{AttachmentID: attachmentID, Err: err}

	if canceled(ctx, err) {
		return err
	}

	sendErr := &draft.SendingError{Kind: draft.SendingErrorOther, Message: err.Error()}

	if errors.Is(err, connector.ErrMessageAlreadySent) {
		sendErr = &draft.SendingError{Kind: draft.SendingErrorMessageAlreadySent}
	}

	entry.WithError(err).Warn("Failed to upload attachment")

	reporter.ExceptionWithContext(ctx, "Failed to upload attachment", reporter.DraftContext(id, err))

	observability.AddUploadMetric(ctx, metrics.GenerateFailedToUploadAttachmentsMetric())

	d.publish(events.DraftUploadFailed{ID: id, Error: err})

	if _, serr := d.states.SetSyncState(ctx, id, draft.ErrorUploadAttachments, sendErr); serr != nil {
		entry.WithError(serr).Error("Failed to record attachment upload failure")
	}

	return err
}

// withoutPendingAttachments returns the draft without the attachments whose content was not uploaded yet.
// They are attached to the draft by their own upload.
func withoutPendingAttachments(d draft.Draft, atts []draft.AttachmentState) draft.Draft {
	pending := make(sets.Map[string])

	for _, att := range xslices.Filter(atts, hasSyncState(draft.AttachmentLocal)) {
		pending.Add(att.AttachmentID)
	}

	if pending.Len() == 0 {
		return d
	}

	payload := d.Clone()
	payload.Attachments = xslices.Filter(payload.Attachments, func(att draft.Attachment) bool {
		return !pending.Contains(att.ID)
	})

	return payload
}

func hasSyncState(syncState draft.AttachmentSyncState) func(draft.AttachmentState) bool {
	return func(att draft.AttachmentState) bool {
		return att.SyncState == syncState
	}
}
