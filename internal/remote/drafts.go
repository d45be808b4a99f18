// Package remote pushes local drafts to the API and records the outcome in the draft sync state.
package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/ProtonMail/draftsync/connector"
	"github.com/ProtonMail/draftsync/db"
	"github.com/ProtonMail/draftsync/draft"
	"github.com/ProtonMail/draftsync/events"
	"github.com/ProtonMail/draftsync/internal/resolver"
	"github.com/ProtonMail/draftsync/internal/state"
	"github.com/ProtonMail/draftsync/internal/tracker"
	"github.com/ProtonMail/draftsync/observability"
	"github.com/ProtonMail/draftsync/observability/metrics"
	"github.com/ProtonMail/draftsync/reporter"
	"github.com/ProtonMail/draftsync/store"
	"github.com/bradenaw/juniper/xslices"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// Drafts uploads drafts through the connector. Uploads of the same draft never run concurrently.
type Drafts struct {
	conn     connector.Connector
	drafts   *store.DraftStore
	states   *state.Repository
	resolver *resolver.Resolver
	tracker  *tracker.Tracker
	publish  func(events.Event)

	locks *lockTable
}

func New(
	conn connector.Connector,
	drafts *store.DraftStore,
	states *state.Repository,
	resolver *resolver.Resolver,
	tracker *tracker.Tracker,
	publish func(events.Event),
) *Drafts {
	if publish == nil {
		publish = func(events.Event) {}
	}

	return &Drafts{
		conn:     conn,
		drafts:   drafts,
		states:   states,
		resolver: resolver,
		tracker:  tracker,
		publish:  publish,
		locks:    newLockTable(),
	}
}

// Sync uploads the draft if the tracker reports local changes which the API does not have yet.
func (d *Drafts) Sync(ctx context.Context, id draft.ID) error {
	if !d.tracker.UploadRequired(ctx, id) {
		return nil
	}

	return d.Upload(ctx, id)
}

// Upload pushes the local draft to the API, creating it there if the API does not know it yet.
func (d *Drafts) Upload(ctx context.Context, id draft.ID) error {
	return d.locks.withLock(id, func() error {
		return d.upload(ctx, id)
	})
}

// Edit runs fn while no upload of the draft is in progress.
func (d *Drafts) Edit(id draft.ID, fn func() error) error {
	return d.locks.withLock(id, fn)
}

func (d *Drafts) upload(ctx context.Context, id draft.ID) error {
	entry := logrus.WithField("pkg", "draftsync/remote").WithField("messageID", id.MessageID.ShortID())

	local, err := d.resolver.Find(ctx, id)
	if errors.Is(err, resolver.ErrDraftNotFound) {
		entry.Debug("Sync draft failure: no local draft found")
		return err
	} else if err != nil {
		return fmt.Errorf("failed to find local draft: %w", err)
	}

	st, err := d.states.Get(ctx, id)
	if db.IsErrNotFound(err) {
		if st, err = d.states.CreateIfMissing(ctx, id, draft.ActionCompose); err != nil {
			return fmt.Errorf("failed to create draft state: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to get draft state: %w", err)
	}

	atts, err := d.states.ListAttachments(ctx, st.ID)
	if err != nil {
		return fmt.Errorf("failed to get attachment states: %w", err)
	}

	if st.IsKnownToAPI() {
		return d.update(ctx, entry, st, local, atts)
	}

	return d.create(ctx, entry, st, local, atts)
}

func (d *Drafts) create(ctx context.Context, entry *logrus.Entry, st draft.State, local draft.Draft, atts []draft.AttachmentState) error {
	if local.Body == "" {
		entry.Debug("Draft has no body yet, not creating it")
		return connector.ErrCreateDraftRequestNotPerformed
	}

	created, err := d.conn.CreateDraft(ctx, st.ID.UserID, withoutPendingAttachments(local, atts), st.Action)
	if err != nil {
		return d.handleFailure(ctx, entry, st.ID, err, metrics.GenerateFailedToCreateDraftMetric)
	}

	apiMessageID := created.ID.MessageID

	entry.WithField("apiMessageID", apiMessageID.ShortID()).Debug("Draft created")

	// The state is recorded first so that the draft is not created twice if storing its content fails.
	synced, err := d.states.SetSynchronized(ctx, st.ID, apiMessageID)
	if err != nil {
		observability.AddStateMetric(ctx, metrics.GenerateFailedToUpdateDraftStateMetric())
		return fmt.Errorf("failed to update draft state: %w", err)
	}

	rewritten := local.Clone()

	rewritten.ID = local.ID.WithMessageID(apiMessageID)
	rewritten.ConversationID = created.ConversationID
	rewritten.Attachments = matchAttachmentIDs(local.Attachments, created.Attachments)

	if err := d.drafts.Move(local.ID, rewritten); err != nil {
		observability.AddStateMetric(ctx, metrics.GenerateFailedToMoveDraftContentMetric())
		return fmt.Errorf("failed to store created draft: %w", err)
	}

	d.publish(events.DraftUploaded{ID: st.ID, APIMessageID: apiMessageID, Created: true})

	snapshot, err := d.uploadAttachments(ctx, entry, synced, rewritten, atts)

	d.tracker.NotifyUploadedDraft(st.ID, snapshot)

	return err
}

func (d *Drafts) update(ctx context.Context, entry *logrus.Entry, st draft.State, local draft.Draft, atts []draft.AttachmentState) error {
	updated, err := d.conn.UpdateDraft(ctx, st.ID.UserID, st.APIMessageID, withoutPendingAttachments(local, atts))
	if err != nil {
		return d.handleFailure(ctx, entry, st.ID, err, metrics.GenerateFailedToUpdateDraftMetric)
	}

	if _, err := d.states.SetSynchronized(ctx, st.ID, ""); err != nil {
		observability.AddStateMetric(ctx, metrics.GenerateFailedToUpdateDraftStateMetric())
		return fmt.Errorf("failed to update draft state: %w", err)
	}

	snapshot := local

	// Attachments uploaded for the first time got their ids assigned.
	if atts := matchAttachmentIDs(local.Attachments, updated.Attachments); !slices.EqualFunc(atts, local.Attachments, draft.Attachment.Equal) {
		snapshot = local.Clone()
		snapshot.Attachments = atts

		if err := d.drafts.Put(snapshot); err != nil {
			return fmt.Errorf("failed to store updated draft: %w", err)
		}
	}

	entry.Debug("Draft updated")

	d.publish(events.DraftUploaded{ID: st.ID, APIMessageID: st.APIMessageID})

	snapshot, err = d.uploadAttachments(ctx, entry, st, snapshot, atts)

	d.tracker.NotifyUploadedDraft(st.ID, snapshot)

	return err
}

func (d *Drafts) handleFailure(
	ctx context.Context,
	entry *logrus.Entry,
	id draft.ID,
	err error,
	metric func() map[string]interface{},
) error {
	if errors.Is(err, connector.ErrMessageAlreadySent) {
		entry.Info("Draft was already sent")

		if _, serr := d.states.SetSyncState(ctx, id, draft.Sent, nil); serr != nil {
			return fmt.Errorf("failed to mark draft as sent: %w", serr)
		}

		d.tracker.NotifySentMessages(id)

		return nil
	}

	if canceled(ctx, err) {
		return err
	}

	entry.WithError(err).Warn("Failed to upload draft")

	reporter.ExceptionWithContext(ctx, "Failed to upload draft", reporter.DraftContext(id, err))

	d.publish(events.DraftUploadFailed{ID: id, Error: err})

	switch {
	case connector.IsRetryable(err):
		observability.AddUploadMetric(ctx, metric())

	case connector.IsAttachmentUploadError(err):
		observability.AddUploadMetric(ctx, metrics.GenerateFailedToUploadAttachmentsMetric())

		if _, serr := d.states.SetSyncState(ctx, id, draft.ErrorUploadAttachments, &draft.SendingError{
			Kind:    draft.SendingErrorOther,
			Message: err.Error(),
		}); serr != nil {
			entry.WithError(serr).Error("Failed to record draft upload failure")
		}

	default:
		observability.AddUploadMetric(ctx, metric())

		if _, serr := d.states.SetSyncState(ctx, id, draft.ErrorSending, &draft.SendingError{
			Kind:    draft.SendingErrorOther,
			Message: err.Error(),
		}); serr != nil {
			entry.WithError(serr).Error("Failed to record draft upload failure")
		}
	}

	return fmt.Errorf("failed to upload draft: %w", err)
}

// canceled reports whether the request failed because ctx ended rather than because of the API.
func canceled(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}

// matchAttachmentIDs copies the ids the API assigned to attachments which had none locally.
// Attachments are matched by name, MIME type and key packets.
func matchAttachmentIDs(local, remote []draft.Attachment) []draft.Attachment {
	unmatched := xslices.Filter(remote, func(att draft.Attachment) bool {
		return xslices.IndexFunc(local, func(other draft.Attachment) bool { return other.ID == att.ID }) < 0
	})

	return xslices.Map(local, func(att draft.Attachment) draft.Attachment {
		if att.ID != "" {
			return att
		}

		idx := xslices.IndexFunc(unmatched, func(other draft.Attachment) bool {
			return other.Name == att.Name && other.MIMEType == att.MIMEType && other.KeyPackets == att.KeyPackets
		})
		if idx < 0 {
			return att
		}

		att.ID = unmatched[idx].ID
		unmatched = append(unmatched[:idx:idx], unmatched[idx+1:]...)

		return att
	})
}
