package draftsync

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ProtonMail/draftsync/body"
	"github.com/ProtonMail/draftsync/connector"
	"github.com/ProtonMail/draftsync/db"
	"github.com/ProtonMail/draftsync/draft"
	"github.com/ProtonMail/draftsync/events"
	"github.com/ProtonMail/draftsync/internal/remote"
	"github.com/ProtonMail/draftsync/internal/resolver"
	"github.com/ProtonMail/draftsync/internal/state"
	"github.com/ProtonMail/draftsync/internal/tracker"
	"github.com/ProtonMail/draftsync/internal/uploader"
	"github.com/ProtonMail/draftsync/observability"
	"github.com/ProtonMail/draftsync/observability/metrics"
	"github.com/ProtonMail/draftsync/reporter"
	"github.com/ProtonMail/draftsync/store"
	"github.com/ProtonMail/gopenpgp/v2/crypto"
	"github.com/bradenaw/juniper/xslices"
	"github.com/sirupsen/logrus"
)

// Syncer stores the drafts being composed and keeps them synchronized with the API.
type Syncer struct {
	// dir holds the draft contents and states.
	dir string

	// conn reaches the API.
	conn connector.Connector

	drafts *store.DraftStore
	db     db.Client

	states   *state.Repository
	resolver *resolver.Resolver
	tracker  *tracker.Tracker
	remote   *remote.Drafts
	uploader *uploader.Uploader

	reporter  reporter.Reporter
	obsSender observability.Sender

	// watchers holds streams of events.
	watchers     []*watcher
	watchersLock sync.RWMutex

	closed     bool
	closedLock sync.RWMutex
}

// New creates a new syncer with the given options.
func New(withOpt ...Option) (*Syncer, error) {
	builder := newBuilder()

	for _, opt := range withOpt {
		opt.config(builder)
	}

	return builder.build()
}

// DeleteData removes every stored draft and draft state of the data directory given with WithDataDir.
// The syncer using the directory must be closed first.
func DeleteData(withOpt ...Option) error {
	builder := newBuilder()

	for _, opt := range withOpt {
		opt.config(builder)
	}

	return builder.remove()
}

// StartContinuousUpload records the draft as Local, tagged with the compose action, and uploads its changes
// periodically until stopped. Only one draft is uploaded continuously at a time: the upload of any other draft
// is cancelled first.
// The upload runs until ctx is done, so ctx must outlive the editing of the draft.
func (s *Syncer) StartContinuousUpload(ctx context.Context, userID draft.UserID, messageID draft.MessageID, action draft.Action) error {
	return s.whileOpen(func() error {
		return s.uploader.Start(s.context(ctx), draft.NewID(userID, messageID), action)
	})
}

// StopContinuousUpload stops the running continuous upload, if any.
func (s *Syncer) StopContinuousUpload() {
	s.uploader.Stop()
}

// ForceUpload uploads the draft right away, whether or not it changed since its last upload.
func (s *Syncer) ForceUpload(ctx context.Context, userID draft.UserID, messageID draft.MessageID) error {
	return s.whileOpen(func() error {
		return s.uploader.Upload(s.context(ctx), draft.NewID(userID, messageID))
	})
}

// UploadRequired reports whether the local draft holds changes the API does not have.
func (s *Syncer) UploadRequired(ctx context.Context, userID draft.UserID, messageID draft.MessageID) bool {
	return s.tracker.UploadRequired(s.context(ctx), draft.NewID(userID, messageID))
}

// NotifySentMessages forgets the upload history of drafts which were sent.
func (s *Syncer) NotifySentMessages(ids ...draft.ID) {
	s.tracker.NotifySentMessages(ids...)
}

// FindLocalDraft returns the local content of the draft, following the identifier assigned by the API if needed.
func (s *Syncer) FindLocalDraft(ctx context.Context, userID draft.UserID, messageID draft.MessageID) (draft.Draft, error) {
	return s.resolver.Find(s.context(ctx), draft.NewID(userID, messageID))
}

// GetLocalDraft returns the local content of the draft, or a new empty draft of the sender if there is none.
func (s *Syncer) GetLocalDraft(
	ctx context.Context,
	userID draft.UserID,
	messageID draft.MessageID,
	sender draft.Sender,
	addressID string,
) (draft.Draft, error) {
	return s.resolver.Get(s.context(ctx), draft.NewID(userID, messageID), sender, addressID)
}

// StoreDraft encrypts the body with the address key ring and saves the fields into the local draft.
// The draft is recorded as Local, tagged with the compose action, unless it already has a state.
func (s *Syncer) StoreDraft(
	ctx context.Context,
	userID draft.UserID,
	messageID draft.MessageID,
	action draft.Action,
	addressID string,
	fields draft.Fields,
	kr *crypto.KeyRing,
) (draft.Draft, error) {
	var stored draft.Draft

	if err := s.whileOpen(func() (err error) {
		stored, err = s.storeDraft(s.context(ctx), draft.NewID(userID, messageID), action, addressID, fields, kr)
		return err
	}); err != nil {
		return draft.Draft{}, err
	}

	return stored, nil
}

func (s *Syncer) storeDraft(
	ctx context.Context,
	id draft.ID,
	action draft.Action,
	addressID string,
	fields draft.Fields,
	kr *crypto.KeyRing,
) (draft.Draft, error) {
	armored, err := body.Encrypt(kr, fields.Body)
	if err != nil {
		return draft.Draft{}, err
	}

	var stored draft.Draft

	if err := s.remote.Edit(id, func() error {
		d, err := s.resolver.Get(ctx, id, fields.Sender, addressID)
		if err != nil {
			return err
		}

		d.Sender = fields.Sender
		d.Subject = fields.Subject
		d.ToList = fields.ToList
		d.CCList = fields.CCList
		d.BCCList = fields.BCCList
		d.Body = armored

		if fields.MIMEType != "" {
			d.MIMEType = fields.MIMEType
		}

		if addressID != "" {
			d.AddressID = addressID
		}

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

	return stored, nil
}

// GetDecryptedDraftFields returns the user-editable fields of the local draft with its body decrypted.
func (s *Syncer) GetDecryptedDraftFields(
	ctx context.Context,
	userID draft.UserID,
	messageID draft.MessageID,
	kr *crypto.KeyRing,
) (draft.Fields, error) {
	d, err := s.resolver.Find(s.context(ctx), draft.NewID(userID, messageID))
	if err != nil {
		return draft.Fields{}, err
	}

	plaintext, err := body.Decrypt(kr, d.Body)
	if err != nil {
		return draft.Fields{}, err
	}

	return draft.Fields{
		Sender:   d.Sender,
		Subject:  d.Subject,
		ToList:   d.ToList,
		CCList:   d.CCList,
		BCCList:  d.BCCList,
		Body:     plaintext,
		MIMEType: d.MIMEType,
	}, nil
}

// GetDraftState returns the sync state of the draft. See IsNoSuchDraftState.
func (s *Syncer) GetDraftState(ctx context.Context, userID draft.UserID, messageID draft.MessageID) (draft.State, error) {
	return s.states.Get(s.context(ctx), draft.NewID(userID, messageID))
}

// GetDraftStates returns the sync states of all the user's drafts.
func (s *Syncer) GetDraftStates(ctx context.Context, userID draft.UserID) ([]draft.State, error) {
	return s.states.List(s.context(ctx), userID)
}

// GetDraftStatesWithSyncState returns the sync states of the user's drafts which are in the given sync state.
func (s *Syncer) GetDraftStatesWithSyncState(ctx context.Context, userID draft.UserID, syncState draft.SyncState) ([]draft.State, error) {
	return s.states.ListWithSyncState(s.context(ctx), userID, syncState)
}

// MarkSending records that the draft is being sent.
func (s *Syncer) MarkSending(ctx context.Context, userID draft.UserID, messageID draft.MessageID) error {
	_, err := s.states.SetSyncState(s.context(ctx), draft.NewID(userID, messageID), draft.Sending, nil)

	return err
}

// MarkSendingFailed records that sending the draft failed.
func (s *Syncer) MarkSendingFailed(ctx context.Context, userID draft.UserID, messageID draft.MessageID, sendErr draft.SendingError) error {
	_, err := s.states.SetSyncState(s.context(ctx), draft.NewID(userID, messageID), draft.ErrorSending, &sendErr)

	return err
}

// ConfirmSent records that the drafts were sent and forgets their upload history.
func (s *Syncer) ConfirmSent(ctx context.Context, userID draft.UserID, messageIDs ...draft.MessageID) error {
	ctx = s.context(ctx)

	ids := make([]draft.ID, 0, len(messageIDs))

	for _, messageID := range messageIDs {
		id := draft.NewID(userID, messageID)

		if _, err := s.states.SetSyncState(ctx, id, draft.Sent, nil); err != nil {
			return fmt.Errorf("failed to mark draft as sent: %w", err)
		}

		ids = append(ids, id)
	}

	s.tracker.NotifySentMessages(ids...)

	return nil
}

// ConfirmSentByAPIMessageID is ConfirmSent for messages known by the identifier the API assigned to them,
// as reported by the API event stream. Messages which are not local drafts are ignored.
func (s *Syncer) ConfirmSentByAPIMessageID(ctx context.Context, userID draft.UserID, apiMessageIDs ...draft.MessageID) error {
	ctx = s.context(ctx)

	messageIDs := make([]draft.MessageID, 0, len(apiMessageIDs))

	for _, apiMessageID := range apiMessageIDs {
		state, err := s.states.GetByAPIMessageID(ctx, userID, apiMessageID)
		if db.IsErrNotFound(err) {
			continue
		} else if err != nil {
			return fmt.Errorf("failed to get draft state: %w", err)
		}

		messageIDs = append(messageIDs, state.ID.MessageID)
	}

	if len(messageIDs) == 0 {
		return nil
	}

	return s.ConfirmSent(ctx, userID, messageIDs...)
}

// ConfirmSendingStatus records that the user was told whether the draft was sent.
func (s *Syncer) ConfirmSendingStatus(ctx context.Context, userID draft.UserID, messageID draft.MessageID) error {
	_, err := s.states.ConfirmSendingStatus(s.context(ctx), draft.NewID(userID, messageID))

	return err
}

// DiscardDraft removes the draft's content, attachments and state. If deleteRemote is set, the API copy is
// deleted too.
func (s *Syncer) DiscardDraft(ctx context.Context, userID draft.UserID, messageID draft.MessageID, deleteRemote bool) error {
	return s.whileOpen(func() error {
		return s.discardDraft(s.context(ctx), draft.NewID(userID, messageID), deleteRemote)
	})
}

func (s *Syncer) discardDraft(ctx context.Context, id draft.ID, deleteRemote bool) error {
	s.uploader.StopIf(func(active draft.ID) bool { return active == id })

	return s.remote.Edit(id, func() error {
		apiMessageID, known, err := s.resolver.Canonical(ctx, id)
		if err != nil {
			return err
		}

		atts, err := s.states.ListAttachments(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get attachment states: %w", err)
		}

		ids := []draft.ID{id}

		if known {
			ids = append(ids, id.WithMessageID(apiMessageID))
		}

		if err := s.drafts.Delete(ids...); err != nil {
			return fmt.Errorf("failed to delete draft: %w", err)
		}

		if err := s.drafts.DeleteAttachments(id, xslices.Map(atts, func(att draft.AttachmentState) string {
			return att.AttachmentID
		})...); err != nil {
			return fmt.Errorf("failed to delete draft attachments: %w", err)
		}

		if err := s.states.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete draft state: %w", err)
		}

		s.tracker.NotifySentMessages(id)

		if !deleteRemote || !known {
			return nil
		}

		if err := s.conn.DeleteDraft(ctx, id.UserID, apiMessageID); err != nil && !errors.Is(err, connector.ErrDraftNotFound) {
			return fmt.Errorf("failed to delete remote draft: %w", err)
		}

		return nil
	})
}

// DeleteUserDrafts removes the content and state of every local draft of the user, for instance when the account
// is removed from the device. The API copies are left untouched.
func (s *Syncer) DeleteUserDrafts(ctx context.Context, userID draft.UserID) error {
	return s.whileOpen(func() error {
		return s.deleteUserDrafts(s.context(ctx), userID)
	})
}

func (s *Syncer) deleteUserDrafts(ctx context.Context, userID draft.UserID) error {
	s.uploader.StopIf(func(active draft.ID) bool { return active.UserID == userID })

	if err := s.drafts.DeleteUser(userID); err != nil {
		return fmt.Errorf("failed to delete drafts: %w", err)
	}

	ids, err := s.states.DeleteUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to delete draft states: %w", err)
	}

	s.tracker.NotifySentMessages(ids...)

	logrus.WithField("pkg", "draftsync").
		WithField("userID", userID.ShortID()).
		WithField("drafts", len(ids)).
		Info("Deleted user drafts")

	return nil
}

// AddWatcher adds a new watcher which watches events of the given types.
// If no types are specified, the watcher watches all events.
func (s *Syncer) AddWatcher(ofType ...events.Event) <-chan events.Event {
	s.watchersLock.Lock()
	defer s.watchersLock.Unlock()

	return s.addWatcher(ofTypes(ofType...))
}

// WatchDraft returns a channel receiving every event about the draft: its state changes, uploads and
// continuous upload. The channel is closed by RemoveWatcher or Close.
func (s *Syncer) WatchDraft(userID draft.UserID, messageID draft.MessageID) <-chan events.Event {
	s.watchersLock.Lock()
	defer s.watchersLock.Unlock()

	return s.addWatcher(ofDraft(draft.NewID(userID, messageID)))
}

func (s *Syncer) addWatcher(accepts func(events.Event) bool) <-chan events.Event {
	watcher := newWatcher(accepts)

	s.watchers = append(s.watchers, watcher)

	return watcher.getChannel()
}

// RemoveWatcher removes the watcher with the given channel and closes it.
func (s *Syncer) RemoveWatcher(ch <-chan events.Event) {
	s.watchersLock.Lock()
	defer s.watchersLock.Unlock()

	for idx, watcher := range s.watchers {
		if watcher.getChannel() == ch {
			watcher.close()
			s.watchers = append(s.watchers[:idx], s.watchers[idx+1:]...)

			return
		}
	}
}

// Close stops the continuous upload and releases the storage. Watchers are closed.
func (s *Syncer) Close(ctx context.Context) error {
	s.closedLock.Lock()
	defer s.closedLock.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true

	s.uploader.Close()

	var errs []error

	if err := s.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close draft state database: %w", err))
	}

	if err := s.drafts.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close draft store: %w", err))
	}

	s.watchersLock.Lock()
	defer s.watchersLock.Unlock()

	for _, watcher := range s.watchers {
		watcher.close()
	}

	s.watchers = nil

	if len(errs) > 0 {
		reporter.ExceptionWithContext(s.context(ctx), "Failed to close draft syncer", reporter.Context{"errors": errs})

		return errs[0]
	}

	logrus.WithField("pkg", "draftsync").Debug("Draft syncer closed")

	return nil
}

func (s *Syncer) publish(event events.Event) {
	s.watchersLock.RLock()
	defer s.watchersLock.RUnlock()

	for _, watcher := range s.watchers {
		if watcher.isWatching(event) {
			if !watcher.send(event) {
				logrus.WithField("pkg", "draftsync").Warn("Failed to send event to watcher")
			}
		}
	}
}

// context attaches the reporter and observability sender to the context.
func (s *Syncer) context(ctx context.Context) context.Context {
	if _, ok := reporter.GetReporterFromContext(ctx); !ok {
		ctx = reporter.NewContextWithReporter(ctx, s.reporter)
	}

	if s.obsSender != nil {
		ctx = observability.NewContextWithObservabilitySender(ctx, s.obsSender)
	}

	return ctx
}

// whileOpen runs fn unless the syncer is closed. Close waits for fn to return.
func (s *Syncer) whileOpen(fn func() error) error {
	s.closedLock.RLock()
	defer s.closedLock.RUnlock()

	if s.closed {
		return ErrClosed
	}

	return fn()
}
