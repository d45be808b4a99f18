// Package uploader keeps the draft being edited synchronized with the API by pushing it at a fixed interval.
//
// An Uploader tracks a single draft at a time: starting the continuous upload of a draft cancels the upload of
// the previous one.
package uploader

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ProtonMail/draftsync/async"
	"github.com/ProtonMail/draftsync/connector"
	"github.com/ProtonMail/draftsync/draft"
	"github.com/ProtonMail/draftsync/events"
	"github.com/ProtonMail/draftsync/internal/resolver"
	"github.com/ProtonMail/draftsync/internal/ticker"
	"github.com/ProtonMail/draftsync/logging"
	"github.com/ProtonMail/draftsync/wait"
	"github.com/sirupsen/logrus"
)

// Remote pushes drafts to the API.
type Remote interface {
	// Sync uploads the draft only if it changed since its last upload.
	Sync(ctx context.Context, id draft.ID) error

	// Upload uploads the draft unconditionally.
	Upload(ctx context.Context, id draft.ID) error
}

type StateWriter interface {
	CreateOrUpdateLocal(ctx context.Context, id draft.ID, action draft.Action) (draft.State, error)
}

type Uploader struct {
	remote   Remote
	states   StateWriter
	interval time.Duration
	publish  func(events.Event)

	panicHandler async.PanicHandler

	job  *job
	lock sync.Mutex
}

// job is the running periodic upload of one draft.
type job struct {
	id     draft.ID
	cancel context.CancelFunc
	ticker *ticker.Ticker
	wg     wait.Group
}

func New(
	remote Remote,
	states StateWriter,
	interval time.Duration,
	publish func(events.Event),
	panicHandler async.PanicHandler,
) *Uploader {
	if publish == nil {
		publish = func(events.Event) {}
	}

	return &Uploader{
		remote:       remote,
		states:       states,
		interval:     interval,
		publish:      publish,
		panicHandler: panicHandler,
	}
}

// Start cancels the upload currently running, records the draft as Local and starts uploading it periodically.
// Once Start returns, no iteration of the previous upload runs anymore.
// The upload stops when ctx is done, on Stop, on Close or when another draft is started.
func (u *Uploader) Start(ctx context.Context, id draft.ID, action draft.Action) error {
	u.lock.Lock()
	defer u.lock.Unlock()

	u.stopLocked()

	if _, err := u.states.CreateOrUpdateLocal(ctx, id, action); err != nil {
		return err
	}

	jobCtx, cancel := context.WithCancel(ctx)

	j := &job{
		id:     id,
		cancel: cancel,
		ticker: ticker.New(u.interval),
		wg:     wait.Group{PanicHandler: u.panicHandler},
	}

	j.wg.Go(func() {
		labels := map[string]any{
			"userID":    id.UserID.ShortID(),
			"messageID": id.MessageID.ShortID(),
			"action":    action,
		}

		logging.DoAnnotate(jobCtx, func(ctx context.Context) {
			j.ticker.Tick(ctx, func(time.Time) {
				u.sync(ctx, id)
			})
		}, labels)
	})

	u.job = j

	logrus.WithField("pkg", "draftsync/uploader").
		WithField("messageID", id.MessageID.ShortID()).
		WithField("action", action).
		Debug("Continuous upload started")

	u.publish(events.ContinuousUploadStarted{ID: id, Action: action})

	return nil
}

// Stop cancels the running upload, if any, and waits for it to finish.
func (u *Uploader) Stop() {
	u.lock.Lock()
	defer u.lock.Unlock()

	u.stopLocked()
}

// Upload pushes the draft right away, regardless of the running continuous upload.
func (u *Uploader) Upload(ctx context.Context, id draft.ID) error {
	return u.remote.Upload(ctx, id)
}

// Poll runs one iteration of the running upload and waits for it. It returns false if no upload is running.
func (u *Uploader) Poll() bool {
	u.lock.Lock()
	j := u.job
	u.lock.Unlock()

	if j == nil {
		return false
	}

	return j.ticker.Poll()
}

// Active returns the draft being uploaded, if any.
func (u *Uploader) Active() (draft.ID, bool) {
	u.lock.Lock()
	defer u.lock.Unlock()

	if u.job == nil {
		return draft.ID{}, false
	}

	return u.job.id, true
}

// StopIf stops the running upload if stop reports true for its draft, and reports whether it did.
// The check and the stop happen atomically with respect to Start.
func (u *Uploader) StopIf(stop func(draft.ID) bool) bool {
	u.lock.Lock()
	defer u.lock.Unlock()

	if u.job == nil || !stop(u.job.id) {
		return false
	}

	u.stopLocked()

	return true
}

func (u *Uploader) Close() {
	u.Stop()
}

func (u *Uploader) stopLocked() {
	if u.job == nil {
		return
	}

	j := u.job
	u.job = nil

	j.cancel()
	j.ticker.Stop()
	j.wg.Wait()

	logrus.WithField("pkg", "draftsync/uploader").
		WithField("messageID", j.id.MessageID.ShortID()).
		Debug("Continuous upload stopped")

	u.publish(events.ContinuousUploadStopped{ID: j.id})
}

func (u *Uploader) sync(ctx context.Context, id draft.ID) {
	if ctx.Err() != nil {
		return
	}

	err := u.remote.Sync(ctx, id)

	switch {
	case err == nil:
		return

	case ctx.Err() != nil, errors.Is(err, context.Canceled):
		return

	case errors.Is(err, connector.ErrCreateDraftRequestNotPerformed), errors.Is(err, resolver.ErrDraftNotFound):
		logrus.WithField("pkg", "draftsync/uploader").
			WithField("messageID", id.MessageID.ShortID()).
			WithError(err).
			Trace("Nothing to upload yet")

	default:
		logrus.WithField("pkg", "draftsync/uploader").
			WithField("messageID", id.MessageID.ShortID()).
			WithError(err).
			Warn("Periodic draft upload failed")
	}
}
