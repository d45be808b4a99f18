// Package tracker decides whether a draft has to be uploaded again.
package tracker

import (
	"context"
	"sync"

	"github.com/ProtonMail/draftsync/db"
	"github.com/ProtonMail/draftsync/draft"
	"github.com/sirupsen/logrus"
)

type StateReader interface {
	Get(ctx context.Context, id draft.ID) (draft.State, error)
}

type DraftFinder interface {
	Find(ctx context.Context, id draft.ID) (draft.Draft, error)
}

// Tracker caches the last snapshot uploaded for each draft, in memory only.
type Tracker struct {
	states StateReader
	drafts DraftFinder

	uploaded map[draft.ID]draft.Draft
	lock     sync.RWMutex
}

func New(states StateReader, drafts DraftFinder) *Tracker {
	return &Tracker{
		states:   states,
		drafts:   drafts,
		uploaded: make(map[draft.ID]draft.Draft),
	}
}

// UploadRequired reports whether the draft has to be uploaded: its state is not Synchronized, nothing was uploaded
// since the cache was created, or the local content differs from the last uploaded snapshot.
// Failing lookups count as a required upload.
func (t *Tracker) UploadRequired(ctx context.Context, id draft.ID) bool {
	entry := logrus.WithField("pkg", "draftsync/tracker").WithField("messageID", id.MessageID.ShortID())

	state, err := t.states.Get(ctx, id)
	if err == nil && state.SyncState != draft.Synchronized {
		return true
	} else if err != nil && !db.IsErrNotFound(err) {
		entry.WithError(err).Debug("Failed to get draft state")
		return true
	}

	local, err := t.drafts.Find(ctx, id)
	if err != nil {
		entry.WithError(err).Debug("Failed to find local draft")
		return true
	}

	t.lock.RLock()
	defer t.lock.RUnlock()

	uploaded, ok := t.uploaded[id]
	if !ok {
		return true
	}

	return !uploaded.Equal(local)
}

// NotifyUploadedDraft records the snapshot confirmed by the API for the draft, replacing the previous one.
func (t *Tracker) NotifyUploadedDraft(id draft.ID, snapshot draft.Draft) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.uploaded[id] = snapshot.Clone()
}

// NotifySentMessages forgets the snapshots of the sent drafts.
func (t *Tracker) NotifySentMessages(ids ...draft.ID) {
	t.lock.Lock()
	defer t.lock.Unlock()

	for _, id := range ids {
		delete(t.uploaded, id)
	}
}

// Forget drops every snapshot of the user's drafts.
func (t *Tracker) Forget(userID draft.UserID) {
	t.lock.Lock()
	defer t.lock.Unlock()

	for id := range t.uploaded {
		if id.UserID == userID {
			delete(t.uploaded, id)
		}
	}
}
