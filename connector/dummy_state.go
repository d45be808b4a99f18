package connector

import (
	"sync"

	"github.com/ProtonMail/draftsync/draft"
	"github.com/ProtonMail/draftsync/internal/utils"
	"github.com/bradenaw/juniper/xslices"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type dummyState struct {
	drafts map[draft.UserID]map[draft.MessageID]*dummyDraft

	// attachments holds the uploaded attachment contents by attachment id.
	attachments map[string][]byte

	lock sync.RWMutex
}

type dummyDraft struct {
	draft  draft.Draft
	action draft.Action
	sent   bool
}

func newDummyState() *dummyState {
	return &dummyState{
		drafts:      make(map[draft.UserID]map[draft.MessageID]*dummyDraft),
		attachments: make(map[string][]byte),
	}
}

func (state *dummyState) getDraft(userID draft.UserID, apiMessageID draft.MessageID) (draft.Draft, bool) {
	state.lock.RLock()
	defer state.lock.RUnlock()

	d, ok := state.drafts[userID][apiMessageID]
	if !ok {
		return draft.Draft{}, false
	}

	return d.draft.Clone(), true
}

func (state *dummyState) getDrafts(userID draft.UserID) []draft.Draft {
	state.lock.RLock()
	defer state.lock.RUnlock()

	drafts := xslices.Map(maps.Values(state.drafts[userID]), func(d *dummyDraft) draft.Draft {
		return d.draft.Clone()
	})

	slices.SortFunc(drafts, func(a, b draft.Draft) bool {
		return a.ID.MessageID < b.ID.MessageID
	})

	return drafts
}

func (state *dummyState) createDraft(userID draft.UserID, d draft.Draft, action draft.Action) draft.Draft {
	state.lock.Lock()
	defer state.lock.Unlock()

	created := d.Clone()

	created.ID = draft.NewID(userID, draft.MessageID(utils.NewRandomMessageID()))

	if created.ConversationID == "" {
		created.ConversationID = utils.NewRandomConversationID()
	}

	created.Attachments = assignAttachmentIDs(created.Attachments)

	if _, ok := state.drafts[userID]; !ok {
		state.drafts[userID] = make(map[draft.MessageID]*dummyDraft)
	}

	state.drafts[userID][created.ID.MessageID] = &dummyDraft{draft: created, action: action}

	return created.Clone()
}

func (state *dummyState) updateDraft(userID draft.UserID, apiMessageID draft.MessageID, d draft.Draft) (draft.Draft, error) {
	state.lock.Lock()
	defer state.lock.Unlock()

	existing, ok := state.drafts[userID][apiMessageID]
	if !ok {
		return draft.Draft{}, &APIError{Status: 422, Code: CodeMessageNotFound, Message: "Message does not exist"}
	}

	if existing.sent {
		return draft.Draft{}, &APIError{Status: 422, Code: CodeMessageUpdateDraftNotDraft, Message: "Message is not a draft"}
	}

	updated := d.Clone()

	updated.ID = draft.NewID(userID, apiMessageID)
	updated.ConversationID = existing.draft.ConversationID
	updated.Attachments = assignAttachmentIDs(updated.Attachments)

	existing.draft = updated

	return updated.Clone(), nil
}

func (state *dummyState) deleteDraft(userID draft.UserID, apiMessageID draft.MessageID) error {
	state.lock.Lock()
	defer state.lock.Unlock()

	if _, ok := state.drafts[userID][apiMessageID]; !ok {
		return &APIError{Status: 422, Code: CodeMessageNotFound, Message: "Message does not exist"}
	}

	delete(state.drafts[userID], apiMessageID)

	return nil
}

func (state *dummyState) uploadAttachment(
	userID draft.UserID,
	apiMessageID draft.MessageID,
	att draft.Attachment,
	dataPacket []byte,
) (draft.Attachment, error) {
	state.lock.Lock()
	defer state.lock.Unlock()

	existing, ok := state.drafts[userID][apiMessageID]
	if !ok {
		return draft.Attachment{}, &APIError{Status: 422, Code: CodeMessageNotFound, Message: "Message does not exist"}
	}

	if existing.sent {
		return draft.Attachment{}, &APIError{Status: 422, Code: CodeMessageUpdateDraftNotDraft, Message: "Message is not a draft"}
	}

	uploaded := att
	uploaded.ID = utils.NewRandomAttachmentID()
	uploaded.Headers = maps.Clone(att.Headers)

	state.attachments[uploaded.ID] = slices.Clone(dataPacket)

	existing.draft.Attachments = append(existing.draft.Attachments, uploaded)

	return uploaded, nil
}

func (state *dummyState) getAttachmentData(attachmentID string) ([]byte, bool) {
	state.lock.RLock()
	defer state.lock.RUnlock()

	data, ok := state.attachments[attachmentID]

	return slices.Clone(data), ok
}

func (state *dummyState) markSent(userID draft.UserID, apiMessageID draft.MessageID) error {
	state.lock.Lock()
	defer state.lock.Unlock()

	existing, ok := state.drafts[userID][apiMessageID]
	if !ok {
		return ErrDraftNotFound
	}

	existing.sent = true

	return nil
}

// assignAttachmentIDs gives an id to the attachments uploaded for the first time.
func assignAttachmentIDs(atts []draft.Attachment) []draft.Attachment {
	return xslices.Map(atts, func(att draft.Attachment) draft.Attachment {
		if att.ID == "" {
			att.ID = utils.NewRandomAttachmentID()
		}

		return att
	})
}
