package connector

import (
	"context"
	"sync"
	"time"

	"github.com/ProtonMail/draftsync/draft"
)

// Operation names a Dummy request so that failures can be injected for it.
type Operation int

const (
	OpCreateDraft Operation = iota
	OpUpdateDraft
	OpDeleteDraft
	OpUploadAttachment
)

// Dummy is an in-memory fake of the remote API.
type Dummy struct {
	// state holds the fake remote drafts.
	state *dummyState

	// latency delays every request, honouring the request's context.
	latency time.Duration

	// failures holds errors returned, in order, by the next requests of each operation.
	failures map[Operation][]error

	// calls counts the requests received per operation, failed ones included.
	calls map[Operation]int

	lock sync.Mutex
}

func NewDummy() *Dummy {
	return &Dummy{
		state:    newDummyState(),
		failures: make(map[Operation][]error),
		calls:    make(map[Operation]int),
	}
}

// SetLatency delays every following request by the given duration.
func (conn *Dummy) SetLatency(latency time.Duration) {
	conn.lock.Lock()
	defer conn.lock.Unlock()

	conn.latency = latency
}

// FailNext makes the next requests of the operation fail with the given errors, one per request.
func (conn *Dummy) FailNext(op Operation, errs ...error) {
	conn.lock.Lock()
	defer conn.lock.Unlock()

	conn.failures[op] = append(conn.failures[op], errs...)
}

// Calls returns the number of requests received for the operation.
func (conn *Dummy) Calls(op Operation) int {
	conn.lock.Lock()
	defer conn.lock.Unlock()

	return conn.calls[op]
}

// GetDraft returns the remote copy of the draft.
func (conn *Dummy) GetDraft(userID draft.UserID, apiMessageID draft.MessageID) (draft.Draft, bool) {
	return conn.state.getDraft(userID, apiMessageID)
}

// GetDrafts returns the remote copies of the user's drafts.
func (conn *Dummy) GetDrafts(userID draft.UserID) []draft.Draft {
	return conn.state.getDrafts(userID)
}

// MarkSent turns the remote draft into a sent message; further updates fail with ErrMessageAlreadySent.
func (conn *Dummy) MarkSent(userID draft.UserID, apiMessageID draft.MessageID) error {
	return conn.state.markSent(userID, apiMessageID)
}

func (conn *Dummy) CreateDraft(ctx context.Context, userID draft.UserID, d draft.Draft, action draft.Action) (draft.Draft, error) {
	if err := conn.request(ctx, OpCreateDraft); err != nil {
		return draft.Draft{}, err
	}

	return conn.state.createDraft(userID, d, action), nil
}

func (conn *Dummy) UpdateDraft(ctx context.Context, userID draft.UserID, apiMessageID draft.MessageID, d draft.Draft) (draft.Draft, error) {
	if err := conn.request(ctx, OpUpdateDraft); err != nil {
		return draft.Draft{}, err
	}

	return conn.state.updateDraft(userID, apiMessageID, d)
}

func (conn *Dummy) DeleteDraft(ctx context.Context, userID draft.UserID, apiMessageID draft.MessageID) error {
	if err := conn.request(ctx, OpDeleteDraft); err != nil {
		return err
	}

	return conn.state.deleteDraft(userID, apiMessageID)
}

func (conn *Dummy) UploadAttachment(
	ctx context.Context,
	userID draft.UserID,
	apiMessageID draft.MessageID,
	att draft.Attachment,
	dataPacket []byte,
) (draft.Attachment, error) {
	if err := conn.request(ctx, OpUploadAttachment); err != nil {
		return draft.Attachment{}, err
	}

	return conn.state.uploadAttachment(userID, apiMessageID, att, dataPacket)
}

// GetAttachmentData returns the uploaded content of the attachment.
func (conn *Dummy) GetAttachmentData(attachmentID string) ([]byte, bool) {
	return conn.state.getAttachmentData(attachmentID)
}

func (conn *Dummy) request(ctx context.Context, op Operation) error {
	conn.lock.Lock()

	conn.calls[op]++

	latency := conn.latency

	var err error

	if failures := conn.failures[op]; len(failures) > 0 {
		err, conn.failures[op] = failures[0], failures[1:]
	}

	conn.lock.Unlock()

	if latency > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-time.After(latency):
		}
	}

	return err
}
