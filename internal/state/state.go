// Package state persists the synchronization state of drafts and publishes every change.
package state

import (
	"context"
	"fmt"

	"github.com/ProtonMail/draftsync/db"
	"github.com/ProtonMail/draftsync/draft"
	"github.com/ProtonMail/draftsync/events"
)

// Repository reads and writes draft states. Every read-modify-write runs in a single database transaction.
type Repository struct {
	client  db.Client
	publish func(events.Event)
}

func NewRepository(client db.Client, publish func(events.Event)) *Repository {
	if publish == nil {
		publish = func(events.Event) {}
	}

	return &Repository{
		client:  client,
		publish: publish,
	}
}

// Get returns db.ErrNotFound if no state is stored for the draft.
func (r *Repository) Get(ctx context.Context, id draft.ID) (draft.State, error) {
	return db.ClientReadType(ctx, r.client, func(ctx context.Context, rd db.ReadOnly) (draft.State, error) {
		return rd.GetDraftState(ctx, id)
	})
}

// GetByAPIMessageID returns the state of the draft the API knows under apiMessageID.
func (r *Repository) GetByAPIMessageID(ctx context.Context, userID draft.UserID, apiMessageID draft.MessageID) (draft.State, error) {
	return db.ClientReadType(ctx, r.client, func(ctx context.Context, rd db.ReadOnly) (draft.State, error) {
		return rd.GetDraftStateByAPIMessageID(ctx, userID, apiMessageID)
	})
}

func (r *Repository) List(ctx context.Context, userID draft.UserID) ([]draft.State, error) {
	return db.ClientReadType(ctx, r.client, func(ctx context.Context, rd db.ReadOnly) ([]draft.State, error) {
		return rd.GetDraftStates(ctx, userID)
	})
}

func (r *Repository) ListWithSyncState(ctx context.Context, userID draft.UserID, syncState draft.SyncState) ([]draft.State, error) {
	return db.ClientReadType(ctx, r.client, func(ctx context.Context, rd db.ReadOnly) ([]draft.State, error) {
		return rd.GetDraftStatesWithSyncState(ctx, userID, syncState)
	})
}

// CreateOrUpdateLocal marks the draft as Local and tags it with the compose action.
// An existing state keeps the id assigned by the API.
func (r *Repository) CreateOrUpdateLocal(ctx context.Context, id draft.ID, action draft.Action) (draft.State, error) {
	return r.upsert(ctx, id, action, func(state *draft.State) {
		state.SyncState = draft.Local
		state.Action = action
	})
}

// CreateIfMissing stores a Local state for the draft unless one exists already.
func (r *Repository) CreateIfMissing(ctx context.Context, id draft.ID, action draft.Action) (draft.State, error) {
	return r.upsert(ctx, id, action, func(*draft.State) {})
}

// SetSynchronized records a successful upload. A non-empty apiMessageID is stored as the id assigned by the API.
func (r *Repository) SetSynchronized(ctx context.Context, id draft.ID, apiMessageID draft.MessageID) (draft.State, error) {
	return r.update(ctx, id, func(state *draft.State) {
		if apiMessageID != "" {
			state.APIMessageID = apiMessageID
		}

		state.SyncState = draft.Synchronized
		state.SendingError = nil
	})
}

// SetSyncState moves the draft to the given state, recording sendErr (which may be nil) as the reason.
func (r *Repository) SetSyncState(ctx context.Context, id draft.ID, syncState draft.SyncState, sendErr *draft.SendingError) (draft.State, error) {
	if !syncState.IsValid() {
		return draft.State{}, fmt.Errorf("invalid sync state %v", syncState)
	}

	return r.update(ctx, id, func(state *draft.State) {
		state.SyncState = syncState
		state.SendingError = sendErr

		if syncState == draft.Sending {
			state.SendingStatusConfirmed = false
		}
	})
}

// ConfirmSendingStatus records that the user has been told about the outcome of sending the draft.
func (r *Repository) ConfirmSendingStatus(ctx context.Context, id draft.ID) (draft.State, error) {
	return r.update(ctx, id, func(state *draft.State) {
		state.SendingStatusConfirmed = true
	})
}

func (r *Repository) Delete(ctx context.Context, ids ...draft.ID) error {
	if err := r.client.Write(ctx, func(ctx context.Context, tx db.Transaction) error {
		if err := tx.DeleteAttachmentStatesForDraft(ctx, ids...); err != nil {
			return err
		}

		return tx.DeleteDraftState(ctx, ids...)
	}); err != nil {
		return err
	}

	for _, id := range ids {
		r.publish(events.DraftStateDeleted{ID: id})
	}

	return nil
}

// DeleteUser deletes the states of all the drafts of the user and of their attachments.
// It returns the identities of the deleted drafts.
func (r *Repository) DeleteUser(ctx context.Context, userID draft.UserID) ([]draft.ID, error) {
	states, err := db.ClientWriteType(ctx, r.client, func(ctx context.Context, tx db.Transaction) ([]draft.State, error) {
		states, err := tx.GetDraftStates(ctx, userID)
		if err != nil {
			return nil, err
		}

		if err := tx.DeleteAttachmentStatesForUser(ctx, userID); err != nil {
			return nil, err
		}

		return states, tx.DeleteDraftStatesForUser(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	ids := make([]draft.ID, 0, len(states))

	for _, state := range states {
		ids = append(ids, state.ID)
		r.publish(events.DraftStateDeleted{ID: state.ID})
	}

	return ids, nil
}

func (r *Repository) upsert(ctx context.Context, id draft.ID, action draft.Action, fn func(*draft.State)) (draft.State, error) {
	state, err := db.ClientWriteType(ctx, r.client, func(ctx context.Context, tx db.Transaction) (draft.State, error) {
		state, err := tx.GetDraftState(ctx, id)
		if db.IsErrNotFound(err) {
			state = draft.NewLocalState(id, action)

			return state, tx.CreateDraftState(ctx, state)
		} else if err != nil {
			return draft.State{}, err
		}

		fn(&state)

		return state, tx.UpdateDraftState(ctx, state)
	})
	if err != nil {
		return draft.State{}, err
	}

	r.publish(events.DraftStateChanged{State: state})

	return state, nil
}

func (r *Repository) update(ctx context.Context, id draft.ID, fn func(*draft.State)) (draft.State, error) {
	state, err := db.ClientWriteType(ctx, r.client, func(ctx context.Context, tx db.Transaction) (draft.State, error) {
		state, err := tx.GetDraftState(ctx, id)
		if err != nil {
			return draft.State{}, err
		}

		fn(&state)

		return state, tx.UpdateDraftState(ctx, state)
	})
	if err != nil {
		return draft.State{}, err
	}

	r.publish(events.DraftStateChanged{State: state})

	return state, nil
}
