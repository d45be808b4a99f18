package sqlite3

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ProtonMail/draftsync/draft"
	"github.com/ProtonMail/draftsync/internal/db_impl/sqlite3/utils"
	v0 "github.com/ProtonMail/draftsync/internal/db_impl/sqlite3/v0"
	v1 "github.com/ProtonMail/draftsync/internal/db_impl/sqlite3/v1"
)

type writeOps struct {
	readOps
	qw utils.QueryWrapper
}

func (w writeOps) CreateDraftState(ctx context.Context, state draft.State) error {
	if !state.SyncState.IsValid() {
		return fmt.Errorf("invalid sync state %v", state.SyncState)
	}

	sendingError, err := encodeSendingError(state.SendingError)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("INSERT INTO %v (%v) VALUES (?, ?, ?, ?, ?, ?, ?)", v0.DraftStatesTableName, draftStateFields)

	_, err = utils.ExecQuery(ctx, w.qw, query,
		state.ID.UserID,
		state.ID.MessageID,
		encodeAPIMessageID(state.APIMessageID),
		state.SyncState,
		state.Action,
		sendingError,
		state.SendingStatusConfirmed,
	)

	return err
}

func (w writeOps) UpdateDraftState(ctx context.Context, state draft.State) error {
	if !state.SyncState.IsValid() {
		return fmt.Errorf("invalid sync state %v", state.SyncState)
	}

	sendingError, err := encodeSendingError(state.SendingError)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("UPDATE %v SET `%v` = ?, `%v` = ?, `%v` = ?, `%v` = ?, `%v` = ? WHERE `%v` = ? AND `%v` = ?",
		v0.DraftStatesTableName,
		v0.DraftStatesFieldAPIMessageID,
		v0.DraftStatesFieldState,
		v0.DraftStatesFieldAction,
		v1.DraftStatesFieldSendingError,
		v1.DraftStatesFieldSendingStatusConfirmed,
		v0.DraftStatesFieldUserID,
		v0.DraftStatesFieldMessageID,
	)

	return utils.ExecQueryAndCheckUpdatedNotZero(ctx, w.qw, query,
		encodeAPIMessageID(state.APIMessageID),
		state.SyncState,
		state.Action,
		sendingError,
		state.SendingStatusConfirmed,
		state.ID.UserID,
		state.ID.MessageID,
	)
}

func (w writeOps) DeleteDraftState(ctx context.Context, ids ...draft.ID) error {
	query := fmt.Sprintf("DELETE FROM %v WHERE `%v` = ? AND `%v` = ?",
		v0.DraftStatesTableName,
		v0.DraftStatesFieldUserID,
		v0.DraftStatesFieldMessageID,
	)

	for _, id := range ids {
		if _, err := utils.ExecQuery(ctx, w.qw, query, id.UserID, id.MessageID); err != nil {
			return err
		}
	}

	return nil
}

func (w writeOps) DeleteDraftStatesForUser(ctx context.Context, userID draft.UserID) error {
	query := fmt.Sprintf("DELETE FROM %v WHERE `%v` = ?", v0.DraftStatesTableName, v0.DraftStatesFieldUserID)

	_, err := utils.ExecQuery(ctx, w.qw, query, userID)

	return err
}

func encodeAPIMessageID(id draft.MessageID) sql.NullString {
	return sql.NullString{String: string(id), Valid: id != ""}
}

func encodeSendingError(sendErr *draft.SendingError) (sql.NullString, error) {
	if sendErr == nil {
		return sql.NullString{}, nil
	}

	b, err := json.Marshal(sendErr)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode sending error: %w", err)
	}

	return sql.NullString{String: string(b), Valid: true}, nil
}
