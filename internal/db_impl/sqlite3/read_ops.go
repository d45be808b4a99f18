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

type readOps struct {
	qw utils.QueryWrapper
}

var draftStateFields = fmt.Sprintf("`%v`, `%v`, `%v`, `%v`, `%v`, `%v`, `%v`",
	v0.DraftStatesFieldUserID,
	v0.DraftStatesFieldMessageID,
	v0.DraftStatesFieldAPIMessageID,
	v0.DraftStatesFieldState,
	v0.DraftStatesFieldAction,
	v1.DraftStatesFieldSendingError,
	v1.DraftStatesFieldSendingStatusConfirmed,
)

func (r readOps) GetDraftState(ctx context.Context, id draft.ID) (draft.State, error) {
	query := fmt.Sprintf("SELECT %v FROM %v WHERE `%v` = ? AND `%v` = ?",
		draftStateFields,
		v0.DraftStatesTableName,
		v0.DraftStatesFieldUserID,
		v0.DraftStatesFieldMessageID,
	)

	return utils.MapQueryRowFn(ctx, r.qw, query, scanDraftState, id.UserID, id.MessageID)
}

func (r readOps) GetDraftStateByAPIMessageID(ctx context.Context, userID draft.UserID, apiMessageID draft.MessageID) (draft.State, error) {
	query := fmt.Sprintf("SELECT %v FROM %v WHERE `%v` = ? AND `%v` = ?",
		draftStateFields,
		v0.DraftStatesTableName,
		v0.DraftStatesFieldUserID,
		v0.DraftStatesFieldAPIMessageID,
	)

	return utils.MapQueryRowFn(ctx, r.qw, query, scanDraftState, userID, apiMessageID)
}

func (r readOps) GetDraftStates(ctx context.Context, userID draft.UserID) ([]draft.State, error) {
	query := fmt.Sprintf("SELECT %v FROM %v WHERE `%v` = ? ORDER BY `%v`",
		draftStateFields,
		v0.DraftStatesTableName,
		v0.DraftStatesFieldUserID,
		v0.DraftStatesFieldMessageID,
	)

	return utils.MapQueryRowsFn(ctx, r.qw, query, scanDraftState, userID)
}

func (r readOps) GetDraftStatesWithSyncState(ctx context.Context, userID draft.UserID, state draft.SyncState) ([]draft.State, error) {
	query := fmt.Sprintf("SELECT %v FROM %v WHERE `%v` = ? AND `%v` = ? ORDER BY `%v`",
		draftStateFields,
		v0.DraftStatesTableName,
		v0.DraftStatesFieldUserID,
		v0.DraftStatesFieldState,
		v0.DraftStatesFieldMessageID,
	)

	return utils.MapQueryRowsFn(ctx, r.qw, query, scanDraftState, userID, state)
}

func scanDraftState(scanner utils.RowScanner) (draft.State, error) {
	var (
		state        draft.State
		apiMessageID sql.NullString
		action       string
		sendingError sql.NullString
	)

	if err := scanner.Scan(
		&state.ID.UserID,
		&state.ID.MessageID,
		&apiMessageID,
		&state.SyncState,
		&action,
		&sendingError,
		&state.SendingStatusConfirmed,
	); err != nil {
		return draft.State{}, err
	}

	if apiMessageID.Valid {
		state.APIMessageID = draft.MessageID(apiMessageID.String)
	}

	parsed, err := draft.ParseAction(action)
	if err != nil {
		return draft.State{}, err
	}

	state.Action = parsed

	if sendingError.Valid {
		var sendErr draft.SendingError

		if err := json.Unmarshal([]byte(sendingError.String), &sendErr); err != nil {
			return draft.State{}, fmt.Errorf("failed to decode sending error: %w", err)
		}

		state.SendingError = &sendErr
	}

	return state, nil
}
