package sqlite3

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ProtonMail/draftsync/draft"
	"github.com/ProtonMail/draftsync/internal/db_impl/sqlite3/utils"
	v2 "github.com/ProtonMail/draftsync/internal/db_impl/sqlite3/v2"
)

var attachmentStateFields = fmt.Sprintf("`%v`, `%v`, `%v`, `%v`, `%v`",
	v2.AttachmentStatesFieldUserID,
	v2.AttachmentStatesFieldMessageID,
	v2.AttachmentStatesFieldAttachmentID,
	v2.AttachmentStatesFieldAPIAttachmentID,
	v2.AttachmentStatesFieldState,
)

func (r readOps) GetAttachmentStates(ctx context.Context, id draft.ID) ([]draft.AttachmentState, error) {
	query := fmt.Sprintf("SELECT %v FROM %v WHERE `%v` = ? AND `%v` = ? ORDER BY `%v`",
		attachmentStateFields,
		v2.AttachmentStatesTableName,
		v2.AttachmentStatesFieldUserID,
		v2.AttachmentStatesFieldMessageID,
		v2.AttachmentStatesFieldAttachmentID,
	)

	return utils.MapQueryRowsFn(ctx, r.qw, query, scanAttachmentState, id.UserID, id.MessageID)
}

func (w writeOps) UpsertAttachmentState(ctx context.Context, state draft.AttachmentState) error {
	if !state.SyncState.IsValid() {
		return fmt.Errorf("invalid attachment sync state %v", state.SyncState)
	}

	query := fmt.Sprintf("INSERT INTO %v (%v) VALUES (?, ?, ?, ?, ?) "+
		"ON CONFLICT (`%v`, `%v`, `%v`) DO UPDATE SET `%v` = excluded.`%v`, `%v` = excluded.`%v`",
		v2.AttachmentStatesTableName,
		attachmentStateFields,
		v2.AttachmentStatesFieldUserID,
		v2.AttachmentStatesFieldMessageID,
		v2.AttachmentStatesFieldAttachmentID,
		v2.AttachmentStatesFieldAPIAttachmentID,
		v2.AttachmentStatesFieldAPIAttachmentID,
		v2.AttachmentStatesFieldState,
		v2.AttachmentStatesFieldState,
	)

	_, err := utils.ExecQuery(ctx, w.qw, query,
		state.ID.UserID,
		state.ID.MessageID,
		state.AttachmentID,
		sql.NullString{String: state.APIAttachmentID, Valid: state.APIAttachmentID != ""},
		state.SyncState,
	)

	return err
}

func (w writeOps) DeleteAttachmentStates(ctx context.Context, id draft.ID, attachmentIDs ...string) error {
	query := fmt.Sprintf("DELETE FROM %v WHERE `%v` = ? AND `%v` = ? AND (`%v` = ? OR `%v` = ?)",
		v2.AttachmentStatesTableName,
		v2.AttachmentStatesFieldUserID,
		v2.AttachmentStatesFieldMessageID,
		v2.AttachmentStatesFieldAttachmentID,
		v2.AttachmentStatesFieldAPIAttachmentID,
	)

	for _, attachmentID := range attachmentIDs {
		if _, err := utils.ExecQuery(ctx, w.qw, query, id.UserID, id.MessageID, attachmentID, attachmentID); err != nil {
			return err
		}
	}

	return nil
}

func (w writeOps) DeleteAttachmentStatesForDraft(ctx context.Context, ids ...draft.ID) error {
	query := fmt.Sprintf("DELETE FROM %v WHERE `%v` = ? AND `%v` = ?",
		v2.AttachmentStatesTableName,
		v2.AttachmentStatesFieldUserID,
		v2.AttachmentStatesFieldMessageID,
	)

	for _, id := range ids {
		if _, err := utils.ExecQuery(ctx, w.qw, query, id.UserID, id.MessageID); err != nil {
			return err
		}
	}

	return nil
}

func (w writeOps) DeleteAttachmentStatesForUser(ctx context.Context, userID draft.UserID) error {
	query := fmt.Sprintf("DELETE FROM %v WHERE `%v` = ?", v2.AttachmentStatesTableName, v2.AttachmentStatesFieldUserID)

	_, err := utils.ExecQuery(ctx, w.qw, query, userID)

	return err
}

func scanAttachmentState(scanner utils.RowScanner) (draft.AttachmentState, error) {
	var (
		state           draft.AttachmentState
		apiAttachmentID sql.NullString
	)

	if err := scanner.Scan(
		&state.ID.UserID,
		&state.ID.MessageID,
		&state.AttachmentID,
		&apiAttachmentID,
		&state.SyncState,
	); err != nil {
		return draft.AttachmentState{}, err
	}

	if apiAttachmentID.Valid {
		state.APIAttachmentID = apiAttachmentID.String
	}

	return state, nil
}
