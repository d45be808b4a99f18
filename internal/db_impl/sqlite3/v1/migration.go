package v1

import (
	"context"
	"fmt"

	"github.com/ProtonMail/draftsync/internal/db_impl/sqlite3/utils"
	v0 "github.com/ProtonMail/draftsync/internal/db_impl/sqlite3/v0"
)

const DraftStatesFieldSendingError = "sending_error"
const DraftStatesFieldSendingStatusConfirmed = "sending_status_confirmed"

// Migration adds the send outcome columns and the index used to resolve drafts by the id assigned by the API.
type Migration struct{}

func (m Migration) Run(ctx context.Context, tx utils.QueryWrapper) error {
	return utils.ExecQueries(ctx, tx,
		fmt.Sprintf("ALTER TABLE `%v` ADD COLUMN `%v` text NULL", v0.DraftStatesTableName, DraftStatesFieldSendingError),
		fmt.Sprintf("ALTER TABLE `%v` ADD COLUMN `%v` integer NOT NULL DEFAULT 0", v0.DraftStatesTableName, DraftStatesFieldSendingStatusConfirmed),
		fmt.Sprintf("CREATE INDEX `draftstate_user_id_api_message_id` ON `%v` (`%v`, `%v`)",
			v0.DraftStatesTableName,
			v0.DraftStatesFieldUserID,
			v0.DraftStatesFieldAPIMessageID,
		),
	)
}
