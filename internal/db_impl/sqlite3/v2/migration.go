package v2

import (
	"context"
	"fmt"

	"github.com/ProtonMail/draftsync/internal/db_impl/sqlite3/utils"
)

const AttachmentStatesTableName = "attachment_states"
const AttachmentStatesFieldUserID = "user_id"
const AttachmentStatesFieldMessageID = "message_id"
const AttachmentStatesFieldAttachmentID = "attachment_id"
const AttachmentStatesFieldAPIAttachmentID = "api_attachment_id"
const AttachmentStatesFieldState = "state"

// Migration adds the upload state of the attachments of each draft.
type Migration struct{}

func (m Migration) Run(ctx context.Context, tx utils.QueryWrapper) error {
	return utils.ExecQueries(ctx, tx,
		fmt.Sprintf("CREATE TABLE `%[1]v` (`%[2]v` text NOT NULL, `%[3]v` text NOT NULL, `%[4]v` text NOT NULL, "+
			"`%[5]v` text NULL, `%[6]v` integer NOT NULL, PRIMARY KEY (`%[2]v`, `%[3]v`, `%[4]v`))",
			AttachmentStatesTableName,
			AttachmentStatesFieldUserID,
			AttachmentStatesFieldMessageID,
			AttachmentStatesFieldAttachmentID,
			AttachmentStatesFieldAPIAttachmentID,
			AttachmentStatesFieldState,
		),
		fmt.Sprintf("CREATE INDEX `attachmentstate_user_id` ON `%v` (`%v`)",
			AttachmentStatesTableName,
			AttachmentStatesFieldUserID,
		),
	)
}
