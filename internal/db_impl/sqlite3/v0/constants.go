package v0

const DraftStatesTableName = "draft_states"
const DraftStatesFieldUserID = "user_id"
const DraftStatesFieldMessageID = "message_id"
const DraftStatesFieldAPIMessageID = "api_message_id"
const DraftStatesFieldState = "state"
const DraftStatesFieldAction = "action"

const VersionTableName = "draftsync_version"
const VersionFieldID = "id"
const VersionFieldVersion = "version"
