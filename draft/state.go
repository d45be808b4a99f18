package draft

import "fmt"

// SyncState is the persisted position of a draft in its synchronization lifecycle.
type SyncState int

const (
	// Local drafts exist on the device only or carry changes which were not uploaded yet.
	Local SyncState = iota
	Synchronized
	Sending
	Sent
	ErrorSending
	ErrorUploadAttachments
)

func (s SyncState) String() string {
	switch s {
	case Local:
		return "Local"

	case Synchronized:
		return "Synchronized"

	case Sending:
		return "Sending"

	case Sent:
		return "Sent"

	case ErrorSending:
		return "ErrorSending"

	case ErrorUploadAttachments:
		return "ErrorUploadAttachments"

	default:
		return fmt.Sprintf("SyncState(%d)", int(s))
	}
}

func (s SyncState) IsValid() bool {
	return s >= Local && s <= ErrorUploadAttachments
}

type SendingErrorKind string

const (
	SendingErrorOther              SendingErrorKind = "Other"
	SendingErrorMessageAlreadySent SendingErrorKind = "MessageAlreadySent"
	SendingErrorGenericLocalized   SendingErrorKind = "GenericLocalized"
)

// SendingError describes why the last push or send of a draft failed.
type SendingError struct {
	Kind    SendingErrorKind `json:"kind"`
	Message string           `json:"message,omitempty"`
}

func (e SendingError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}

	return fmt.Sprintf("%v: %v", e.Kind, e.Message)
}

// State is the persisted synchronization record of a single draft.
type State struct {
	ID ID

	// APIMessageID is empty until the backend assigned an identifier to the draft.
	APIMessageID MessageID

	SyncState              SyncState
	Action                 Action
	SendingError           *SendingError
	SendingStatusConfirmed bool
}

// NewLocalState returns the record persisted when a draft starts being edited.
func NewLocalState(id ID, action Action) State {
	return State{
		ID:        id,
		SyncState: Local,
		Action:    action,
	}
}

// IsKnownToAPI reports whether the backend already holds a copy of the draft.
func (s State) IsKnownToAPI() bool {
	return s.APIMessageID != ""
}
