package connector

import (
	"errors"
	"fmt"
)

// API error codes with a meaning for the draft synchronization.
const (
	CodeMessageUpdateDraftNotDraft = 15034
	CodeMessageNotFound            = 2501
)

var (
	// ErrMessageAlreadySent is returned when the draft was sent in the meantime and is no longer a draft.
	ErrMessageAlreadySent = errors.New("message is already sent")

	// ErrCreateDraftRequestNotPerformed is returned when a create request was refused before reaching the API.
	ErrCreateDraftRequestNotPerformed = errors.New("create draft request not performed")

	ErrDraftNotFound = errors.New("draft not found on remote")
)

// APIError is an error response of the remote API.
type APIError struct {
	Status    int
	Code      int
	Message   string
	Retryable bool
}

func (err *APIError) Error() string {
	return fmt.Sprintf("%v (status=%v, code=%v)", err.Message, err.Status, err.Code)
}

func (err *APIError) Is(target error) bool {
	switch target {
	case ErrMessageAlreadySent:
		return err.Code == CodeMessageUpdateDraftNotDraft

	case ErrDraftNotFound:
		return err.Code == CodeMessageNotFound

	default:
		return false
	}
}

// AttachmentUploadError is returned when one of the draft's attachments could not be uploaded.
type AttachmentUploadError struct {
	AttachmentID string
	Err          error
}

func (err *AttachmentUploadError) Error() string {
	return fmt.Sprintf("failed to upload attachment %v: %v", err.AttachmentID, err.Err)
}

func (err *AttachmentUploadError) Unwrap() error {
	return err.Err
}

// IsRetryable reports whether the failed request may succeed when sent again unchanged.
func IsRetryable(err error) bool {
	var apiErr *APIError

	if errors.As(err, &apiErr) {
		return apiErr.Retryable
	}

	return false
}

func IsAttachmentUploadError(err error) bool {
	var attErr *AttachmentUploadError

	return errors.As(err, &attErr)
}
