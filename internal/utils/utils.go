package utils

import (
	"errors"

	"github.com/google/uuid"
)

// NewRandomMessageID return a new random message ID. For debugging purposes, the ID starts with the 'msg-' prefix.
func NewRandomMessageID() string {
	return "msg-" + uuid.NewString()
}

// NewRandomConversationID return a new random conversation ID. For debugging purposes, the ID starts with the 'conv-' prefix.
func NewRandomConversationID() string {
	return "conv-" + uuid.NewString()
}

// NewRandomAttachmentID return a new random attachment ID. For debugging purposes, the ID starts with the 'att-' prefix.
func NewRandomAttachmentID() string {
	return "att-" + uuid.NewString()
}

// ShortID return a string containing a short version of the given ID. Use only for debug display.
func ShortID(id string) string {
	const l = 12

	if len(id) < l {
		return id
	}

	return id[0:l] + "..."
}

// ErrCause returns the cause of the error, the inner-most error in the wrapped chain.
func ErrCause(err error) error {
	cause := err

	for errors.Unwrap(cause) != nil {
		cause = errors.Unwrap(cause)
	}

	return cause
}
