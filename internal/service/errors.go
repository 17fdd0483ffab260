package service

import (
	"errors"
)

// ErrorKind classifies a use-case failure for the presentation layer.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindUnavailable
	KindForbidden
)

// Error is the sanitized error returned by every use-case. Message is safe to show users;
// the underlying cause is only logged.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// KindOf returns the kind of err, KindInternal for anything that is not an *Error.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// validation errors carry their final user-facing text
func validationError(msg string) *Error {
	return newError(KindValidation, msg)
}

var (
	ErrNotFound        = errors.New("conversation not found")
	ErrAIUnavailable   = errors.New("AI service is not available")
	ErrAIGeneration    = errors.New("AI service failed to generate a response")
	ErrEmptyAIResponse = errors.New("AI service returned an empty response")
)

// User-facing messages.
const (
	MsgConversationIDRequired = "Conversation ID is required"
	MsgContentRequired        = "Message content cannot be empty"
	MsgTitleRequired          = "Conversation title cannot be empty"
	MsgConversationFull       = "Conversation has reached the maximum number of messages"

	MsgCreateFailed   = "Failed to create conversation. Please try again."
	MsgDeleteNotFound = "The conversation could not be found or has already been deleted."
	MsgDeleteFailed   = "Failed to delete conversation. Please try again."
	MsgListFailed     = "Failed to retrieve conversations. Please try again."
	MsgGetNotFound    = "The conversation could not be found."
	MsgGetFailed      = "Failed to retrieve the conversation. Please try again."
	MsgSendNotFound   = "The conversation could not be found. Please try starting a new conversation."
	MsgAIUnavailable  = "Unable to get AI response. Please try again later."
	MsgUnexpected     = "An unexpected error occurred. Please try again."
	MsgPruneFailed    = "Failed to prune conversations. Please try again."
)
