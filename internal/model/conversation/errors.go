package conversation

import "errors"

var (
	ErrEmptyID      = errors.New("id cannot be empty")
	ErrEmptyTitle   = errors.New("conversation title cannot be empty")
	ErrEmptyContent = errors.New("message content cannot be empty")
	ErrInvalidRole  = errors.New("invalid message role")
)
