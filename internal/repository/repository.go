package repository

import (
	"context"
	"errors"

	"natgpt/internal/model/conversation"
)

// ErrStorage wraps failures coming from the underlying store.
var ErrStorage = errors.New("conversation storage failure")

// ConversationRepository is the persistence contract for conversations.
// FindByID returns (nil, nil) when the conversation does not exist. FindAll makes no
// ordering promise. Delete of a missing id is not an error.
type ConversationRepository interface {
	FindAll(ctx context.Context) ([]*conversation.Conversation, error)
	FindByID(ctx context.Context, id conversation.ConversationID) (*conversation.Conversation, error)
	Save(ctx context.Context, conv *conversation.Conversation) error
	Delete(ctx context.Context, id conversation.ConversationID) error
	Exists(ctx context.Context, id conversation.ConversationID) (bool, error)
}
