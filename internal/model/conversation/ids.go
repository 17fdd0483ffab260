package conversation

import (
	"strings"

	"github.com/google/uuid"
)

// ConversationID identifies a conversation. The zero value is not a valid id.
type ConversationID struct {
	value string
}

// NewConversationID builds an id from raw input, trimming surrounding whitespace.
func NewConversationID(raw string) (ConversationID, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return ConversationID{}, ErrEmptyID
	}
	return ConversationID{value: v}, nil
}

// GenerateConversationID returns a random UUID-backed id.
func GenerateConversationID() ConversationID {
	return ConversationID{value: uuid.NewString()}
}

func (id ConversationID) String() string { return id.value }
func (id ConversationID) IsZero() bool   { return id.value == "" }

// Equals compares by underlying value.
func (id ConversationID) Equals(other ConversationID) bool {
	return id.value == other.value
}

// MessageID identifies a single message.
type MessageID struct {
	value string
}

// NewMessageID builds an id from raw input, trimming surrounding whitespace.
func NewMessageID(raw string) (MessageID, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return MessageID{}, ErrEmptyID
	}
	return MessageID{value: v}, nil
}

// GenerateMessageID returns a random UUID-backed id.
func GenerateMessageID() MessageID {
	return MessageID{value: uuid.NewString()}
}

func (id MessageID) String() string { return id.value }
func (id MessageID) IsZero() bool   { return id.value == "" }

// Equals compares by underlying value.
func (id MessageID) Equals(other MessageID) bool {
	return id.value == other.value
}
