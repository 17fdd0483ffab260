package conversation

import (
	"fmt"
	"strings"
	"time"
)

// Message is a single immutable turn in a conversation.
// Two messages are the same message when their ids match.
type Message struct {
	id        MessageID
	content   string
	role      MessageRole
	timestamp time.Time
}

// NewMessage validates and builds a message. A zero timestamp defaults to now.
func NewMessage(id MessageID, content string, role MessageRole, timestamp time.Time) (Message, error) {
	if id.IsZero() {
		return Message{}, ErrEmptyID
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return Message{}, ErrEmptyContent
	}
	if !role.IsValid() {
		return Message{}, fmt.Errorf("%w: %q", ErrInvalidRole, string(role))
	}
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	return Message{
		id:        id,
		content:   trimmed,
		role:      role,
		timestamp: timestamp,
	}, nil
}

// NewUserMessage creates a user message with a fresh id and the current time.
func NewUserMessage(content string) (Message, error) {
	return NewMessage(GenerateMessageID(), content, RoleUser, time.Now())
}

// NewAssistantMessage creates an assistant message with a fresh id and the current time.
func NewAssistantMessage(content string) (Message, error) {
	return NewMessage(GenerateMessageID(), content, RoleAssistant, time.Now())
}

func (m Message) ID() MessageID        { return m.id }
func (m Message) Content() string      { return m.content }
func (m Message) Role() MessageRole    { return m.role }
func (m Message) Timestamp() time.Time { return m.timestamp }

// IsFromUser reports whether the user authored m.
func (m Message) IsFromUser() bool { return m.role == RoleUser }

// Equals compares messages by id only.
func (m Message) Equals(other Message) bool {
	return m.id.Equals(other.id)
}
