package conversation

import (
	"strings"
	"time"
)

// DefaultTitle is used when a conversation is created without one.
const DefaultTitle = "New Conversation"

// Conversation is an ordered, append-only thread of messages.
// Every mutating method returns a new value and leaves the receiver untouched.
type Conversation struct {
	id        ConversationID
	title     string
	ownerID   string
	messages  []Message
	createdAt time.Time
	updatedAt time.Time
}

// New creates an empty conversation. When id is omitted a random one is generated.
func New(title string, id ...ConversationID) (*Conversation, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return nil, ErrEmptyTitle
	}

	convID := GenerateConversationID()
	if len(id) > 0 && !id[0].IsZero() {
		convID = id[0]
	}

	now := time.Now()
	return &Conversation{
		id:        convID,
		title:     trimmed,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// NewWithDefaultTitle creates an empty conversation titled DefaultTitle.
func NewWithDefaultTitle(id ...ConversationID) (*Conversation, error) {
	return New(DefaultTitle, id...)
}

// Restore rebuilds a conversation from persisted state.
func Restore(id ConversationID, title, ownerID string, messages []Message, createdAt, updatedAt time.Time) (*Conversation, error) {
	if id.IsZero() {
		return nil, ErrEmptyID
	}
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return nil, ErrEmptyTitle
	}
	msgs := make([]Message, len(messages))
	copy(msgs, messages)
	return &Conversation{
		id:        id,
		title:     trimmed,
		ownerID:   ownerID,
		messages:  msgs,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

func (c *Conversation) ID() ConversationID   { return c.id }
func (c *Conversation) Title() string        { return c.title }
func (c *Conversation) OwnerID() string      { return c.ownerID }
func (c *Conversation) CreatedAt() time.Time { return c.createdAt }
func (c *Conversation) UpdatedAt() time.Time { return c.updatedAt }

// Messages returns a copy of the message list in conversational order.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.messages)
}

// LastMessage returns the most recent message, if any.
func (c *Conversation) LastMessage() (Message, bool) {
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// HasDefaultTitle reports whether the title was never changed from DefaultTitle.
func (c *Conversation) HasDefaultTitle() bool {
	return c.title == DefaultTitle
}

// AddMessage returns a copy with msg appended and updatedAt refreshed.
func (c *Conversation) AddMessage(msg Message) *Conversation {
	next := c.clone()
	next.messages = append(next.messages, msg)
	next.updatedAt = time.Now()
	return next
}

// Rename returns a copy carrying the new title.
func (c *Conversation) Rename(title string) (*Conversation, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return nil, ErrEmptyTitle
	}
	next := c.clone()
	next.title = trimmed
	next.updatedAt = time.Now()
	return next, nil
}

// WithOwner returns a copy bound to the given caller identity.
func (c *Conversation) WithOwner(ownerID string) *Conversation {
	next := c.clone()
	next.ownerID = ownerID
	return next
}

// IsAccessibleBy reports whether callerID may read or modify c.
// Conversations without an owner are shared by every caller.
func (c *Conversation) IsAccessibleBy(callerID string) bool {
	return c.ownerID == "" || c.ownerID == callerID
}

// Equals compares conversations by id only.
func (c *Conversation) Equals(other *Conversation) bool {
	if other == nil {
		return false
	}
	return c.id.Equals(other.id)
}

func (c *Conversation) clone() *Conversation {
	msgs := make([]Message, len(c.messages), len(c.messages)+1)
	copy(msgs, c.messages)
	return &Conversation{
		id:        c.id,
		title:     c.title,
		ownerID:   c.ownerID,
		messages:  msgs,
		createdAt: c.createdAt,
		updatedAt: c.updatedAt,
	}
}
