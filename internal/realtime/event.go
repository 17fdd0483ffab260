package realtime

import "time"

// Event types pushed to subscribers.
const (
	EventConversationCreated = "conversation.created"
	EventConversationDeleted = "conversation.deleted"
	EventMessageCreated      = "message.created"
)

// Event is one notification on the stream.
type Event struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversationId"`
	Data           any    `json:"data,omitempty"`
	Ts             int64  `json:"ts"`
}

// NewEvent stamps an event with the current time.
func NewEvent(typ, conversationID string, data any) Event {
	return Event{Type: typ, ConversationID: conversationID, Data: data, Ts: time.Now().UnixMilli()}
}

// Publisher delivers events to the subscribers of an owner.
type Publisher interface {
	Publish(ownerID string, evt Event)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(string, Event) {}
