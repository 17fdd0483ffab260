package dto

import (
	"fmt"
	"time"

	"natgpt/internal/model/conversation"
)

// MessageDTO is the serializable projection of a message.
type MessageDTO struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Role      string `json:"role"`      // user / assistant
	Timestamp string `json:"timestamp"` // RFC3339
}

// ConversationDTO is the serializable projection of a conversation.
type ConversationDTO struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	OwnerID   string       `json:"ownerId,omitempty"`
	Messages  []MessageDTO `json:"messages"`
	CreatedAt string       `json:"createdAt"`
	UpdatedAt string       `json:"updatedAt"`
}

// TimeLayout is the timestamp format used by every DTO.
const TimeLayout = time.RFC3339Nano

// ToMessageDTO projects a domain message.
func ToMessageDTO(m conversation.Message) MessageDTO {
	return MessageDTO{
		ID:        m.ID().String(),
		Content:   m.Content(),
		Role:      m.Role().String(),
		Timestamp: m.Timestamp().UTC().Format(TimeLayout),
	}
}

// ToMessage rebuilds a domain message. Unknown roles are rejected.
func ToMessage(d MessageDTO) (conversation.Message, error) {
	id, err := conversation.NewMessageID(d.ID)
	if err != nil {
		return conversation.Message{}, err
	}
	role, err := conversation.ParseMessageRole(d.Role)
	if err != nil {
		return conversation.Message{}, err
	}
	ts, err := parseTime(d.Timestamp)
	if err != nil {
		return conversation.Message{}, fmt.Errorf("message %s timestamp: %w", d.ID, err)
	}
	return conversation.NewMessage(id, d.Content, role, ts)
}

// ToConversationDTO projects a domain conversation.
func ToConversationDTO(c *conversation.Conversation) ConversationDTO {
	msgs := c.Messages()
	out := ConversationDTO{
		ID:        c.ID().String(),
		Title:     c.Title(),
		OwnerID:   c.OwnerID(),
		Messages:  make([]MessageDTO, 0, len(msgs)),
		CreatedAt: c.CreatedAt().UTC().Format(TimeLayout),
		UpdatedAt: c.UpdatedAt().UTC().Format(TimeLayout),
	}
	for _, m := range msgs {
		out.Messages = append(out.Messages, ToMessageDTO(m))
	}
	return out
}

// ToConversation rebuilds a domain conversation from its DTO.
func ToConversation(d ConversationDTO) (*conversation.Conversation, error) {
	id, err := conversation.NewConversationID(d.ID)
	if err != nil {
		return nil, err
	}
	msgs := make([]conversation.Message, 0, len(d.Messages))
	for _, md := range d.Messages {
		m, err := ToMessage(md)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	createdAt, err := parseTime(d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("conversation %s createdAt: %w", d.ID, err)
	}
	updatedAt, err := parseTime(d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("conversation %s updatedAt: %w", d.ID, err)
	}
	return conversation.Restore(id, d.Title, d.OwnerID, msgs, createdAt, updatedAt)
}

// ToConversationDTOs projects a list, preserving order.
func ToConversationDTOs(convs []*conversation.Conversation) []ConversationDTO {
	out := make([]ConversationDTO, 0, len(convs))
	for _, c := range convs {
		out = append(out, ToConversationDTO(c))
	}
	return out
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(TimeLayout, s)
}
