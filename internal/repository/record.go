package repository

import (
	"fmt"
	"time"

	"natgpt/internal/model/conversation"
)

// conversationRecord is the stored shape shared by the file, cache and mongo adapters.
type conversationRecord struct {
	ID        string          `bson:"_id" json:"id"`
	Title     string          `bson:"title" json:"title"`
	OwnerID   string          `bson:"owner_id,omitempty" json:"ownerId,omitempty"`
	Messages  []messageRecord `bson:"messages" json:"messages"`
	CreatedAt time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time       `bson:"updated_at" json:"updatedAt"`
}

type messageRecord struct {
	ID        string    `bson:"id" json:"id"`
	Content   string    `bson:"content" json:"content"`
	Role      string    `bson:"role" json:"role"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

func toRecord(c *conversation.Conversation) conversationRecord {
	msgs := c.Messages()
	rec := conversationRecord{
		ID:        c.ID().String(),
		Title:     c.Title(),
		OwnerID:   c.OwnerID(),
		Messages:  make([]messageRecord, 0, len(msgs)),
		CreatedAt: c.CreatedAt(),
		UpdatedAt: c.UpdatedAt(),
	}
	for _, m := range msgs {
		rec.Messages = append(rec.Messages, messageRecord{
			ID:        m.ID().String(),
			Content:   m.Content(),
			Role:      m.Role().String(),
			Timestamp: m.Timestamp(),
		})
	}
	return rec
}

func (r conversationRecord) toDomain() (*conversation.Conversation, error) {
	id, err := conversation.NewConversationID(r.ID)
	if err != nil {
		return nil, err
	}
	msgs := make([]conversation.Message, 0, len(r.Messages))
	for _, mr := range r.Messages {
		m, err := mr.toDomain()
		if err != nil {
			return nil, fmt.Errorf("conversation %s: %w", r.ID, err)
		}
		msgs = append(msgs, m)
	}
	return conversation.Restore(id, r.Title, r.OwnerID, msgs, r.CreatedAt, r.UpdatedAt)
}

func (r messageRecord) toDomain() (conversation.Message, error) {
	id, err := conversation.NewMessageID(r.ID)
	if err != nil {
		return conversation.Message{}, err
	}
	role, err := conversation.ParseMessageRole(r.Role)
	if err != nil {
		return conversation.Message{}, err
	}
	return conversation.NewMessage(id, r.Content, role, r.Timestamp)
}
