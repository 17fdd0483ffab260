package service

import (
	"context"

	"natgpt/internal/model/conversation"
)

// GenerateOptions tunes a single completion.
type GenerateOptions struct {
	Model          string
	IsFirstMessage bool
}

// AIService produces assistant replies.
type AIService interface {
	// GenerateResponse answers prompt given the conversation so far. history already
	// contains the user message carrying prompt as its last element.
	GenerateResponse(ctx context.Context, prompt string, history []conversation.Message, opts GenerateOptions) (string, error)
	IsAvailable(ctx context.Context) bool
	MaxTokens() int
	EstimateTokens(text string) int
}

// ConversationPolicy holds the lifecycle rules applied to conversations.
type ConversationPolicy interface {
	GenerateTitle(firstMessage string) string
	ShouldArchive(conv *conversation.Conversation) bool
	MaxMessageLimit() int
	CanAddMessage(conv *conversation.Conversation) bool
	TrimConversationIfNeeded(messages []conversation.Message) []conversation.Message
}
