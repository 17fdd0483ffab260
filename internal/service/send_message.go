package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"natgpt/internal/model/conversation"
	"natgpt/internal/model/dto"
	"natgpt/internal/pkg/ctxutil"
	"natgpt/internal/repository"
)

// DefaultMaxMessageLength is the longest accepted message, in characters.
const DefaultMaxMessageLength = 10000

// SendMessageRequest a user turn.
type SendMessageRequest struct {
	ConversationID string `json:"conversationId"`
	Content        string `json:"content"`
	Model          string `json:"model,omitempty"`
}

// SendMessageResponse both turns of the exchange.
type SendMessageResponse struct {
	UserMessage    dto.MessageDTO `json:"userMessage"`
	AIMessage      dto.MessageDTO `json:"aiMessage"`
	ConversationID string         `json:"conversationId"`
	Title          string         `json:"title"`
}

// SendMessage appends a user message, asks the AI for a reply and stores both.
type SendMessage struct {
	repo      repository.ConversationRepository
	ai        AIService
	policy    ConversationPolicy
	maxLength int
}

// NewSendMessage creates the use-case. policy may be nil; maxLength <= 0 uses the default.
func NewSendMessage(repo repository.ConversationRepository, ai AIService, policy ConversationPolicy, maxLength int) *SendMessage {
	if maxLength <= 0 {
		maxLength = DefaultMaxMessageLength
	}
	return &SendMessage{repo: repo, ai: ai, policy: policy, maxLength: maxLength}
}

// Execute runs one exchange. The user message is persisted before the AI is called, so
// an AI failure leaves it stored without a reply.
func (uc *SendMessage) Execute(ctx context.Context, req SendMessageRequest) (*SendMessageResponse, error) {
	resp, err := uc.execute(ctx, req)
	if err == nil {
		return resp, nil
	}

	log.Error().
		Err(err).
		Str("conversation_id", req.ConversationID).
		Int("content_length", utf8.RuneCountInString(req.Content)).
		Msg("failed to send message")

	var se *Error
	switch {
	case errors.As(err, &se):
		return nil, se
	case errors.Is(err, ErrNotFound):
		return nil, newError(KindNotFound, MsgSendNotFound)
	case errors.Is(err, ErrAIUnavailable), errors.Is(err, ErrAIGeneration), errors.Is(err, ErrEmptyAIResponse):
		return nil, newError(KindUnavailable, MsgAIUnavailable)
	default:
		return nil, newError(KindInternal, MsgUnexpected)
	}
}

func (uc *SendMessage) execute(ctx context.Context, req SendMessageRequest) (*SendMessageResponse, error) {
	if err := uc.validate(req); err != nil {
		return nil, err
	}

	id, err := conversation.NewConversationID(req.ConversationID)
	if err != nil {
		return nil, validationError(MsgConversationIDRequired)
	}

	conv, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	if conv == nil || !conv.IsAccessibleBy(ctxutil.UserIDOrEmpty(ctx)) {
		return nil, ErrNotFound
	}
	if uc.policy != nil && !uc.policy.CanAddMessage(conv) {
		return nil, validationError(MsgConversationFull)
	}

	userMsg, err := conversation.NewUserMessage(req.Content)
	if err != nil {
		return nil, validationError(MsgContentRequired)
	}
	isFirst := conv.MessageCount() == 0
	conv = conv.AddMessage(userMsg)
	if isFirst && uc.policy != nil && conv.HasDefaultTitle() {
		if renamed, err := conv.Rename(uc.policy.GenerateTitle(userMsg.Content())); err == nil {
			conv = renamed
		}
	}
	if err := uc.repo.Save(ctx, conv); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}

	if !uc.ai.IsAvailable(ctx) {
		return nil, ErrAIUnavailable
	}

	history := conv.Messages()
	if uc.policy != nil {
		history = uc.policy.TrimConversationIfNeeded(history)
	}
	reply, err := uc.ai.GenerateResponse(ctx, userMsg.Content(), history, GenerateOptions{
		Model:          req.Model,
		IsFirstMessage: isFirst,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAIGeneration, err)
	}
	if strings.TrimSpace(reply) == "" {
		return nil, ErrEmptyAIResponse
	}

	aiMsg, err := conversation.NewAssistantMessage(reply)
	if err != nil {
		return nil, ErrEmptyAIResponse
	}
	conv = conv.AddMessage(aiMsg)
	if err := uc.repo.Save(ctx, conv); err != nil {
		return nil, fmt.Errorf("save assistant message: %w", err)
	}

	return &SendMessageResponse{
		UserMessage:    dto.ToMessageDTO(userMsg),
		AIMessage:      dto.ToMessageDTO(aiMsg),
		ConversationID: conv.ID().String(),
		Title:          conv.Title(),
	}, nil
}

func (uc *SendMessage) validate(req SendMessageRequest) error {
	if strings.TrimSpace(req.ConversationID) == "" {
		return validationError(MsgConversationIDRequired)
	}
	if strings.TrimSpace(req.Content) == "" {
		return validationError(MsgContentRequired)
	}
	if utf8.RuneCountInString(req.Content) > uc.maxLength {
		return validationError(fmt.Sprintf("Message is too long. Maximum length is %d characters.", uc.maxLength))
	}
	return nil
}
