package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"natgpt/internal/model/conversation"
	"natgpt/internal/model/dto"
	"natgpt/internal/pkg/ctxutil"
	"natgpt/internal/repository"
)

// GetConversation loads a single conversation with its messages.
type GetConversation struct {
	repo repository.ConversationRepository
}

// NewGetConversation creates the use-case.
func NewGetConversation(repo repository.ConversationRepository) *GetConversation {
	return &GetConversation{repo: repo}
}

// Execute returns the conversation identified by rawID.
func (uc *GetConversation) Execute(ctx context.Context, rawID string) (*dto.ConversationDTO, error) {
	if strings.TrimSpace(rawID) == "" {
		return nil, validationError(MsgConversationIDRequired)
	}
	id, err := conversation.NewConversationID(rawID)
	if err != nil {
		return nil, validationError(MsgConversationIDRequired)
	}

	conv, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("conversation_id", rawID).Msg("failed to load conversation")
		return nil, newError(KindInternal, MsgGetFailed)
	}
	if conv == nil || !conv.IsAccessibleBy(ctxutil.UserIDOrEmpty(ctx)) {
		return nil, newError(KindNotFound, MsgGetNotFound)
	}

	out := dto.ToConversationDTO(conv)
	return &out, nil
}
