package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"natgpt/internal/model/conversation"
	"natgpt/internal/pkg/ctxutil"
	"natgpt/internal/repository"
)

// DeleteConversationResponse reports the outcome of a delete.
type DeleteConversationResponse struct {
	Success bool `json:"success"`
}

// DeleteConversation removes a conversation and its messages.
type DeleteConversation struct {
	repo repository.ConversationRepository
}

// NewDeleteConversation creates the use-case.
func NewDeleteConversation(repo repository.ConversationRepository) *DeleteConversation {
	return &DeleteConversation{repo: repo}
}

// Execute deletes the conversation identified by rawID.
func (uc *DeleteConversation) Execute(ctx context.Context, rawID string) (*DeleteConversationResponse, error) {
	if strings.TrimSpace(rawID) == "" {
		return nil, validationError(MsgConversationIDRequired)
	}

	err := uc.delete(ctx, rawID)
	if err == nil {
		return &DeleteConversationResponse{Success: true}, nil
	}

	log.Error().Err(err).Str("conversation_id", rawID).Msg("failed to delete conversation")
	if errors.Is(err, ErrNotFound) {
		return nil, newError(KindNotFound, MsgDeleteNotFound)
	}
	return nil, newError(KindInternal, MsgDeleteFailed)
}

func (uc *DeleteConversation) delete(ctx context.Context, rawID string) error {
	id, err := conversation.NewConversationID(rawID)
	if err != nil {
		return err
	}

	exists, err := uc.repo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	conv, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if conv == nil || !conv.IsAccessibleBy(ctxutil.UserIDOrEmpty(ctx)) {
		return ErrNotFound
	}

	return uc.repo.Delete(ctx, id)
}
