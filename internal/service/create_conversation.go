package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"natgpt/internal/model/conversation"
	"natgpt/internal/model/dto"
	"natgpt/internal/pkg/ctxutil"
	"natgpt/internal/repository"
)

// CreateConversationRequest optional title; empty means the default title.
type CreateConversationRequest struct {
	Title string `json:"title,omitempty"`
}

// CreateConversationResponse wraps the created conversation.
type CreateConversationResponse struct {
	Conversation dto.ConversationDTO `json:"conversation"`
}

// CreateConversation starts a new conversation.
type CreateConversation struct {
	repo repository.ConversationRepository
}

// NewCreateConversation creates the use-case.
func NewCreateConversation(repo repository.ConversationRepository) *CreateConversation {
	return &CreateConversation{repo: repo}
}

// Execute builds and persists a conversation owned by the caller.
func (uc *CreateConversation) Execute(ctx context.Context, req CreateConversationRequest) (*CreateConversationResponse, error) {
	var (
		conv *conversation.Conversation
		err  error
	)
	if strings.TrimSpace(req.Title) != "" {
		conv, err = conversation.New(req.Title)
	} else {
		conv, err = conversation.NewWithDefaultTitle()
	}
	if err == nil {
		conv = conv.WithOwner(ctxutil.UserIDOrEmpty(ctx))
		err = uc.repo.Save(ctx, conv)
	}
	if err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("failed to create conversation")
		if errors.Is(err, conversation.ErrEmptyTitle) || strings.Contains(err.Error(), "title cannot be empty") {
			return nil, validationError(MsgTitleRequired)
		}
		return nil, newError(KindInternal, MsgCreateFailed)
	}

	return &CreateConversationResponse{Conversation: dto.ToConversationDTO(conv)}, nil
}
