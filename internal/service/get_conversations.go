package service

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"natgpt/internal/model/conversation"
	"natgpt/internal/model/dto"
	"natgpt/internal/pkg/ctxutil"
	"natgpt/internal/repository"
)

// GetConversationsResponse lists conversations, most recently updated first.
type GetConversationsResponse struct {
	Conversations []dto.ConversationDTO `json:"conversations"`
}

// GetConversations lists the caller's conversations.
type GetConversations struct {
	repo repository.ConversationRepository
}

// NewGetConversations creates the use-case.
func NewGetConversations(repo repository.ConversationRepository) *GetConversations {
	return &GetConversations{repo: repo}
}

// Execute returns every conversation visible to the caller.
func (uc *GetConversations) Execute(ctx context.Context) (*GetConversationsResponse, error) {
	all, err := uc.repo.FindAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to retrieve conversations")
		return nil, newError(KindInternal, MsgListFailed)
	}

	caller := ctxutil.UserIDOrEmpty(ctx)
	visible := make([]*conversation.Conversation, 0, len(all))
	for _, c := range all {
		if c.IsAccessibleBy(caller) {
			visible = append(visible, c)
		}
	}
	SortByRecent(visible)

	return &GetConversationsResponse{Conversations: dto.ToConversationDTOs(visible)}, nil
}

// SortByRecent orders by updatedAt descending, ties broken by id ascending.
func SortByRecent(convs []*conversation.Conversation) {
	sort.SliceStable(convs, func(i, j int) bool {
		a, b := convs[i], convs[j]
		if !a.UpdatedAt().Equal(b.UpdatedAt()) {
			return a.UpdatedAt().After(b.UpdatedAt())
		}
		return a.ID().String() < b.ID().String()
	})
}
