package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"natgpt/internal/repository"
)

// PruneConversationsResponse reports how many conversations were removed.
type PruneConversationsResponse struct {
	Deleted int `json:"deleted"`
}

// PruneConversations deletes conversations the policy considers archived.
type PruneConversations struct {
	repo   repository.ConversationRepository
	policy ConversationPolicy
}

// NewPruneConversations creates the use-case.
func NewPruneConversations(repo repository.ConversationRepository, policy ConversationPolicy) *PruneConversations {
	return &PruneConversations{repo: repo, policy: policy}
}

// Execute walks every conversation and deletes the stale ones. With dryRun only counts.
func (uc *PruneConversations) Execute(ctx context.Context, dryRun bool) (*PruneConversationsResponse, error) {
	all, err := uc.repo.FindAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to list conversations for pruning")
		return nil, newError(KindInternal, MsgPruneFailed)
	}

	deleted := 0
	for _, c := range all {
		if !uc.policy.ShouldArchive(c) {
			continue
		}
		if !dryRun {
			if err := uc.repo.Delete(ctx, c.ID()); err != nil {
				log.Error().Err(err).Str("conversation_id", c.ID().String()).Msg("failed to prune conversation")
				return nil, newError(KindInternal, MsgPruneFailed)
			}
		}
		deleted++
	}

	log.Info().Int("deleted", deleted).Bool("dry_run", dryRun).Msg("pruned conversations")
	return &PruneConversationsResponse{Deleted: deleted}, nil
}
