package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"natgpt/internal/config"
	"natgpt/internal/handler"
	"natgpt/internal/pkg/cache"
	"natgpt/internal/pkg/mongodb"
	"natgpt/internal/repository"
	"natgpt/internal/service"
)

// Infra owns the connections opened at startup.
type Infra struct {
	Repo   repository.ConversationRepository
	Mongo  *mongodb.Client
	Redis  *cache.RedisCache
	Checks map[string]handler.CheckFunc

	repoCleanup func() error
}

// OpenInfra connects the backends the persistence config needs and builds the repository.
func OpenInfra(ctx context.Context, cfg *config.Config) (*Infra, error) {
	infra := &Infra{Checks: map[string]handler.CheckFunc{}}

	if cfg.Persistence.Driver == "mongo" {
		client, err := mongodb.New(&cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		infra.Mongo = client
		infra.Checks["mongo"] = client.Ping
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")
	}

	var backendsCache cache.Cache
	if cfg.Persistence.Cache && cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without it")
		} else {
			infra.Redis = rc
			backendsCache = rc
			infra.Checks["redis"] = rc.Ping
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	repo, cleanup, err := repository.New(ctx, &cfg.Persistence, repository.Backends{
		Mongo: infra.Mongo,
		Cache: backendsCache,
	})
	if err != nil {
		_ = infra.Close(ctx)
		return nil, err
	}
	infra.Repo = repo
	infra.repoCleanup = cleanup
	if p, ok := unwrapPinger(repo); ok {
		infra.Checks["store"] = p.Ping
	}

	return infra, nil
}

// Close releases every connection.
func (i *Infra) Close(ctx context.Context) error {
	var errs []error
	if i.repoCleanup != nil {
		errs = append(errs, i.repoCleanup())
	}
	if i.Redis != nil {
		errs = append(errs, i.Redis.Close())
	}
	if i.Mongo != nil {
		errs = append(errs, i.Mongo.Close(ctx))
	}
	return errors.Join(errs...)
}

type pinger interface {
	Ping(ctx context.Context) error
}

func unwrapPinger(repo repository.ConversationRepository) (pinger, bool) {
	if cr, ok := repo.(*repository.CachedRepo); ok {
		repo = cr.Inner()
	}
	p, ok := repo.(pinger)
	return p, ok
}

// NewPolicy builds the conversation policy, loading the word segmenter when possible.
func NewPolicy(cfg *config.ChatConfig) service.ConversationPolicy {
	seg, err := service.LoadSegmenter()
	if err != nil {
		log.Warn().Err(err).Msg("failed to load segmenter dictionary, titles will split on whitespace")
		return service.NewDefaultPolicy(*cfg, nil)
	}
	return service.NewDefaultPolicy(*cfg, seg)
}
