package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"natgpt/internal/config"
	"natgpt/internal/pkg/cache"
	"natgpt/internal/pkg/mongodb"
)

// Backends carries the connections a driver may need. Nil entries are unavailable.
type Backends struct {
	Mongo *mongodb.Client
	Cache cache.Cache
}

// New selects the repository adapter named by cfg.Driver. The returned cleanup releases
// resources the adapter opened itself; shared backends are closed by their owner.
func New(ctx context.Context, cfg *config.PersistenceConfig, b Backends) (ConversationRepository, func() error, error) {
	noop := func() error { return nil }

	var (
		repo    ConversationRepository
		cleanup = noop
	)

	switch cfg.Driver {
	case "memory", "":
		repo = NewMemoryRepo()
	case "file":
		fr, err := NewFileRepo(cfg.DataDir, cfg.FileKey)
		if err != nil {
			return nil, noop, err
		}
		repo = fr
	case "sqlite":
		sr, err := NewSQLiteRepo(cfg.SQLite)
		if err != nil {
			return nil, noop, err
		}
		repo, cleanup = sr, sr.Close
	case "mongo":
		if b.Mongo == nil {
			return nil, noop, fmt.Errorf("persistence driver mongo requires a MongoDB connection")
		}
		mr := NewConversationRepo(b.Mongo.Database())
		if err := mongodb.EnsureAllIndexes(ctx, b.Mongo.Database(), mr); err != nil {
			log.Warn().Err(err).Msg("failed to ensure conversation indexes")
		}
		repo = mr
	default:
		return nil, noop, fmt.Errorf("unsupported persistence driver: %s", cfg.Driver)
	}

	if cfg.Cache {
		if b.Cache == nil {
			log.Warn().Msg("conversation cache requested but Redis is unavailable, continuing without it")
		} else {
			repo = NewCachedRepo(repo, b.Cache, cache.ConversationCacheTTL)
		}
	}

	log.Info().Str("driver", cfg.Driver).Bool("cache", cfg.Cache).Msg("conversation repository ready")
	return repo, cleanup, nil
}
