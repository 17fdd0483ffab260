package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"natgpt/internal/model/conversation"
	"natgpt/internal/pkg/cache"
)

// CachedRepo adds a read-through cache for FindByID in front of another repository.
// Cache errors are logged and never fail the call.
type CachedRepo struct {
	inner ConversationRepository
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedRepo wraps inner. A non-positive ttl uses cache.ConversationCacheTTL.
func NewCachedRepo(inner ConversationRepository, c cache.Cache, ttl time.Duration) *CachedRepo {
	if ttl <= 0 {
		ttl = cache.ConversationCacheTTL
	}
	return &CachedRepo{inner: inner, cache: c, ttl: ttl}
}

// Inner returns the wrapped repository.
func (r *CachedRepo) Inner() ConversationRepository {
	return r.inner
}

// FindAll is not cached.
func (r *CachedRepo) FindAll(ctx context.Context) ([]*conversation.Conversation, error) {
	return r.inner.FindAll(ctx)
}

// FindByID serves from cache when possible.
func (r *CachedRepo) FindByID(ctx context.Context, id conversation.ConversationID) (*conversation.Conversation, error) {
	key := cache.ConversationCacheKey(id.String())

	var rec conversationRecord
	err := r.cache.Get(ctx, key, &rec)
	if err == nil {
		if c, convErr := rec.toDomain(); convErr == nil {
			return c, nil
		}
		r.evict(ctx, key)
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		log.Warn().Err(err).Str("key", key).Msg("conversation cache read failed")
	}

	c, err := r.inner.FindByID(ctx, id)
	if err != nil || c == nil {
		return c, err
	}
	if err := r.cache.Set(ctx, key, toRecord(c), r.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("conversation cache write failed")
	}
	return c, nil
}

// Save writes through and invalidates the cached copy.
func (r *CachedRepo) Save(ctx context.Context, conv *conversation.Conversation) error {
	if err := r.inner.Save(ctx, conv); err != nil {
		return err
	}
	r.evict(ctx, cache.ConversationCacheKey(conv.ID().String()))
	return nil
}

// Delete removes from the store and the cache.
func (r *CachedRepo) Delete(ctx context.Context, id conversation.ConversationID) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	r.evict(ctx, cache.ConversationCacheKey(id.String()))
	return nil
}

// Exists consults the cache before the store.
func (r *CachedRepo) Exists(ctx context.Context, id conversation.ConversationID) (bool, error) {
	var rec conversationRecord
	if err := r.cache.Get(ctx, cache.ConversationCacheKey(id.String()), &rec); err == nil {
		return true, nil
	}
	return r.inner.Exists(ctx, id)
}

func (r *CachedRepo) evict(ctx context.Context, key string) {
	if err := r.cache.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("conversation cache evict failed")
	}
}
