package repository

import (
	"context"
	"sync"

	"natgpt/internal/model/conversation"
)

// MemoryRepo keeps conversations in process memory.
type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]*conversation.Conversation
}

// NewMemoryRepo creates an empty in-memory repository.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]*conversation.Conversation)}
}

// FindAll returns every stored conversation.
func (r *MemoryRepo) FindAll(ctx context.Context) ([]*conversation.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*conversation.Conversation, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, c)
	}
	return out, nil
}

// FindByID returns nil when absent.
func (r *MemoryRepo) FindByID(ctx context.Context, id conversation.ConversationID) (*conversation.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.items[id.String()], nil
}

// Save upserts by id. Conversations are immutable so the pointer is stored as is.
func (r *MemoryRepo) Save(ctx context.Context, conv *conversation.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[conv.ID().String()] = conv
	return nil
}

// Delete removes by id.
func (r *MemoryRepo) Delete(ctx context.Context, id conversation.ConversationID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id.String())
	return nil
}

// Exists checks presence by id.
func (r *MemoryRepo) Exists(ctx context.Context, id conversation.ConversationID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[id.String()]
	return ok, nil
}
