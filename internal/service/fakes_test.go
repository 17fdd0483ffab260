package service

import (
	"context"
	"errors"
	"sync"

	"natgpt/internal/model/conversation"
)

type fakeRepo struct {
	mu     sync.Mutex
	convs  map[string]*conversation.Conversation
	order  []string
	err    error
	saves  int
	exists int
	finds  int
	dels   int
}

func newFakeRepo(convs ...*conversation.Conversation) *fakeRepo {
	r := &fakeRepo{convs: map[string]*conversation.Conversation{}}
	for _, c := range convs {
		r.put(c)
	}
	return r
}

func (r *fakeRepo) put(c *conversation.Conversation) {
	key := c.ID().String()
	if _, ok := r.convs[key]; !ok {
		r.order = append(r.order, key)
	}
	r.convs[key] = c
}

func (r *fakeRepo) FindAll(ctx context.Context) ([]*conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*conversation.Conversation, 0, len(r.order))
	for _, k := range r.order {
		if c, ok := r.convs[k]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id conversation.ConversationID) (*conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	if r.err != nil {
		return nil, r.err
	}
	return r.convs[id.String()], nil
}

func (r *fakeRepo) Save(ctx context.Context, c *conversation.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.err != nil {
		return r.err
	}
	r.put(c)
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id conversation.ConversationID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dels++
	if r.err != nil {
		return r.err
	}
	delete(r.convs, id.String())
	return nil
}

func (r *fakeRepo) Exists(ctx context.Context, id conversation.ConversationID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exists++
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.convs[id.String()]
	return ok, nil
}

type fakeAI struct {
	available bool
	reply     string
	err       error
	calls     int
	lastCtx   []conversation.Message
	lastOpts  GenerateOptions
}

func (a *fakeAI) GenerateResponse(ctx context.Context, prompt string, history []conversation.Message, opts GenerateOptions) (string, error) {
	a.calls++
	a.lastCtx = history
	a.lastOpts = opts
	return a.reply, a.err
}

func (a *fakeAI) IsAvailable(ctx context.Context) bool { return a.available }
func (a *fakeAI) MaxTokens() int                       { return 4096 }
func (a *fakeAI) EstimateTokens(text string) int       { return (len([]rune(text)) + 3) / 4 }

var errBoom = errors.New("boom")
