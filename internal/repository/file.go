package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"natgpt/internal/model/conversation"
)

// DefaultFileKey names the JSON blob holding every conversation.
const DefaultFileKey = "chatgpt-clone-conversations"

// FileRepo stores all conversations as a single JSON array on disk.
// Every save rewrites the whole blob; concurrent processes sharing the file race and the
// last writer wins.
type FileRepo struct {
	mu   sync.Mutex
	path string
}

// NewFileRepo creates a file repository under dir using key as the file name.
func NewFileRepo(dir, key string) (*FileRepo, error) {
	if key == "" {
		key = DefaultFileKey
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return &FileRepo{path: filepath.Join(dir, key+".json")}, nil
}

// Path returns the backing file location.
func (r *FileRepo) Path() string {
	return r.path
}

// FindAll returns every stored conversation.
func (r *FileRepo) FindAll(ctx context.Context) ([]*conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}
	out := make([]*conversation.Conversation, 0, len(records))
	for _, rec := range records {
		c, err := rec.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// FindByID returns nil when absent.
func (r *FileRepo) FindByID(ctx context.Context, id conversation.ConversationID) (*conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.ID == id.String() {
			return rec.toDomain()
		}
	}
	return nil, nil
}

// Save upserts by id, keeping the position of an existing entry.
func (r *FileRepo) Save(ctx context.Context, conv *conversation.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}
	rec := toRecord(conv)
	replaced := false
	for i := range records {
		if records[i].ID == rec.ID {
			records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, rec)
	}
	return r.store(records)
}

// Delete removes by id. Missing ids are ignored.
func (r *FileRepo) Delete(ctx context.Context, id conversation.ConversationID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, rec := range records {
		if rec.ID != id.String() {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(records) {
		return nil
	}
	return r.store(kept)
}

// Exists checks presence by id.
func (r *FileRepo) Exists(ctx context.Context, id conversation.ConversationID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return false, err
	}
	for _, rec := range records {
		if rec.ID == id.String() {
			return true, nil
		}
	}
	return false, nil
}

// load reads the blob. A corrupt blob is discarded and treated as empty.
func (r *FileRepo) load() ([]conversationRecord, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrStorage, r.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var records []conversationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Warn().Err(err).Str("path", r.path).Msg("corrupted conversation file, clearing")
		if rmErr := os.Remove(r.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: clear %s: %v", ErrStorage, r.path, rmErr)
		}
		return nil, nil
	}
	return records, nil
}

func (r *FileRepo) store(records []conversationRecord) error {
	if records == nil {
		records = []conversationRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrStorage, err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStorage, tmp, err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: rename %s: %v", ErrStorage, tmp, err)
	}
	return nil
}
