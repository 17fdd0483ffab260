package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"natgpt/internal/model/conversation"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	owner_id   TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	position        INTEGER NOT NULL,
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	created_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, position);
`

// SQLiteRepo stores conversations in an embedded SQLite database.
type SQLiteRepo struct {
	db *sql.DB
}

// NewSQLiteRepo opens (or creates) the database at path. ":memory:" is supported.
func NewSQLiteRepo(path string) (*SQLiteRepo, error) {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)"
	if path == ":memory:" {
		dsn = ":memory:"
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteRepo{db: db}, nil
}

// Close releases the database handle.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// Ping checks the connection.
func (r *SQLiteRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// FindAll returns every stored conversation with its messages.
func (r *SQLiteRepo) FindAll(ctx context.Context) ([]*conversation.Conversation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, owner_id, created_at, updated_at FROM conversations`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	var headers []conversationRecord
	for rows.Next() {
		rec, err := scanConversation(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		headers = append(headers, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	rows.Close()

	msgs, err := r.loadMessages(ctx, "")
	if err != nil {
		return nil, err
	}

	out := make([]*conversation.Conversation, 0, len(headers))
	for _, rec := range headers {
		rec.Messages = msgs[rec.ID]
		c, err := rec.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// FindByID returns nil when absent.
func (r *SQLiteRepo) FindByID(ctx context.Context, id conversation.ConversationID) (*conversation.Conversation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, owner_id, created_at, updated_at FROM conversations WHERE id = ?`, id.String())
	rec, err := scanConversation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	msgs, err := r.loadMessages(ctx, id.String())
	if err != nil {
		return nil, err
	}
	rec.Messages = msgs[rec.ID]
	return rec.toDomain()
}

// Save upserts the conversation and replaces its message rows in one transaction.
func (r *SQLiteRepo) Save(ctx context.Context, conv *conversation.Conversation) error {
	rec := toRecord(conv)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversations (id, title, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, owner_id = excluded.owner_id,
			updated_at = excluded.updated_at`,
		rec.ID, rec.Title, rec.OwnerID, formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt))
	if err != nil {
		return fmt.Errorf("%w: upsert conversation: %v", ErrStorage, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, rec.ID); err != nil {
		return fmt.Errorf("%w: clear messages: %v", ErrStorage, err)
	}
	for i, m := range rec.Messages {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO messages (id, conversation_id, position, role, content, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			m.ID, rec.ID, i, m.Role, m.Content, formatTime(m.Timestamp))
		if err != nil {
			return fmt.Errorf("%w: insert message: %v", ErrStorage, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrStorage, err)
	}
	return nil
}

// Delete removes the conversation and its messages.
func (r *SQLiteRepo) Delete(ctx context.Context, id conversation.ConversationID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, id.String()); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrStorage, err)
	}
	return nil
}

// Exists checks presence by id.
func (r *SQLiteRepo) Exists(ctx context.Context, id conversation.ConversationID) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM conversations WHERE id = ?`, id.String()).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return n > 0, nil
}

// loadMessages groups message rows by conversation id. An empty id loads every conversation.
func (r *SQLiteRepo) loadMessages(ctx context.Context, convID string) (map[string][]messageRecord, error) {
	query := `SELECT conversation_id, id, role, content, created_at FROM messages`
	var args []any
	if convID != "" {
		query += ` WHERE conversation_id = ?`
		args = append(args, convID)
	}
	query += ` ORDER BY conversation_id, position`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer rows.Close()

	out := make(map[string][]messageRecord)
	for rows.Next() {
		var (
			cid, ts string
			m       messageRecord
		)
		if err := rows.Scan(&cid, &m.ID, &m.Role, &m.Content, &ts); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		if m.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		out[cid] = append(out[cid], m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (conversationRecord, error) {
	var (
		rec                  conversationRecord
		createdAt, updatedAt string
	)
	if err := row.Scan(&rec.ID, &rec.Title, &rec.OwnerID, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return rec, err
		}
		return rec, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	var err error
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return rec, err
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return rec, err
	}
	return rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad timestamp %q: %v", ErrStorage, s, err)
	}
	return t, nil
}
