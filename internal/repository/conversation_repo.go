package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"natgpt/internal/model/conversation"
	"natgpt/internal/pkg/mongodb"
)

// ConversationCollection is the mongo collection holding conversations.
const ConversationCollection = "conversations"

// ConversationRepo is the MongoDB conversation repository.
// Conversations are stored as one document each, keyed by the string id.
type ConversationRepo struct {
	collection *mongo.Collection
}

// NewConversationRepo creates a repository bound to db.
func NewConversationRepo(db *mongo.Database) *ConversationRepo {
	return &ConversationRepo{
		collection: db.Collection(ConversationCollection),
	}
}

// Collection implements mongodb.Model.
func (r *ConversationRepo) Collection() string {
	return ConversationCollection
}

// EnsureIndexes implements mongodb.Model.
func (r *ConversationRepo) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	return mongodb.CreateIndexes(ctx, db.Collection(ConversationCollection), []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "owner_id", Value: 1}, bson.E{Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("idx_owner_updated"),
		},
		{
			Keys:    bson.D{bson.E{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created"),
		},
	})
}

// FindAll returns every stored conversation.
func (r *ConversationRepo) FindAll(ctx context.Context) ([]*conversation.Conversation, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer cursor.Close(ctx)

	var records []conversationRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
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
func (r *ConversationRepo) FindByID(ctx context.Context, id conversation.ConversationID) (*conversation.Conversation, error) {
	var rec conversationRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return rec.toDomain()
}

// Save upserts by id.
func (r *ConversationRepo) Save(ctx context.Context, conv *conversation.Conversation) error {
	rec := toRecord(conv)
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, opts); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

// Delete removes by id.
func (r *ConversationRepo) Delete(ctx context.Context, id conversation.ConversationID) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String()}); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

// Exists checks presence by id.
func (r *ConversationRepo) Exists(ctx context.Context, id conversation.ConversationID) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id.String()}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return n > 0, nil
}
