package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Model is implemented by anything owning a collection and its indexes.
type Model interface {
	// Collection returns the collection name.
	Collection() string

	// EnsureIndexes creates the indexes the model relies on.
	EnsureIndexes(ctx context.Context, db *mongo.Database) error
}

// EnsureAllIndexes runs EnsureIndexes for every model at startup.
func EnsureAllIndexes(ctx context.Context, db *mongo.Database, models ...Model) error {
	for _, model := range models {
		if err := model.EnsureIndexes(ctx, db); err != nil {
			return err
		}
	}
	return nil
}

// CreateIndexes creates indexes on coll; an empty list is a no-op.
func CreateIndexes(ctx context.Context, coll *mongo.Collection, indexes []mongo.IndexModel) error {
	if len(indexes) == 0 {
		return nil
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
