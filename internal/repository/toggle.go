package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maxToggleAttempts = 3

// toggleRow flips the existence of the single row matching filter. The row
// is upserted with ReturnDocument=Before: no previous document means this
// call inserted it, otherwise the previous document is removed by id. The
// unique index on the filter fields keeps concurrent upserts from creating a
// second row; the losing upsert gets a duplicate key error and retries.
func toggleRow(ctx context.Context, b base, filter, onInsert bson.M) (bool, error) {
	for attempt := 0; attempt < maxToggleAttempts; attempt++ {
		active, err := toggleOnce(ctx, b, filter, onInsert)
		if mongo.IsDuplicateKeyError(err) {
			continue
		}
		return active, err
	}
	return false, fmt.Errorf("toggle gave up after %d attempts: %w", maxToggleAttempts, ErrDuplicate)
}

func toggleOnce(ctx context.Context, b base, filter, onInsert bson.M) (bool, error) {
	ctx, cancel := b.ctx(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.Before).
		SetProjection(bson.M{"_id": 1})

	var prev struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	err := b.col.FindOneAndUpdate(ctx, filter, bson.M{"$setOnInsert": onInsert}, opts).Decode(&prev)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	// DeletedCount may be 0 when a concurrent toggle removed the row first;
	// it is absent either way.
	if _, err := b.col.DeleteOne(ctx, bson.M{"_id": prev.ID}); err != nil {
		return false, err
	}
	return false, nil
}
