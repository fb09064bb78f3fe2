package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	UsersCollection         = "users"
	VideosCollection        = "videos"
	CommentsCollection      = "comments"
	TweetsCollection        = "tweets"
	LikesCollection         = "likes"
	SubscriptionsCollection = "subscriptions"
	PlaylistsCollection     = "playlists"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

const defaultOpTimeout = 10 * time.Second

type base struct {
	col     *mongo.Collection
	timeout time.Duration
}

func newBase(db *mongo.Database, name string, timeout time.Duration) base {
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}
	return base{col: db.Collection(name), timeout: timeout}
}

func (b base) ctx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.timeout)
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return errors.Join(ErrDuplicate, err)
	}
	return err
}

// aggregateOne runs a pipeline expected to yield at most one document.
func (b base) aggregateOne(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	ctx, cancel := b.ctx(ctx)
	defer cancel()

	cur, err := b.col.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return err
		}
		return ErrNotFound
	}
	return cur.Decode(out)
}

func (b base) aggregateAll(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	ctx, cancel := b.ctx(ctx)
	defer cancel()

	cur, err := b.col.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

// orderByIDs rearranges docs to follow ids, dropping ids with no document.
func orderByIDs[T any](ids []primitive.ObjectID, docs []T, idOf func(T) primitive.ObjectID) []T {
	byID := make(map[primitive.ObjectID]T, len(docs))
	for _, d := range docs {
		byID[idOf(d)] = d
	}
	out := make([]T, 0, len(docs))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			out = append(out, d)
		}
	}
	return out
}
