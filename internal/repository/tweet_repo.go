package repository

import (
	"context"
	"time"

	"github.com/fathima-sithara/video-service/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TweetRepository interface {
	Create(ctx context.Context, t *models.Tweet) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Tweet, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Tweet, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListByOwner(ctx context.Context, owner, viewer primitive.ObjectID) ([]models.TweetView, error)
}

type mongoTweetRepo struct {
	base
}

func NewMongoTweetRepo(db *mongo.Database, timeout time.Duration) TweetRepository {
	return &mongoTweetRepo{base: newBase(db, TweetsCollection, timeout)}
}

func (r *mongoTweetRepo) Create(ctx context.Context, t *models.Tweet) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	res, err := r.col.InsertOne(ctx, t)
	if err != nil {
		return translate(err)
	}
	t.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoTweetRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Tweet, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	var t models.Tweet
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *mongoTweetRepo) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Tweet, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"content": content, "updatedAt": time.Now().UTC()}}
	var t models.Tweet
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&t); err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *mongoTweetRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *mongoTweetRepo) ListByOwner(ctx context.Context, owner, viewer primitive.ObjectID) ([]models.TweetView, error) {
	out := []models.TweetView{}
	if err := r.aggregateAll(ctx, TweetListPipeline(owner, viewer), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func TweetListPipeline(owner, viewer primitive.ObjectID) mongo.Pipeline {
	return concat(
		[]bson.D{
			matchStage(bson.M{"owner": owner}),
			sortStage(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}),
		},
		ownerSummaryLookup("owner", "ownerDetails"),
		[]bson.D{likesLookup(models.LikeTweet, "_id", "likes")},
		likeCountFields("likes", viewer),
	)
}
