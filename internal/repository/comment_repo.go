package repository

import (
	"context"
	"time"

	"github.com/fathima-sithara/video-service/internal/models"
	"github.com/fathima-sithara/video-service/internal/pagination"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CommentRepository interface {
	Create(ctx context.Context, c *models.Comment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	IDsByVideo(ctx context.Context, videoID primitive.ObjectID) ([]primitive.ObjectID, error)
	DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) (int64, error)
	ListByVideo(ctx context.Context, videoID, viewer primitive.ObjectID, p pagination.Params) (pagination.Page[models.CommentView], error)
}

type mongoCommentRepo struct {
	base
}

func NewMongoCommentRepo(db *mongo.Database, timeout time.Duration) CommentRepository {
	return &mongoCommentRepo{base: newBase(db, CommentsCollection, timeout)}
}

func (r *mongoCommentRepo) Create(ctx context.Context, c *models.Comment) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	res, err := r.col.InsertOne(ctx, c)
	if err != nil {
		return translate(err)
	}
	c.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoCommentRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	var c models.Comment
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *mongoCommentRepo) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"content": content, "updatedAt": time.Now().UTC()}}
	var c models.Comment
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *mongoCommentRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *mongoCommentRepo) IDsByVideo(ctx context.Context, videoID primitive.ObjectID) ([]primitive.ObjectID, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"video": videoID}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids, nil
}

func (r *mongoCommentRepo) DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) (int64, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"video": videoID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *mongoCommentRepo) ListByVideo(ctx context.Context, videoID, viewer primitive.ObjectID, p pagination.Params) (pagination.Page[models.CommentView], error) {
	var res pagination.FacetResult[models.CommentView]
	if err := r.aggregateOne(ctx, CommentListPipeline(videoID, viewer, p), &res); err != nil {
		return pagination.Page[models.CommentView]{}, err
	}
	return res.Page(p), nil
}

// CommentListPipeline pages a video's comments, newest first, each with its
// author and comment like count.
func CommentListPipeline(videoID, viewer primitive.ObjectID, p pagination.Params) mongo.Pipeline {
	item := concat(
		ownerSummaryLookup("owner", "owner"),
		[]bson.D{likesLookup(models.LikeComment, "_id", "likes")},
		likeCountFields("likes", viewer),
	)
	return mongo.Pipeline{
		matchStage(bson.M{"video": videoID}),
		sortStage(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}),
		pagination.FacetStage(p, item...),
	}
}
