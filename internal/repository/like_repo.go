package repository

import (
	"context"
	"time"

	"github.com/fathima-sithara/video-service/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type LikeRepository interface {
	Toggle(ctx context.Context, target models.LikeTarget, actor primitive.ObjectID) (bool, error)
	Count(ctx context.Context, target models.LikeTarget) (int64, error)
	DeleteByTargets(ctx context.Context, kind models.LikeKind, ids []primitive.ObjectID) (int64, error)
	LikedVideos(ctx context.Context, actor primitive.ObjectID) ([]models.VideoCard, error)
}

type mongoLikeRepo struct {
	base
}

func NewMongoLikeRepo(db *mongo.Database, timeout time.Duration) LikeRepository {
	return &mongoLikeRepo{base: newBase(db, LikesCollection, timeout)}
}

func likeFilter(target models.LikeTarget, actor primitive.ObjectID) bson.M {
	return bson.M{
		"likedBy":    actor,
		"targetType": target.Kind,
		"target":     target.ID,
	}
}

// Toggle reports true when the like exists after the call.
func (r *mongoLikeRepo) Toggle(ctx context.Context, target models.LikeTarget, actor primitive.ObjectID) (bool, error) {
	if err := target.Validate(); err != nil {
		return false, err
	}
	return toggleRow(ctx, r.base, likeFilter(target, actor), bson.M{"createdAt": time.Now().UTC()})
}

func (r *mongoLikeRepo) Count(ctx context.Context, target models.LikeTarget) (int64, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{"targetType": target.Kind, "target": target.ID})
}

func (r *mongoLikeRepo) DeleteByTargets(ctx context.Context, kind models.LikeKind, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"targetType": kind, "target": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *mongoLikeRepo) LikedVideos(ctx context.Context, actor primitive.ObjectID) ([]models.VideoCard, error) {
	out := []models.VideoCard{}
	if err := r.aggregateAll(ctx, LikedVideosPipeline(actor), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LikedVideosPipeline lists the published videos an actor liked, most
// recent like first.
func LikedVideosPipeline(actor primitive.ObjectID) mongo.Pipeline {
	video := concat(
		[]bson.D{matchStage(bson.M{"isPublished": true})},
		ownerSummaryLookup("owner", "owner"),
		[]bson.D{likesLookup(models.LikeVideo, "_id", "likes")},
		likeCountFields("likes", primitive.NilObjectID),
		[]bson.D{projectStage(videoCardProjection())},
	)
	return mongo.Pipeline{
		matchStage(bson.M{"likedBy": actor, "targetType": models.LikeVideo}),
		sortStage(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}),
		lookupStage(VideosCollection, "target", "_id", "video", video...),
		bson.D{{Key: "$unwind", Value: "$video"}},
		bson.D{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$video"}}},
	}
}
