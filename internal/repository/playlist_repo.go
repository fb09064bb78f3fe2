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

type PlaylistRepository interface {
	Create(ctx context.Context, p *models.Playlist) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Playlist, error)
	UpdateDetails(ctx context.Context, id primitive.ObjectID, name, description *string) (*models.Playlist, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddVideo(ctx context.Context, id, videoID primitive.ObjectID) (*models.Playlist, error)
	RemoveVideo(ctx context.Context, id, videoID primitive.ObjectID) (*models.Playlist, error)
	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.PlaylistSummary, error)
	Detail(ctx context.Context, id primitive.ObjectID) (*models.PlaylistDetail, error)
}

type mongoPlaylistRepo struct {
	base
}

func NewMongoPlaylistRepo(db *mongo.Database, timeout time.Duration) PlaylistRepository {
	return &mongoPlaylistRepo{base: newBase(db, PlaylistsCollection, timeout)}
}

func (r *mongoPlaylistRepo) Create(ctx context.Context, p *models.Playlist) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Videos == nil {
		p.Videos = []primitive.ObjectID{}
	}
	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return translate(err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoPlaylistRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Playlist, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	var p models.Playlist
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *mongoPlaylistRepo) UpdateDetails(ctx context.Context, id primitive.ObjectID, name, description *string) (*models.Playlist, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if name != nil {
		set["name"] = *name
	}
	if description != nil {
		set["description"] = *description
	}
	return r.updateOne(ctx, id, bson.M{"$set": set})
}

func (r *mongoPlaylistRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// AddVideo appends the video unless it is already a member.
func (r *mongoPlaylistRepo) AddVideo(ctx context.Context, id, videoID primitive.ObjectID) (*models.Playlist, error) {
	return r.updateOne(ctx, id, bson.M{
		"$addToSet": bson.M{"videos": videoID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (r *mongoPlaylistRepo) RemoveVideo(ctx context.Context, id, videoID primitive.ObjectID) (*models.Playlist, error) {
	return r.updateOne(ctx, id, bson.M{
		"$pull": bson.M{"videos": videoID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (r *mongoPlaylistRepo) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Playlist, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Playlist
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *mongoPlaylistRepo) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.PlaylistSummary, error) {
	out := []models.PlaylistSummary{}
	if err := r.aggregateAll(ctx, PlaylistSummaryPipeline(owner), &out); err != nil {
		return nil, err
	}
	return out, nil
}

type playlistDetailDoc struct {
	models.PlaylistDetail `bson:",inline"`
	VideoIDs              []primitive.ObjectID `bson:"videoIds"`
}

// Detail resolves the playlist's published videos in playlist order. Ids of
// deleted or unpublished videos are skipped.
func (r *mongoPlaylistRepo) Detail(ctx context.Context, id primitive.ObjectID) (*models.PlaylistDetail, error) {
	var doc playlistDetailDoc
	if err := r.aggregateOne(ctx, PlaylistDetailPipeline(id), &doc); err != nil {
		return nil, err
	}
	d := doc.PlaylistDetail
	d.Videos = orderByIDs(doc.VideoIDs, d.Videos, func(v models.VideoCard) primitive.ObjectID { return v.ID })
	return &d, nil
}

func publishedVideoStages() []bson.D {
	return concat(
		[]bson.D{matchStage(bson.M{"isPublished": true})},
		ownerSummaryLookup("owner", "owner"),
		[]bson.D{projectStage(videoCardProjection())},
	)
}

func PlaylistDetailPipeline(id primitive.ObjectID) mongo.Pipeline {
	return concat(
		[]bson.D{
			matchStage(bson.M{"_id": id}),
			lookupStage(VideosCollection, "videos", "_id", "videoDocs", publishedVideoStages()...),
		},
		ownerSummaryLookup("owner", "owner"),
		[]bson.D{
			projectStage(bson.M{
				"name":        1,
				"description": 1,
				"owner":       1,
				"createdAt":   1,
				"updatedAt":   1,
				"videoIds":    "$videos",
				"videos":      "$videoDocs",
				"videosCount": bson.M{"$size": "$videoDocs"},
				"totalViews":  bson.M{"$sum": "$videoDocs.views"},
			}),
		},
	)
}

func PlaylistSummaryPipeline(owner primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		matchStage(bson.M{"owner": owner}),
		sortStage(bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: -1}}),
		lookupStage(VideosCollection, "videos", "_id", "videoDocs",
			matchStage(bson.M{"isPublished": true}),
			projectStage(bson.M{"views": 1}),
		),
		projectStage(bson.M{
			"name":        1,
			"description": 1,
			"updatedAt":   1,
			"videosCount": bson.M{"$size": "$videoDocs"},
			"totalViews":  bson.M{"$sum": "$videoDocs.views"},
		}),
	}
}
