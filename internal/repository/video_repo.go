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

type VideoRepository interface {
	Create(ctx context.Context, v *models.Video) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
	Update(ctx context.Context, id primitive.ObjectID, upd VideoUpdate) (*models.Video, error)
	SetPublished(ctx context.Context, id primitive.ObjectID, published bool) (*models.Video, error)
	IncrementViews(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Detail(ctx context.Context, id, viewer primitive.ObjectID) (*models.VideoDetail, error)
	Search(ctx context.Context, q VideoQuery, p pagination.Params) (pagination.Page[models.VideoCard], error)
	ChannelVideos(ctx context.Context, owner primitive.ObjectID, p pagination.Params) (pagination.Page[models.VideoCard], error)
	ChannelStats(ctx context.Context, owner primitive.ObjectID) (*models.ChannelStats, error)
}

// VideoUpdate holds the optional fields of a video edit. Nil means unchanged.
type VideoUpdate struct {
	Title       *string
	Description *string
	Thumbnail   *models.Asset
}

// VideoQuery narrows the public catalog. Text goes through the
// (title, description) text index.
type VideoQuery struct {
	Text     string
	Owner    primitive.ObjectID
	SortBy   string
	SortDesc bool
}

// SortableVideoFields are the fields a catalog listing may be ordered by.
var SortableVideoFields = map[string]bool{
	"createdAt": true,
	"views":     true,
	"duration":  true,
	"title":     true,
}

type mongoVideoRepo struct {
	base
}

func NewMongoVideoRepo(db *mongo.Database, timeout time.Duration) VideoRepository {
	return &mongoVideoRepo{base: newBase(db, VideosCollection, timeout)}
}

func (r *mongoVideoRepo) Create(ctx context.Context, v *models.Video) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	now := time.Now().UTC()
	v.CreatedAt, v.UpdatedAt = now, now
	res, err := r.col.InsertOne(ctx, v)
	if err != nil {
		return translate(err)
	}
	v.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoVideoRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	var v models.Video
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&v); err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r *mongoVideoRepo) Update(ctx context.Context, id primitive.ObjectID, upd VideoUpdate) (*models.Video, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Thumbnail != nil {
		set["thumbnail"] = *upd.Thumbnail
	}
	return r.updateOne(ctx, id, bson.M{"$set": set})
}

func (r *mongoVideoRepo) SetPublished(ctx context.Context, id primitive.ObjectID, published bool) (*models.Video, error) {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{
		"isPublished": published,
		"updatedAt":   time.Now().UTC(),
	}})
}

func (r *mongoVideoRepo) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoVideoRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *mongoVideoRepo) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Video, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var v models.Video
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&v); err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r *mongoVideoRepo) Detail(ctx context.Context, id, viewer primitive.ObjectID) (*models.VideoDetail, error) {
	var d models.VideoDetail
	if err := r.aggregateOne(ctx, VideoDetailPipeline(id, viewer), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *mongoVideoRepo) Search(ctx context.Context, q VideoQuery, p pagination.Params) (pagination.Page[models.VideoCard], error) {
	return r.page(ctx, VideoSearchPipeline(q, p), p)
}

func (r *mongoVideoRepo) ChannelVideos(ctx context.Context, owner primitive.ObjectID, p pagination.Params) (pagination.Page[models.VideoCard], error) {
	return r.page(ctx, ChannelVideosPipeline(owner, p), p)
}

func (r *mongoVideoRepo) page(ctx context.Context, pl mongo.Pipeline, p pagination.Params) (pagination.Page[models.VideoCard], error) {
	var res pagination.FacetResult[models.VideoCard]
	if err := r.aggregateOne(ctx, pl, &res); err != nil {
		return pagination.Page[models.VideoCard]{}, err
	}
	return res.Page(p), nil
}

// ChannelStats runs against the users collection so that a channel with no
// videos still yields a row of zeros.
func (r *mongoVideoRepo) ChannelStats(ctx context.Context, owner primitive.ObjectID) (*models.ChannelStats, error) {
	users := base{col: r.col.Database().Collection(UsersCollection), timeout: r.timeout}
	var s models.ChannelStats
	if err := users.aggregateOne(ctx, ChannelStatsPipeline(owner), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// VideoDetailPipeline resolves one video with its owner's subscriber count,
// its plain video like count, and the viewer's flags. Unpublished videos
// resolve only for their owner.
func VideoDetailPipeline(id, viewer primitive.ObjectID) mongo.Pipeline {
	visible := bson.A{bson.M{"isPublished": true}}
	if !viewer.IsZero() {
		visible = append(visible, bson.M{"owner": viewer})
	}
	return concat(
		[]bson.D{
			matchStage(bson.M{"_id": id, "$or": visible}),
			lookupStage(UsersCollection, "owner", "_id", "owner",
				subscriberCountLookup("_id", "subscribers"),
				projectStage(bson.M{
					"userName":         1,
					"fullName":         1,
					"avatar":           "$avatar.url",
					"subscribersCount": bson.M{"$size": "$subscribers"},
					"isSubscribed":     isMember(viewer, "$subscribers.subscriber"),
				}),
			),
			unwindStage("$owner"),
			likesLookup(models.LikeVideo, "_id", "likes"),
		},
		likeCountFields("likes", viewer),
	)
}

// VideoSearchPipeline filters the published catalog, sorts, and pages last.
// Joins run only on the selected page.
func VideoSearchPipeline(q VideoQuery, p pagination.Params) mongo.Pipeline {
	match := bson.D{}
	if q.Text != "" {
		match = append(match, bson.E{Key: "$text", Value: bson.M{"$search": q.Text}})
	}
	match = append(match, bson.E{Key: "isPublished", Value: true})
	if !q.Owner.IsZero() {
		match = append(match, bson.E{Key: "owner", Value: q.Owner})
	}

	var sort bson.D
	switch {
	case q.SortBy != "":
		dir := 1
		if q.SortDesc {
			dir = -1
		}
		sort = bson.D{{Key: q.SortBy, Value: dir}, {Key: "_id", Value: dir}}
	case q.Text != "":
		sort = bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}, {Key: "_id", Value: -1}}
	default:
		sort = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	}

	card := concat(
		ownerSummaryLookup("owner", "owner"),
		[]bson.D{likesLookup(models.LikeVideo, "_id", "likes")},
		likeCountFields("likes", primitive.NilObjectID),
		[]bson.D{projectStage(videoCardProjection())},
	)
	return mongo.Pipeline{
		matchStage(match),
		sortStage(sort),
		pagination.FacetStage(p, card...),
	}
}

// ChannelVideosPipeline lists every video of one owner, published or not.
func ChannelVideosPipeline(owner primitive.ObjectID, p pagination.Params) mongo.Pipeline {
	card := concat(
		[]bson.D{likesLookup(models.LikeVideo, "_id", "likes")},
		likeCountFields("likes", primitive.NilObjectID),
		[]bson.D{projectStage(videoCardProjection())},
	)
	return mongo.Pipeline{
		matchStage(bson.M{"owner": owner}),
		sortStage(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}),
		pagination.FacetStage(p, card...),
	}
}

// ChannelStatsPipeline folds a channel's videos into totals. A view is a
// user whose watch history holds the video; a like is a plain video like.
func ChannelStatsPipeline(owner primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		matchStage(bson.M{"_id": owner}),
		subscriberCountLookup("_id", "subscribers"),
		lookupStage(VideosCollection, "_id", "owner", "videos",
			likesLookup(models.LikeVideo, "_id", "likes"),
			lookupStage(UsersCollection, "_id", "watchHistory", "viewers",
				projectStage(bson.M{"_id": 1}),
			),
			projectStage(bson.M{
				"likesCount": bson.M{"$size": "$likes"},
				"viewsCount": bson.M{"$size": "$viewers"},
			}),
		),
		projectStage(bson.M{
			"_id":              0,
			"videosCount":      bson.M{"$size": "$videos"},
			"likesCount":       bson.M{"$sum": "$videos.likesCount"},
			"viewsCount":       bson.M{"$sum": "$videos.viewsCount"},
			"subscribersCount": bson.M{"$size": "$subscribers"},
		}),
	}
}
