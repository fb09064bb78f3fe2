package repository

import (
	"context"
	"slices"
	"time"

	"github.com/fathima-sithara/video-service/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByLogin(ctx context.Context, email, userName string) (*models.User, error)
	Exists(ctx context.Context, email, userName string) (bool, error)
	UpdateAccount(ctx context.Context, id primitive.ObjectID, fullName, email string) (*models.User, error)
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error
	SetRefreshToken(ctx context.Context, id primitive.ObjectID, digest string) error
	SetAsset(ctx context.Context, id primitive.ObjectID, field string, a models.Asset) (*models.User, error)
	AddToWatchHistory(ctx context.Context, id, videoID primitive.ObjectID) error
	ChannelProfile(ctx context.Context, userName string, viewer primitive.ObjectID) (*models.ChannelProfile, error)
	WatchHistory(ctx context.Context, id primitive.ObjectID) ([]models.VideoCard, error)
}

const (
	AvatarField     = "avatar"
	CoverImageField = "coverImage"
)

type mongoUserRepo struct {
	base
}

func NewMongoUserRepo(db *mongo.Database, timeout time.Duration) UserRepository {
	return &mongoUserRepo{base: newBase(db, UsersCollection, timeout)}
}

func (r *mongoUserRepo) Create(ctx context.Context, u *models.User) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.WatchHistory == nil {
		u.WatchHistory = []primitive.ObjectID{}
	}
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		return translate(err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *mongoUserRepo) FindByLogin(ctx context.Context, email, userName string) (*models.User, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	var u models.User
	if err := r.col.FindOne(ctx, loginFilter(email, userName)).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *mongoUserRepo) Exists(ctx context.Context, email, userName string) (bool, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, loginFilter(email, userName), options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func loginFilter(email, userName string) bson.M {
	var or bson.A
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if userName != "" {
		or = append(or, bson.M{"userName": userName})
	}
	if len(or) == 0 {
		// matches nothing
		return bson.M{"_id": primitive.NilObjectID}
	}
	return bson.M{"$or": or}
}

func (r *mongoUserRepo) UpdateAccount(ctx context.Context, id primitive.ObjectID, fullName, email string) (*models.User, error) {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{
		"fullName":  fullName,
		"email":     email,
		"updatedAt": time.Now().UTC(),
	}})
}

func (r *mongoUserRepo) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	_, err := r.updateOne(ctx, id, bson.M{"$set": bson.M{
		"password":  hash,
		"updatedAt": time.Now().UTC(),
	}})
	return err
}

// SetRefreshToken stores the digest of the current refresh token. An empty
// digest removes it.
func (r *mongoUserRepo) SetRefreshToken(ctx context.Context, id primitive.ObjectID, digest string) error {
	update := bson.M{"$set": bson.M{"refreshToken": digest}}
	if digest == "" {
		update = bson.M{"$unset": bson.M{"refreshToken": 1}}
	}
	_, err := r.updateOne(ctx, id, update)
	return err
}

func (r *mongoUserRepo) SetAsset(ctx context.Context, id primitive.ObjectID, field string, a models.Asset) (*models.User, error) {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{
		field:       a,
		"updatedAt": time.Now().UTC(),
	}})
}

func (r *mongoUserRepo) AddToWatchHistory(ctx context.Context, id, videoID primitive.ObjectID) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	_, err := r.col.UpdateByID(ctx, id, bson.M{"$addToSet": bson.M{"watchHistory": videoID}})
	return translate(err)
}

func (r *mongoUserRepo) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.User, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *mongoUserRepo) ChannelProfile(ctx context.Context, userName string, viewer primitive.ObjectID) (*models.ChannelProfile, error) {
	var p models.ChannelProfile
	if err := r.aggregateOne(ctx, ChannelProfilePipeline(userName, viewer), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

type watchHistoryDoc struct {
	History []primitive.ObjectID `bson:"history"`
	Videos  []models.VideoCard   `bson:"videos"`
}

// WatchHistory returns the watched videos that are still published, most
// recently added first.
func (r *mongoUserRepo) WatchHistory(ctx context.Context, id primitive.ObjectID) ([]models.VideoCard, error) {
	var doc watchHistoryDoc
	if err := r.aggregateOne(ctx, WatchHistoryPipeline(id), &doc); err != nil {
		return nil, err
	}
	history := slices.Clone(doc.History)
	slices.Reverse(history)
	return orderByIDs(history, doc.Videos, func(v models.VideoCard) primitive.ObjectID { return v.ID }), nil
}

// ChannelProfilePipeline resolves a channel by user name with its subscriber
// and subscribed-to counts.
func ChannelProfilePipeline(userName string, viewer primitive.ObjectID) mongo.Pipeline {
	return concat(
		[]bson.D{
			matchStage(bson.M{"userName": userName}),
			subscriberCountLookup("_id", "subscribers"),
			lookupStage(SubscriptionsCollection, "_id", "subscriber", "subscribedTo",
				projectStage(bson.M{"_id": 1}),
			),
			projectStage(bson.M{
				"userName":          1,
				"fullName":          1,
				"email":             1,
				"avatar":            1,
				"coverImage":        1,
				"subscribersCount":  bson.M{"$size": "$subscribers"},
				"subscribedToCount": bson.M{"$size": "$subscribedTo"},
				"isSubscribed":      isMember(viewer, "$subscribers.subscriber"),
			}),
		},
	)
}

func WatchHistoryPipeline(id primitive.ObjectID) mongo.Pipeline {
	videoStages := concat(
		[]bson.D{matchStage(bson.M{"isPublished": true})},
		ownerSummaryLookup("owner", "owner"),
		[]bson.D{projectStage(videoCardProjection())},
	)
	return concat([]bson.D{
		matchStage(bson.M{"_id": id}),
		lookupStage(VideosCollection, "watchHistory", "_id", "videos", videoStages...),
		projectStage(bson.M{"history": "$watchHistory", "videos": 1}),
	})
}
