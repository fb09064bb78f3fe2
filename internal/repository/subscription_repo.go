package repository

import (
	"context"
	"time"

	"github.com/fathima-sithara/video-service/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type SubscriptionRepository interface {
	Toggle(ctx context.Context, channel, subscriber primitive.ObjectID) (bool, error)
	CountSubscribers(ctx context.Context, channel primitive.ObjectID) (int64, error)
	Subscribers(ctx context.Context, channel primitive.ObjectID) ([]models.SubscriptionEntry, error)
	SubscribedChannels(ctx context.Context, subscriber primitive.ObjectID) ([]models.SubscriptionEntry, error)
}

type mongoSubscriptionRepo struct {
	base
}

func NewMongoSubscriptionRepo(db *mongo.Database, timeout time.Duration) SubscriptionRepository {
	return &mongoSubscriptionRepo{base: newBase(db, SubscriptionsCollection, timeout)}
}

// Toggle reports true when the subscription exists after the call.
func (r *mongoSubscriptionRepo) Toggle(ctx context.Context, channel, subscriber primitive.ObjectID) (bool, error) {
	filter := bson.M{"channel": channel, "subscriber": subscriber}
	return toggleRow(ctx, r.base, filter, bson.M{"createdAt": time.Now().UTC()})
}

func (r *mongoSubscriptionRepo) CountSubscribers(ctx context.Context, channel primitive.ObjectID) (int64, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	return r.col.CountDocuments(ctx, bson.M{"channel": channel})
}

func (r *mongoSubscriptionRepo) Subscribers(ctx context.Context, channel primitive.ObjectID) ([]models.SubscriptionEntry, error) {
	out := []models.SubscriptionEntry{}
	if err := r.aggregateAll(ctx, SubscriptionListPipeline("channel", "subscriber", channel), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mongoSubscriptionRepo) SubscribedChannels(ctx context.Context, subscriber primitive.ObjectID) ([]models.SubscriptionEntry, error) {
	out := []models.SubscriptionEntry{}
	if err := r.aggregateAll(ctx, SubscriptionListPipeline("subscriber", "channel", subscriber), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubscriptionListPipeline selects rows where matchField is id and resolves
// the user on the other side (otherField) with their own subscriber count.
func SubscriptionListPipeline(matchField, otherField string, id primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		matchStage(bson.M{matchField: id}),
		sortStage(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}),
		lookupStage(UsersCollection, otherField, "_id", "user",
			subscriberCountLookup("_id", "subscribers"),
			projectStage(bson.M{
				"userName":         1,
				"fullName":         1,
				"avatar":           "$avatar.url",
				"subscribersCount": bson.M{"$size": "$subscribers"},
			}),
		),
		bson.D{{Key: "$unwind", Value: "$user"}},
		projectStage(bson.M{
			"_id":              0,
			"user":             1,
			"subscribersCount": "$user.subscribersCount",
			"subscribedAt":     "$createdAt",
		}),
	}
}
