package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Indexes lists the indexes each collection needs. The unique ones back the
// toggles and the user identity rules.
func Indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "userName", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "watchHistory", Value: 1}}},
		},
		VideosCollection: {
			{Keys: bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}}, Options: options.Index().SetName("video_text")},
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "isPublished", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		CommentsCollection: {
			{Keys: bson.D{{Key: "video", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		TweetsCollection: {
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		LikesCollection: {
			{Keys: bson.D{{Key: "likedBy", Value: 1}, {Key: "targetType", Value: 1}, {Key: "target", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "target", Value: 1}, {Key: "targetType", Value: 1}}},
		},
		SubscriptionsCollection: {
			{Keys: bson.D{{Key: "channel", Value: 1}, {Key: "subscriber", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "subscriber", Value: 1}}},
		},
		PlaylistsCollection: {
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "updatedAt", Value: -1}}},
		},
	}
}

func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for name, models := range Indexes() {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}
