package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Video struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	VideoFile   Asset              `bson:"videoFile" json:"videoFile"`
	Thumbnail   Asset              `bson:"thumbnail" json:"thumbnail"`
	Duration    float64            `bson:"duration" json:"duration"`
	Views       int64              `bson:"views" json:"views"`
	IsPublished bool               `bson:"isPublished" json:"isPublished"`
	Owner       primitive.ObjectID `bson:"owner" json:"owner"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// VideoOwner is the owner block of a video detail view.
type VideoOwner struct {
	ID               primitive.ObjectID `bson:"_id" json:"_id"`
	UserName         string             `bson:"userName" json:"userName"`
	FullName         string             `bson:"fullName" json:"fullName"`
	Avatar           string             `bson:"avatar" json:"avatar"`
	SubscribersCount int64              `bson:"subscribersCount" json:"subscribersCount"`
	IsSubscribed     bool               `bson:"isSubscribed" json:"isSubscribed"`
}

// VideoDetail is a single video with its social counts.
type VideoDetail struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	VideoFile   Asset              `bson:"videoFile" json:"videoFile"`
	Thumbnail   Asset              `bson:"thumbnail" json:"thumbnail"`
	Duration    float64            `bson:"duration" json:"duration"`
	Views       int64              `bson:"views" json:"views"`
	IsPublished bool               `bson:"isPublished" json:"isPublished"`
	Owner       VideoOwner         `bson:"owner" json:"owner"`
	LikesCount  int64              `bson:"likesCount" json:"likesCount"`
	IsLiked     bool               `bson:"isLiked" json:"isLiked"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// VideoCard is the compact form used in listings.
type VideoCard struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	VideoFile   Asset              `bson:"videoFile" json:"videoFile"`
	Thumbnail   Asset              `bson:"thumbnail" json:"thumbnail"`
	Duration    float64            `bson:"duration" json:"duration"`
	Views       int64              `bson:"views" json:"views"`
	IsPublished bool               `bson:"isPublished" json:"isPublished"`
	Owner       *OwnerSummary      `bson:"owner,omitempty" json:"owner,omitempty"`
	LikesCount  int64              `bson:"likesCount" json:"likesCount"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// ChannelStats is the dashboard aggregate for one channel.
type ChannelStats struct {
	VideosCount      int64 `bson:"videosCount" json:"videosCount"`
	LikesCount       int64 `bson:"likesCount" json:"likesCount"`
	ViewsCount       int64 `bson:"viewsCount" json:"viewsCount"`
	SubscribersCount int64 `bson:"subscribersCount" json:"subscribersCount"`
}
