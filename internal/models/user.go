package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	UserName     string               `bson:"userName" json:"userName"`
	FullName     string               `bson:"fullName" json:"fullName"`
	Email        string               `bson:"email" json:"email"`
	Password     string               `bson:"password" json:"-"`
	Avatar       Asset                `bson:"avatar" json:"avatar"`
	CoverImage   Asset                `bson:"coverImage" json:"coverImage"`
	WatchHistory []primitive.ObjectID `bson:"watchHistory" json:"watchHistory"`
	RefreshToken string               `bson:"refreshToken,omitempty" json:"-"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// OwnerSummary is the public slice of a user embedded in other views.
type OwnerSummary struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	UserName string             `bson:"userName" json:"userName"`
	FullName string             `bson:"fullName" json:"fullName"`
	Avatar   string             `bson:"avatar" json:"avatar"`
}

// ChannelProfile is a user as seen on their channel page.
type ChannelProfile struct {
	ID                primitive.ObjectID `bson:"_id" json:"_id"`
	UserName          string             `bson:"userName" json:"userName"`
	FullName          string             `bson:"fullName" json:"fullName"`
	Email             string             `bson:"email" json:"email"`
	Avatar            Asset              `bson:"avatar" json:"avatar"`
	CoverImage        Asset              `bson:"coverImage" json:"coverImage"`
	SubscribersCount  int64              `bson:"subscribersCount" json:"subscribersCount"`
	SubscribedToCount int64              `bson:"subscribedToCount" json:"subscribedToCount"`
	IsSubscribed      bool               `bson:"isSubscribed" json:"isSubscribed"`
}
