package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Tweet struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Content   string             `bson:"content" json:"content"`
	Owner     primitive.ObjectID `bson:"owner" json:"owner"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type TweetView struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	Content      string             `bson:"content" json:"content"`
	OwnerDetails OwnerSummary       `bson:"ownerDetails" json:"ownerDetails"`
	LikesCount   int64              `bson:"likesCount" json:"likesCount"`
	IsLiked      bool               `bson:"isLiked" json:"isLiked"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
