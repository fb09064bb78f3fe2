package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Playlist struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	Videos      []primitive.ObjectID `bson:"videos" json:"videos"`
	Owner       primitive.ObjectID   `bson:"owner" json:"owner"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

type PlaylistSummary struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	VideosCount int64              `bson:"videosCount" json:"videosCount"`
	TotalViews  int64              `bson:"totalViews" json:"totalViews"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type PlaylistDetail struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Owner       OwnerSummary       `bson:"owner" json:"owner"`
	Videos      []VideoCard        `bson:"videos" json:"videos"`
	VideosCount int64              `bson:"videosCount" json:"videosCount"`
	TotalViews  int64              `bson:"totalViews" json:"totalViews"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
