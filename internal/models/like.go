package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LikeKind tags which collection a like points into.
type LikeKind string

const (
	LikeVideo   LikeKind = "video"
	LikeComment LikeKind = "comment"
	LikeTweet   LikeKind = "tweet"
)

func (k LikeKind) Valid() bool {
	switch k {
	case LikeVideo, LikeComment, LikeTweet:
		return true
	}
	return false
}

// LikeTarget is exactly one of Video(id), Comment(id) or Tweet(id).
// Build it with the constructors below.
type LikeTarget struct {
	Kind LikeKind           `bson:"targetType" json:"targetType"`
	ID   primitive.ObjectID `bson:"target" json:"target"`
}

func VideoTarget(id primitive.ObjectID) LikeTarget {
	return LikeTarget{Kind: LikeVideo, ID: id}
}

func CommentTarget(id primitive.ObjectID) LikeTarget {
	return LikeTarget{Kind: LikeComment, ID: id}
}

func TweetTarget(id primitive.ObjectID) LikeTarget {
	return LikeTarget{Kind: LikeTweet, ID: id}
}

func (t LikeTarget) Validate() error {
	if !t.Kind.Valid() {
		return fmt.Errorf("unknown like target %q", t.Kind)
	}
	if t.ID.IsZero() {
		return fmt.Errorf("empty %s id", t.Kind)
	}
	return nil
}

func (t LikeTarget) String() string {
	return fmt.Sprintf("%s(%s)", t.Kind, t.ID.Hex())
}

type Like struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Target    LikeTarget         `bson:",inline" json:"target"`
	LikedBy   primitive.ObjectID `bson:"likedBy" json:"likedBy"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
