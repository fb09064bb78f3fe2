package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Subscription struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Channel    primitive.ObjectID `bson:"channel" json:"channel"`
	Subscriber primitive.ObjectID `bson:"subscriber" json:"subscriber"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// SubscriptionEntry is one row of a subscriber or subscribed-channel list.
type SubscriptionEntry struct {
	User             OwnerSummary `bson:"user" json:"user"`
	SubscribersCount int64        `bson:"subscribersCount" json:"subscribersCount"`
	SubscribedAt     time.Time    `bson:"subscribedAt" json:"subscribedAt"`
}

// ToggleResult reports the state a toggle left behind. Count is the
// target's like or subscriber total after the toggle.
type ToggleResult struct {
	Active bool  `json:"active"`
	Count  int64 `json:"count"`
}
