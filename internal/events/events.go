package events

import (
	"context"
	"time"
)

const (
	VideoPublished      = "video.published"
	VideoDeleted        = "video.deleted"
	SubscriptionToggled = "subscription.toggled"
	UserRegistered      = "user.registered"
)

// Event is the envelope written to the events topic. Key orders events of
// one aggregate onto the same partition.
type Event struct {
	Type       string         `json:"type"`
	Key        string         `json:"key"`
	Payload    map[string]any `json:"payload"`
	OccurredAt time.Time      `json:"occurredAt"`
}

func New(typ, key string, payload map[string]any) Event {
	return Event{Type: typ, Key: key, Payload: payload, OccurredAt: time.Now().UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop drops every event. Used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error { return nil }
