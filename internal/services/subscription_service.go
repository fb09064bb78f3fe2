package services

import (
	"context"

	"github.com/fathima-sithara/video-service/internal/events"
	"github.com/fathima-sithara/video-service/internal/metrics"
	"github.com/fathima-sithara/video-service/internal/models"
	"github.com/fathima-sithara/video-service/internal/repository"
	"github.com/fathima-sithara/video-service/internal/utils"
	"go.uber.org/zap"
)

type SubscriptionService interface {
	Toggle(ctx context.Context, channelID, actor string) (models.ToggleResult, error)
	Subscribers(ctx context.Context, channelID string) ([]models.SubscriptionEntry, error)
	SubscribedChannels(ctx context.Context, subscriberID, actor string) ([]models.SubscriptionEntry, error)
}

type subscriptionService struct {
	subs   repository.SubscriptionRepository
	users  repository.UserRepository
	events events.Publisher
	log    *zap.Logger
}

func NewSubscriptionService(subs repository.SubscriptionRepository, users repository.UserRepository, pub events.Publisher, log *zap.Logger) SubscriptionService {
	return &subscriptionService{subs: subs, users: users, events: pub, log: log}
}

func (s *subscriptionService) Toggle(ctx context.Context, channelID, actor string) (models.ToggleResult, error) {
	uid, err := actorID(actor)
	if err != nil {
		return models.ToggleResult{}, err
	}
	channel, err := ParseID(channelID, "channelId")
	if err != nil {
		return models.ToggleResult{}, err
	}
	if channel == uid {
		return models.ToggleResult{}, utils.BadRequest("you cannot subscribe to your own channel")
	}
	if _, err := s.users.FindByID(ctx, channel); err != nil {
		return models.ToggleResult{}, storeErr(err, "channel not found")
	}

	active, err := s.subs.Toggle(ctx, channel, uid)
	if err != nil {
		return models.ToggleResult{}, storeErr(err, "")
	}
	metrics.Toggles.WithLabelValues("subscription", metrics.ToggleState(active)).Inc()

	n, err := s.subs.CountSubscribers(ctx, channel)
	if err != nil {
		return models.ToggleResult{}, storeErr(err, "")
	}
	publish(ctx, s.events, s.log, events.New(events.SubscriptionToggled, channel.Hex(), map[string]any{
		"subscriber": uid.Hex(),
		"active":     active,
	}))
	return models.ToggleResult{Active: active, Count: n}, nil
}

func (s *subscriptionService) Subscribers(ctx context.Context, channelID string) ([]models.SubscriptionEntry, error) {
	channel, err := ParseID(channelID, "channelId")
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, channel); err != nil {
		return nil, storeErr(err, "channel not found")
	}
	list, err := s.subs.Subscribers(ctx, channel)
	if err != nil {
		return nil, storeErr(err, "")
	}
	return nonNil(list), nil
}

// SubscribedChannels is private to the subscriber.
func (s *subscriptionService) SubscribedChannels(ctx context.Context, subscriberID, actor string) ([]models.SubscriptionEntry, error) {
	uid, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	subscriber, err := ParseID(subscriberID, "subscriberId")
	if err != nil {
		return nil, err
	}
	if subscriber != uid {
		return nil, utils.Forbidden("you can only list your own subscriptions")
	}
	list, err := s.subs.SubscribedChannels(ctx, subscriber)
	if err != nil {
		return nil, storeErr(err, "")
	}
	return nonNil(list), nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
