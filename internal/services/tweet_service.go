package services

import (
	"context"

	"github.com/fathima-sithara/video-service/internal/models"
	"github.com/fathima-sithara/video-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TweetService interface {
	Create(ctx context.Context, actor, content string) (*models.Tweet, error)
	ListByUser(ctx context.Context, userID, viewer string) ([]models.TweetView, error)
	Update(ctx context.Context, tweetID, actor, content string) (*models.Tweet, error)
	Delete(ctx context.Context, tweetID, actor string) error
}

type tweetService struct {
	tweets repository.TweetRepository
	users  repository.UserRepository
	likes  repository.LikeRepository
	tx     repository.TxRunner
}

func NewTweetService(tweets repository.TweetRepository, users repository.UserRepository, likes repository.LikeRepository, tx repository.TxRunner) TweetService {
	return &tweetService{tweets: tweets, users: users, likes: likes, tx: tx}
}

func (s *tweetService) Create(ctx context.Context, actor, content string) (*models.Tweet, error) {
	uid, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	if content, err = checkContent(content); err != nil {
		return nil, err
	}
	t := &models.Tweet{Content: content, Owner: uid}
	if err := s.tweets.Create(ctx, t); err != nil {
		return nil, storeErr(err, "")
	}
	return t, nil
}

func (s *tweetService) ListByUser(ctx context.Context, userID, viewer string) ([]models.TweetView, error) {
	id, err := ParseID(userID, "userId")
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return nil, storeErr(err, "user not found")
	}
	tweets, err := s.tweets.ListByOwner(ctx, id, viewerID(viewer))
	if err != nil {
		return nil, storeErr(err, "user not found")
	}
	if tweets == nil {
		tweets = []models.TweetView{}
	}
	return tweets, nil
}

func (s *tweetService) owned(ctx context.Context, tweetID, actor string) (*models.Tweet, error) {
	uid, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	id, err := ParseID(tweetID, "tweetId")
	if err != nil {
		return nil, err
	}
	t, err := s.tweets.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "tweet not found")
	}
	if err := CanMutate(t.Owner, uid); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *tweetService) Update(ctx context.Context, tweetID, actor, content string) (*models.Tweet, error) {
	content, err := checkContent(content)
	if err != nil {
		return nil, err
	}
	t, err := s.owned(ctx, tweetID, actor)
	if err != nil {
		return nil, err
	}
	updated, err := s.tweets.UpdateContent(ctx, t.ID, content)
	if err != nil {
		return nil, storeErr(err, "tweet not found")
	}
	return updated, nil
}

func (s *tweetService) Delete(ctx context.Context, tweetID, actor string) error {
	t, err := s.owned(ctx, tweetID, actor)
	if err != nil {
		return err
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.likes.DeleteByTargets(ctx, models.LikeTweet, []primitive.ObjectID{t.ID}); err != nil {
			return err
		}
		return s.tweets.Delete(ctx, t.ID)
	})
	return storeErr(err, "tweet not found")
}
