package services

import (
	"context"

	"github.com/fathima-sithara/video-service/internal/metrics"
	"github.com/fathima-sithara/video-service/internal/models"
	"github.com/fathima-sithara/video-service/internal/repository"
)

type LikeService interface {
	Toggle(ctx context.Context, kind models.LikeKind, targetID, actor string) (models.ToggleResult, error)
	LikedVideos(ctx context.Context, actor string) ([]models.VideoCard, error)
}

type likeService struct {
	likes    repository.LikeRepository
	videos   repository.VideoRepository
	comments repository.CommentRepository
	tweets   repository.TweetRepository
}

func NewLikeService(likes repository.LikeRepository, videos repository.VideoRepository, comments repository.CommentRepository, tweets repository.TweetRepository) LikeService {
	return &likeService{likes: likes, videos: videos, comments: comments, tweets: tweets}
}

var likeParams = map[models.LikeKind]string{
	models.LikeVideo:   "videoId",
	models.LikeComment: "commentId",
	models.LikeTweet:   "tweetId",
}

// Toggle flips the caller's like on a target that must exist. Videos must
// also be visible to the caller.
func (s *likeService) Toggle(ctx context.Context, kind models.LikeKind, targetID, actor string) (models.ToggleResult, error) {
	uid, err := actorID(actor)
	if err != nil {
		return models.ToggleResult{}, err
	}
	id, err := ParseID(targetID, likeParams[kind])
	if err != nil {
		return models.ToggleResult{}, err
	}

	var target models.LikeTarget
	switch kind {
	case models.LikeVideo:
		if _, err := findVisibleVideo(ctx, s.videos, id, uid); err != nil {
			return models.ToggleResult{}, err
		}
		target = models.VideoTarget(id)
	case models.LikeComment:
		if _, err := s.comments.FindByID(ctx, id); err != nil {
			return models.ToggleResult{}, storeErr(err, "comment not found")
		}
		target = models.CommentTarget(id)
	case models.LikeTweet:
		if _, err := s.tweets.FindByID(ctx, id); err != nil {
			return models.ToggleResult{}, storeErr(err, "tweet not found")
		}
		target = models.TweetTarget(id)
	default:
		target = models.LikeTarget{Kind: kind, ID: id}
	}

	liked, err := s.likes.Toggle(ctx, target, uid)
	if err != nil {
		return models.ToggleResult{}, storeErr(err, "")
	}
	metrics.Toggles.WithLabelValues("like_"+string(kind), metrics.ToggleState(liked)).Inc()

	n, err := s.likes.Count(ctx, target)
	if err != nil {
		return models.ToggleResult{}, storeErr(err, "")
	}
	return models.ToggleResult{Active: liked, Count: n}, nil
}

func (s *likeService) LikedVideos(ctx context.Context, actor string) ([]models.VideoCard, error) {
	uid, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	videos, err := s.likes.LikedVideos(ctx, uid)
	if err != nil {
		return nil, storeErr(err, "")
	}
	if videos == nil {
		videos = []models.VideoCard{}
	}
	return videos, nil
}
