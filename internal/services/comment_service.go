package services

import (
	"context"
	"errors"

	"github.com/fathima-sithara/video-service/internal/models"
	"github.com/fathima-sithara/video-service/internal/pagination"
	"github.com/fathima-sithara/video-service/internal/repository"
	"github.com/fathima-sithara/video-service/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CommentService interface {
	List(ctx context.Context, videoID, viewer, page, limit string) (pagination.Page[models.CommentView], error)
	Add(ctx context.Context, videoID, actor, content string) (*models.Comment, error)
	Update(ctx context.Context, commentID, actor, content string) (*models.Comment, error)
	Delete(ctx context.Context, commentID, actor string) error
}

type commentService struct {
	comments repository.CommentRepository
	videos   repository.VideoRepository
	likes    repository.LikeRepository
	tx       repository.TxRunner
}

func NewCommentService(comments repository.CommentRepository, videos repository.VideoRepository, likes repository.LikeRepository, tx repository.TxRunner) CommentService {
	return &commentService{comments: comments, videos: videos, likes: likes, tx: tx}
}

func (s *commentService) List(ctx context.Context, videoID, viewer, page, limit string) (pagination.Page[models.CommentView], error) {
	var empty pagination.Page[models.CommentView]
	id, err := ParseID(videoID, "videoId")
	if err != nil {
		return empty, err
	}
	p, err := pagination.Parse(page, limit)
	if err != nil {
		return empty, err
	}
	vid := viewerID(viewer)
	v, err := s.videos.FindByID(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		// a removed video has no comments left
		return pagination.New([]models.CommentView{}, 0, p), nil
	case err != nil:
		return empty, storeErr(err, "video not found")
	case !v.IsPublished && v.Owner != vid:
		return empty, utils.NotFound("video not found")
	}
	res, err := s.comments.ListByVideo(ctx, id, vid, p)
	if err != nil {
		return empty, storeErr(err, "video not found")
	}
	return res, nil
}

func (s *commentService) Add(ctx context.Context, videoID, actor, content string) (*models.Comment, error) {
	uid, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	id, err := ParseID(videoID, "videoId")
	if err != nil {
		return nil, err
	}
	if content, err = checkContent(content); err != nil {
		return nil, err
	}
	if _, err := findVisibleVideo(ctx, s.videos, id, uid); err != nil {
		return nil, err
	}

	c := &models.Comment{Content: content, Video: id, Owner: uid}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, storeErr(err, "")
	}
	return c, nil
}

func (s *commentService) owned(ctx context.Context, commentID, actor string) (*models.Comment, error) {
	uid, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	id, err := ParseID(commentID, "commentId")
	if err != nil {
		return nil, err
	}
	c, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "comment not found")
	}
	if err := CanMutate(c.Owner, uid); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *commentService) Update(ctx context.Context, commentID, actor, content string) (*models.Comment, error) {
	content, err := checkContent(content)
	if err != nil {
		return nil, err
	}
	c, err := s.owned(ctx, commentID, actor)
	if err != nil {
		return nil, err
	}
	updated, err := s.comments.UpdateContent(ctx, c.ID, content)
	if err != nil {
		return nil, storeErr(err, "comment not found")
	}
	return updated, nil
}

// Delete removes the comment together with its likes.
func (s *commentService) Delete(ctx context.Context, commentID, actor string) error {
	c, err := s.owned(ctx, commentID, actor)
	if err != nil {
		return err
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.likes.DeleteByTargets(ctx, models.LikeComment, []primitive.ObjectID{c.ID}); err != nil {
			return err
		}
		return s.comments.Delete(ctx, c.ID)
	})
	return storeErr(err, "comment not found")
}
