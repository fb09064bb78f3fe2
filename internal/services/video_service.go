package services

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/fathima-sithara/video-service/internal/events"
	"github.com/fathima-sithara/video-service/internal/models"
	"github.com/fathima-sithara/video-service/internal/pagination"
	"github.com/fathima-sithara/video-service/internal/repository"
	"github.com/fathima-sithara/video-service/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type PublishVideoInput struct {
	Title       string  `json:"title" validate:"required,max=120"`
	Description string  `json:"description" validate:"required,max=5000"`
	Duration    float64 `json:"duration"`
	VideoFile   *multipart.FileHeader
	Thumbnail   *multipart.FileHeader
}

// UpdateVideoInput changes only the fields that are set.
type UpdateVideoInput struct {
	Title       *string
	Description *string
	Thumbnail   *multipart.FileHeader
}

// ListVideosInput carries the raw catalog query parameters.
type ListVideosInput struct {
	Query    string
	UserID   string
	SortBy   string
	SortType string
	Page     string
	Limit    string
}

type VideoService interface {
	List(ctx context.Context, in ListVideosInput) (pagination.Page[models.VideoCard], error)
	Publish(ctx context.Context, actor string, in PublishVideoInput) (*models.Video, error)
	Get(ctx context.Context, videoID, viewer string) (*models.VideoDetail, error)
	Update(ctx context.Context, videoID, actor string, in UpdateVideoInput) (*models.Video, error)
	Delete(ctx context.Context, videoID, actor string) error
	TogglePublish(ctx context.Context, videoID, actor string) (*models.Video, error)
}

type videoService struct {
	videos   repository.VideoRepository
	comments repository.CommentRepository
	likes    repository.LikeRepository
	users    repository.UserRepository
	tx       repository.TxRunner
	media    MediaUploader
	events   events.Publisher
	log      *zap.Logger
}

func NewVideoService(
	videos repository.VideoRepository,
	comments repository.CommentRepository,
	likes repository.LikeRepository,
	users repository.UserRepository,
	tx repository.TxRunner,
	media MediaUploader,
	pub events.Publisher,
	log *zap.Logger,
) VideoService {
	return &videoService{
		videos:   videos,
		comments: comments,
		likes:    likes,
		users:    users,
		tx:       tx,
		media:    media,
		events:   pub,
		log:      log,
	}
}

func (s *videoService) List(ctx context.Context, in ListVideosInput) (pagination.Page[models.VideoCard], error) {
	var empty pagination.Page[models.VideoCard]

	p, err := pagination.Parse(in.Page, in.Limit)
	if err != nil {
		return empty, err
	}
	q := repository.VideoQuery{Text: strings.TrimSpace(in.Query)}
	if in.UserID != "" {
		if q.Owner, err = ParseID(in.UserID, "userId"); err != nil {
			return empty, err
		}
	}
	if q.Text == "" && q.Owner.IsZero() {
		return empty, utils.BadRequest("query or userId is required")
	}

	if in.SortBy != "" {
		if !repository.SortableVideoFields[in.SortBy] {
			return empty, utils.BadRequest("sortBy must be one of [createdAt duration title views]")
		}
		q.SortBy = in.SortBy
	}
	switch in.SortType {
	case "", "desc":
		q.SortDesc = true
	case "asc":
		q.SortDesc = false
	default:
		return empty, utils.BadRequest("sortType must be one of [asc desc]")
	}

	page, err := s.videos.Search(ctx, q, p)
	if err != nil {
		return empty, storeErr(err, "no videos found")
	}
	return page, nil
}

func (s *videoService) Publish(ctx context.Context, actor string, in PublishVideoInput) (*models.Video, error) {
	owner, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	if in.VideoFile == nil {
		return nil, utils.BadRequest("video file is required")
	}
	if in.Thumbnail == nil {
		return nil, utils.BadRequest("thumbnail is required")
	}
	if in.Duration < 0 {
		return nil, utils.BadRequest("duration must not be negative")
	}

	file, duration, err := s.media.UploadVideo(ctx, in.VideoFile, folderVideos)
	if err != nil {
		return nil, mediaErr(err, "video file")
	}
	if duration <= 0 {
		duration = in.Duration
	}
	thumb, err := s.media.UploadImage(ctx, in.Thumbnail, folderThumbnails)
	if err != nil {
		releaseAsset(ctx, s.media, s.log, file)
		return nil, mediaErr(err, "thumbnail")
	}

	v := &models.Video{
		Title:       in.Title,
		Description: in.Description,
		VideoFile:   file,
		Thumbnail:   thumb,
		Duration:    duration,
		IsPublished: true,
		Owner:       owner,
	}
	if err := s.videos.Create(ctx, v); err != nil {
		releaseAsset(ctx, s.media, s.log, file)
		releaseAsset(ctx, s.media, s.log, thumb)
		return nil, storeErr(err, "")
	}

	publish(ctx, s.events, s.log, events.New(events.VideoPublished, v.ID.Hex(), map[string]any{
		"owner": owner.Hex(),
		"title": v.Title,
	}))
	return v, nil
}

// Get resolves a video for a viewer and records the view: the counter goes
// up and the video moves into the viewer's watch history.
func (s *videoService) Get(ctx context.Context, videoID, viewer string) (*models.VideoDetail, error) {
	id, err := ParseID(videoID, "videoId")
	if err != nil {
		return nil, err
	}
	vid := viewerID(viewer)

	d, err := s.videos.Detail(ctx, id, vid)
	if err != nil {
		return nil, storeErr(err, "video not found")
	}

	if err := s.videos.IncrementViews(ctx, id); err != nil {
		s.log.Warn("failed to count view", zap.String("video_id", videoID), zap.Error(err))
	} else {
		d.Views++
	}
	if !vid.IsZero() {
		if err := s.users.AddToWatchHistory(ctx, vid, id); err != nil {
			s.log.Warn("failed to update watch history", zap.String("video_id", videoID), zap.Error(err))
		}
	}
	return d, nil
}

// owned loads a video and applies the ownership rule.
func (s *videoService) owned(ctx context.Context, videoID, actor string) (*models.Video, primitive.ObjectID, error) {
	uid, err := actorID(actor)
	if err != nil {
		return nil, uid, err
	}
	id, err := ParseID(videoID, "videoId")
	if err != nil {
		return nil, uid, err
	}
	v, err := s.videos.FindByID(ctx, id)
	if err != nil {
		return nil, uid, storeErr(err, "video not found")
	}
	if err := CanMutate(v.Owner, uid); err != nil {
		return nil, uid, err
	}
	return v, uid, nil
}

func (s *videoService) Update(ctx context.Context, videoID, actor string, in UpdateVideoInput) (*models.Video, error) {
	v, _, err := s.owned(ctx, videoID, actor)
	if err != nil {
		return nil, err
	}

	var upd repository.VideoUpdate
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, utils.BadRequest("title must not be empty")
		}
		if len([]rune(title)) > 120 {
			return nil, utils.BadRequest("title must be at most 120 characters long")
		}
		upd.Title = &title
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		if desc == "" {
			return nil, utils.BadRequest("description must not be empty")
		}
		upd.Description = &desc
	}
	if upd.Title == nil && upd.Description == nil && in.Thumbnail == nil {
		return nil, utils.BadRequest("title, description or thumbnail is required")
	}

	if in.Thumbnail != nil {
		thumb, err := s.media.UploadImage(ctx, in.Thumbnail, folderThumbnails)
		if err != nil {
			return nil, mediaErr(err, "thumbnail")
		}
		upd.Thumbnail = &thumb
	}

	updated, err := s.videos.Update(ctx, v.ID, upd)
	if err != nil {
		if upd.Thumbnail != nil {
			releaseAsset(ctx, s.media, s.log, *upd.Thumbnail)
		}
		return nil, storeErr(err, "video not found")
	}
	if upd.Thumbnail != nil {
		releaseAsset(ctx, s.media, s.log, v.Thumbnail)
	}
	return updated, nil
}

// Delete removes the video with its comments and every like pointing at
// either, in one unit of work. Remote files go last and only after the
// records are gone.
func (s *videoService) Delete(ctx context.Context, videoID, actor string) error {
	v, _, err := s.owned(ctx, videoID, actor)
	if err != nil {
		return err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		commentIDs, err := s.comments.IDsByVideo(ctx, v.ID)
		if err != nil {
			return err
		}
		if _, err := s.likes.DeleteByTargets(ctx, models.LikeComment, commentIDs); err != nil {
			return err
		}
		if _, err := s.comments.DeleteByVideo(ctx, v.ID); err != nil {
			return err
		}
		if _, err := s.likes.DeleteByTargets(ctx, models.LikeVideo, []primitive.ObjectID{v.ID}); err != nil {
			return err
		}
		return s.videos.Delete(ctx, v.ID)
	})
	if err != nil {
		return storeErr(err, "video not found")
	}

	releaseAsset(ctx, s.media, s.log, v.VideoFile)
	releaseAsset(ctx, s.media, s.log, v.Thumbnail)
	publish(ctx, s.events, s.log, events.New(events.VideoDeleted, v.ID.Hex(), map[string]any{
		"owner": v.Owner.Hex(),
	}))
	return nil
}

func (s *videoService) TogglePublish(ctx context.Context, videoID, actor string) (*models.Video, error) {
	v, _, err := s.owned(ctx, videoID, actor)
	if err != nil {
		return nil, err
	}
	updated, err := s.videos.SetPublished(ctx, v.ID, !v.IsPublished)
	if err != nil {
		return nil, storeErr(err, "video not found")
	}
	if updated.IsPublished {
		publish(ctx, s.events, s.log, events.New(events.VideoPublished, v.ID.Hex(), map[string]any{
			"owner": v.Owner.Hex(),
			"title": v.Title,
		}))
	}
	return updated, nil
}

// findVisibleVideo loads a video the viewer may see. Unpublished videos
// exist only for their owner.
func findVisibleVideo(ctx context.Context, videos repository.VideoRepository, id, viewer primitive.ObjectID) (*models.Video, error) {
	v, err := videos.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "video not found")
	}
	if !v.IsPublished && v.Owner != viewer {
		return nil, utils.NotFound("video not found")
	}
	return v, nil
}
