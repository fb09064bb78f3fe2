package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fathima-sithara/video-service/internal/events"
	"github.com/fathima-sithara/video-service/internal/models"
	"github.com/fathima-sithara/video-service/internal/repository"
	"github.com/fathima-sithara/video-service/internal/storage"
	"github.com/fathima-sithara/video-service/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Media host folders.
const (
	folderAvatars    = "avatars"
	folderCovers     = "covers"
	folderVideos     = "videos"
	folderThumbnails = "thumbnails"
)

const publishTimeout = 2 * time.Second

// MediaUploader moves request files to the media host.
type MediaUploader interface {
	UploadImage(ctx context.Context, h *multipart.FileHeader, folder string) (models.Asset, error)
	UploadVideo(ctx context.Context, h *multipart.FileHeader, folder string) (models.Asset, float64, error)
	Delete(ctx context.Context, mediaID string) error
}

// CanMutate is the single ownership rule: only the owner of a record may
// change or remove it.
func CanMutate(ownerID, actorID primitive.ObjectID) error {
	if actorID.IsZero() || ownerID != actorID {
		return utils.Forbidden("you are not allowed to modify this resource")
	}
	return nil
}

// ParseID reads a hex object id from a path or query parameter.
func ParseID(raw, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, utils.BadRequest("invalid %s", name)
	}
	return id, nil
}

// actorID parses the authenticated caller. A missing caller is an auth
// failure, not a bad request.
func actorID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, utils.Unauthorized("unauthorized request")
	}
	return id, nil
}

// viewerID is actorID for routes where an anonymous caller is tolerated.
func viewerID(raw string) primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}

// storeErr maps a repository error onto the client-facing kinds.
func storeErr(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return utils.NotFound("%s", notFound)
	case errors.Is(err, repository.ErrDuplicate):
		return utils.Conflict("resource already exists")
	default:
		var appErr *utils.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return utils.Internal("", err)
	}
}

func mediaErr(err error, what string) error {
	switch {
	case errors.Is(err, storage.ErrInvalidFile), errors.Is(err, storage.ErrFileTooLarge):
		return utils.BadRequest("%s: %v", what, err)
	default:
		return utils.Upstream("error while uploading "+what, err)
	}
}

// checkContent trims content and enforces the shared length rule.
func checkContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", utils.BadRequest("content is required")
	}
	if utf8.RuneCountInString(content) > models.MaxContentLength {
		return "", utils.BadRequest("content must be at most %d characters long", models.MaxContentLength)
	}
	return content, nil
}

// releaseAsset deletes a superseded or orphaned remote asset. Failures only
// leave garbage on the media host, so they are logged, not returned.
func releaseAsset(ctx context.Context, media MediaUploader, log *zap.Logger, a models.Asset) {
	if a.MediaID == "" {
		return
	}
	if err := media.Delete(context.WithoutCancel(ctx), a.MediaID); err != nil {
		log.Warn("failed to delete media asset", zap.String("media_id", a.MediaID), zap.Error(err))
	}
}

func publish(ctx context.Context, pub events.Publisher, log *zap.Logger, e events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := pub.Publish(ctx, e); err != nil {
		log.Warn("failed to publish event", zap.String("type", e.Type), zap.String("key", e.Key), zap.Error(err))
	}
}
