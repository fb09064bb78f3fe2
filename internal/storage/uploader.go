package storage

import (
	"context"
	"mime/multipart"

	"github.com/fathima-sithara/video-service/internal/metrics"
	"github.com/fathima-sithara/video-service/internal/models"
	"go.uber.org/zap"
)

// Uploader runs one multipart file through staging, local processing and
// the media host. The staged copy is removed whatever the outcome.
type Uploader struct {
	stager *Stager
	images *ImageProcessor
	host   MediaHost
	probe  func(path string) (float64, error)
	log    *zap.Logger
}

func NewUploader(stager *Stager, images *ImageProcessor, host MediaHost, log *zap.Logger) *Uploader {
	return &Uploader{
		stager: stager,
		images: images,
		host:   host,
		probe:  ProbeDuration,
		log:    log,
	}
}

func (u *Uploader) UploadImage(ctx context.Context, h *multipart.FileHeader, folder string) (models.Asset, error) {
	f, err := u.stager.Stage(h, KindImage)
	if err != nil {
		return models.Asset{}, err
	}
	defer f.Remove()

	if err := u.images.Normalize(f.Path); err != nil {
		return models.Asset{}, err
	}
	return u.upload(ctx, f, folder)
}

// UploadVideo also reports the probed duration in seconds. A zero duration
// means the probe failed and the caller should fall back to its own value.
func (u *Uploader) UploadVideo(ctx context.Context, h *multipart.FileHeader, folder string) (models.Asset, float64, error) {
	f, err := u.stager.Stage(h, KindVideo)
	if err != nil {
		return models.Asset{}, 0, err
	}
	defer f.Remove()

	duration, err := u.probe(f.Path)
	if err != nil {
		u.log.Warn("video probe failed", zap.String("file", h.Filename), zap.Error(err))
		duration = 0
	}
	a, err := u.upload(ctx, f, folder)
	if err != nil {
		return models.Asset{}, 0, err
	}
	return a, duration, nil
}

func (u *Uploader) Delete(ctx context.Context, mediaID string) error {
	if err := u.host.Delete(ctx, mediaID); err != nil {
		metrics.MediaFailures.WithLabelValues("delete").Inc()
		return err
	}
	return nil
}

func (u *Uploader) upload(ctx context.Context, f *StagedFile, folder string) (models.Asset, error) {
	a, err := u.host.Upload(ctx, f.Path, folder, f.ContentType)
	if err != nil {
		metrics.MediaFailures.WithLabelValues("upload").Inc()
		return models.Asset{}, err
	}
	return a, nil
}
