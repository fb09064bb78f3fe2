package storage

import (
	"context"

	"github.com/fathima-sithara/video-service/internal/models"
)

// MediaHost stores finished media and hands back its public reference.
type MediaHost interface {
	Upload(ctx context.Context, localPath, folder, contentType string) (models.Asset, error)
	Delete(ctx context.Context, mediaID string) error
}
