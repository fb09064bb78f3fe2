package services

import (
	"context"
	"strings"

	"github.com/fathima-sithara/video-service/internal/models"
	"github.com/fathima-sithara/video-service/internal/repository"
	"github.com/fathima-sithara/video-service/internal/utils"
)

type PlaylistInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// PlaylistUpdate changes only the fields that are set.
type PlaylistUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type PlaylistService interface {
	Create(ctx context.Context, actor string, in PlaylistInput) (*models.Playlist, error)
	ListByUser(ctx context.Context, userID string) ([]models.PlaylistSummary, error)
	Get(ctx context.Context, playlistID string) (*models.PlaylistDetail, error)
	Update(ctx context.Context, playlistID, actor string, in PlaylistUpdate) (*models.Playlist, error)
	Delete(ctx context.Context, playlistID, actor string) error
	AddVideo(ctx context.Context, videoID, playlistID, actor string) (*models.Playlist, error)
	RemoveVideo(ctx context.Context, videoID, playlistID, actor string) (*models.Playlist, error)
}

type playlistService struct {
	playlists repository.PlaylistRepository
	videos    repository.VideoRepository
	users     repository.UserRepository
}

func NewPlaylistService(playlists repository.PlaylistRepository, videos repository.VideoRepository, users repository.UserRepository) PlaylistService {
	return &playlistService{playlists: playlists, videos: videos, users: users}
}

func (s *playlistService) Create(ctx context.Context, actor string, in PlaylistInput) (*models.Playlist, error) {
	uid, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	p := &models.Playlist{Name: in.Name, Description: in.Description, Owner: uid}
	if err := s.playlists.Create(ctx, p); err != nil {
		return nil, storeErr(err, "")
	}
	return p, nil
}

func (s *playlistService) ListByUser(ctx context.Context, userID string) ([]models.PlaylistSummary, error) {
	id, err := ParseID(userID, "userId")
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return nil, storeErr(err, "user not found")
	}
	list, err := s.playlists.ListByOwner(ctx, id)
	if err != nil {
		return nil, storeErr(err, "")
	}
	return nonNil(list), nil
}

func (s *playlistService) Get(ctx context.Context, playlistID string) (*models.PlaylistDetail, error) {
	id, err := ParseID(playlistID, "playlistId")
	if err != nil {
		return nil, err
	}
	d, err := s.playlists.Detail(ctx, id)
	if err != nil {
		return nil, storeErr(err, "playlist not found")
	}
	d.Videos = nonNil(d.Videos)
	return d, nil
}

func (s *playlistService) owned(ctx context.Context, playlistID, actor string) (*models.Playlist, error) {
	uid, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	id, err := ParseID(playlistID, "playlistId")
	if err != nil {
		return nil, err
	}
	p, err := s.playlists.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "playlist not found")
	}
	if err := CanMutate(p.Owner, uid); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *playlistService) Update(ctx context.Context, playlistID, actor string, in PlaylistUpdate) (*models.Playlist, error) {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, utils.BadRequest("name must not be empty")
		}
		in.Name = &name
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		in.Description = &desc
	}
	if in.Name == nil && in.Description == nil {
		return nil, utils.BadRequest("name or description is required")
	}
	p, err := s.owned(ctx, playlistID, actor)
	if err != nil {
		return nil, err
	}
	updated, err := s.playlists.UpdateDetails(ctx, p.ID, in.Name, in.Description)
	if err != nil {
		return nil, storeErr(err, "playlist not found")
	}
	return updated, nil
}

func (s *playlistService) Delete(ctx context.Context, playlistID, actor string) error {
	p, err := s.owned(ctx, playlistID, actor)
	if err != nil {
		return err
	}
	return storeErr(s.playlists.Delete(ctx, p.ID), "playlist not found")
}

// AddVideo has set semantics: adding a member twice leaves one entry.
func (s *playlistService) AddVideo(ctx context.Context, videoID, playlistID, actor string) (*models.Playlist, error) {
	vid, err := ParseID(videoID, "videoId")
	if err != nil {
		return nil, err
	}
	p, err := s.owned(ctx, playlistID, actor)
	if err != nil {
		return nil, err
	}
	if _, err := findVisibleVideo(ctx, s.videos, vid, p.Owner); err != nil {
		return nil, err
	}
	updated, err := s.playlists.AddVideo(ctx, p.ID, vid)
	if err != nil {
		return nil, storeErr(err, "playlist not found")
	}
	return updated, nil
}

func (s *playlistService) RemoveVideo(ctx context.Context, videoID, playlistID, actor string) (*models.Playlist, error) {
	vid, err := ParseID(videoID, "videoId")
	if err != nil {
		return nil, err
	}
	p, err := s.owned(ctx, playlistID, actor)
	if err != nil {
		return nil, err
	}
	updated, err := s.playlists.RemoveVideo(ctx, p.ID, vid)
	if err != nil {
		return nil, storeErr(err, "playlist not found")
	}
	return updated, nil
}
