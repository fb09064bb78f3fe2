package handlers

import (
	"github.com/fathima-sithara/video-service/internal/services"
	"github.com/fathima-sithara/video-service/internal/utils"
	"github.com/gofiber/fiber/v2"
)

type playlistReq struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
}

type playlistUpdateReq struct {
	Name        *string `json:"name" form:"name"`
	Description *string `json:"description" form:"description"`
}

// POST /playlists
func (h *Handler) CreatePlaylist(c *fiber.Ctx) error {
	var req playlistReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	p, err := h.svc.Playlists.Create(c.UserContext(), caller(c), services.PlaylistInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, p, "Playlist created successfully")
}

func (h *Handler) UserPlaylists(c *fiber.Ctx) error {
	lists, err := h.svc.Playlists.ListByUser(c.UserContext(), c.Params("userId"))
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, lists, "Playlists fetched successfully")
}

func (h *Handler) GetPlaylist(c *fiber.Ctx) error {
	p, err := h.svc.Playlists.Get(c.UserContext(), c.Params("playlistId"))
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, p, "Playlist fetched successfully")
}

func (h *Handler) UpdatePlaylist(c *fiber.Ctx) error {
	var req playlistUpdateReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	p, err := h.svc.Playlists.Update(c.UserContext(), c.Params("playlistId"), caller(c), services.PlaylistUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, p, "Playlist updated successfully")
}

func (h *Handler) DeletePlaylist(c *fiber.Ctx) error {
	if err := h.svc.Playlists.Delete(c.UserContext(), c.Params("playlistId"), caller(c)); err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, nil, "Playlist deleted successfully")
}

// PATCH /playlists/add/:videoId/:playlistId
func (h *Handler) AddToPlaylist(c *fiber.Ctx) error {
	p, err := h.svc.Playlists.AddVideo(c.UserContext(), c.Params("videoId"), c.Params("playlistId"), caller(c))
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, p, "Video added to playlist")
}

// PATCH /playlists/remove/:videoId/:playlistId
func (h *Handler) RemoveFromPlaylist(c *fiber.Ctx) error {
	p, err := h.svc.Playlists.RemoveVideo(c.UserContext(), c.Params("videoId"), c.Params("playlistId"), caller(c))
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, p, "Video removed from playlist")
}
