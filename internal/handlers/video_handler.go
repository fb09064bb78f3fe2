package handlers

import (
	"github.com/fathima-sithara/video-service/internal/services"
	"github.com/fathima-sithara/video-service/internal/utils"
	"github.com/gofiber/fiber/v2"
)

type publishVideoReq struct {
	Title       string  `json:"title" form:"title"`
	Description string  `json:"description" form:"description"`
	Duration    float64 `json:"duration" form:"duration"`
}

type updateVideoReq struct {
	Title       *string `json:"title" form:"title"`
	Description *string `json:"description" form:"description"`
}

// GET /videos?query=&userId=&sortBy=&sortType=&page=&limit=
func (h *Handler) ListVideos(c *fiber.Ctx) error {
	page, err := h.svc.Videos.List(c.UserContext(), services.ListVideosInput{
		Query:    c.Query("query"),
		UserID:   c.Query("userId"),
		SortBy:   c.Query("sortBy"),
		SortType: c.Query("sortType"),
		Page:     c.Query("page"),
		Limit:    c.Query("limit"),
	})
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, page, "Videos fetched successfully")
}

// POST /videos (multipart: videoFile, thumbnail)
func (h *Handler) PublishVideo(c *fiber.Ctx) error {
	var req publishVideoReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	v, err := h.svc.Videos.Publish(c.UserContext(), caller(c), services.PublishVideoInput{
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		VideoFile:   formFile(c, "videoFile"),
		Thumbnail:   formFile(c, "thumbnail"),
	})
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, v, "Video published successfully")
}

func (h *Handler) GetVideo(c *fiber.Ctx) error {
	v, err := h.svc.Videos.Get(c.UserContext(), c.Params("videoId"), caller(c))
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, v, "Video fetched successfully")
}

func (h *Handler) UpdateVideo(c *fiber.Ctx) error {
	var req updateVideoReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	v, err := h.svc.Videos.Update(c.UserContext(), c.Params("videoId"), caller(c), services.UpdateVideoInput{
		Title:       req.Title,
		Description: req.Description,
		Thumbnail:   formFile(c, "thumbnail"),
	})
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, v, "Video updated successfully")
}

func (h *Handler) DeleteVideo(c *fiber.Ctx) error {
	if err := h.svc.Videos.Delete(c.UserContext(), c.Params("videoId"), caller(c)); err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, nil, "Video deleted successfully")
}

// PATCH /videos/toggle/publish/:videoId
func (h *Handler) TogglePublish(c *fiber.Ctx) error {
	v, err := h.svc.Videos.TogglePublish(c.UserContext(), c.Params("videoId"), caller(c))
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, v, "Publish status toggled")
}

// GET /dashboard/stats
func (h *Handler) ChannelStats(c *fiber.Ctx) error {
	s, err := h.svc.Dashboard.Stats(c.UserContext(), caller(c))
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, s, "Channel stats fetched successfully")
}

// GET /dashboard/videos
func (h *Handler) ChannelVideos(c *fiber.Ctx) error {
	page, err := h.svc.Dashboard.Videos(c.UserContext(), caller(c), c.Query("page"), c.Query("limit"))
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, page, "Channel videos fetched successfully")
}
