package handlers

import (
	"mime/multipart"

	"github.com/fathima-sithara/video-service/internal/middleware"
	"github.com/fathima-sithara/video-service/internal/services"
	"github.com/fathima-sithara/video-service/internal/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Services groups everything the handlers call into.
type Services struct {
	Users         services.UserService
	Videos        services.VideoService
	Comments      services.CommentService
	Tweets        services.TweetService
	Likes         services.LikeService
	Subscriptions services.SubscriptionService
	Playlists     services.PlaylistService
	Dashboard     services.DashboardService
	Health        services.HealthService
}

type Handler struct {
	svc           Services
	secureCookies bool
	log           *zap.Logger
}

func NewHandler(svc Services, secureCookies bool, log *zap.Logger) *Handler {
	return &Handler{svc: svc, secureCookies: secureCookies, log: log}
}

// parseBody decodes JSON, urlencoded or multipart bodies into v.
func parseBody(c *fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(v); err != nil {
		return utils.BadRequest("invalid request body")
	}
	return nil
}

// formFile returns the uploaded file for field, or nil when absent.
func formFile(c *fiber.Ctx, field string) *multipart.FileHeader {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	return fh
}

func caller(c *fiber.Ctx) string {
	return middleware.UserID(c)
}

// HealthCheck reports 503 when the store does not answer.
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	if err := h.svc.Health.Check(c.UserContext()); err != nil {
		h.log.Error("health check failed", zap.Error(err))
		return utils.JSONError(c, fiber.StatusServiceUnavailable, "store unavailable")
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"status": "OK"}, "OK")
}
