package middleware

import (
	"github.com/fathima-sithara/video-service/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders any error returned by a handler as the response
// envelope. Logging happens in ZapLogger.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, msg := utils.StatusAndMessage(err)
	return utils.JSONError(c, status, msg)
}
