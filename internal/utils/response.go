package utils

import "github.com/gofiber/fiber/v2"

// Envelope is the body of every response, successful or not.
type Envelope struct {
	Status  int    `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

func JSONSuccess(c *fiber.Ctx, status int, payload any, msg string) error {
	if payload == nil {
		payload = fiber.Map{}
	}
	return c.Status(status).JSON(Envelope{Status: status, Data: payload, Message: msg})
}

func JSONError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(Envelope{Status: status, Data: fiber.Map{}, Message: msg})
}
