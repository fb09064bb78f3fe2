package middleware

import (
	"strconv"
	"time"

	"github.com/fathima-sithara/video-service/internal/metrics"
	"github.com/fathima-sithara/video-service/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// Metrics records request count and latency per matched route template so
// ids in the path do not explode label cardinality.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = statusOf(err)
		}
		route := c.Route().Path
		metrics.RequestsTotal.WithLabelValues(route, c.Method(), strconv.Itoa(status)).Inc()
		metrics.RequestDuration.WithLabelValues(route, c.Method()).Observe(time.Since(start).Seconds())
		return err
	}
}

func statusOf(err error) int {
	status, _ := utils.StatusAndMessage(err)
	return status
}
