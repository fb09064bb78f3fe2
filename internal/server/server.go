package server

import (
	"strings"

	"github.com/fathima-sithara/video-service/internal/config"
	"github.com/fathima-sithara/video-service/internal/handlers"
	"github.com/fathima-sithara/video-service/internal/metrics"
	"github.com/fathima-sithara/video-service/internal/middleware"
	"github.com/fathima-sithara/video-service/internal/routes"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// New initializes the Fiber application with config, middlewares, and routes.
func New(cfg *config.Config, h *handlers.Handler, authMiddleware, limiter fiber.Handler, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "videotube",
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BodyLimit:    cfg.App.BodyLimitMB << 20,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: middleware.ErrorHandler,
	})

	// Global Middlewares
	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.IsDevelopment()}))
	app.Use(corsMiddleware(cfg.CORS.Origin))
	app.Use(middleware.RequestID())
	app.Use(middleware.ZapLogger(logger))
	app.Use(middleware.Metrics())

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	routes.Setup(app, h, authMiddleware, limiter)

	return app
}

// corsMiddleware allows credentials unless every origin is allowed, which
// browsers refuse to combine.
func corsMiddleware(origin string) fiber.Handler {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		origin = "*"
	}
	return cors.New(cors.Config{
		AllowOrigins:     origin,
		AllowCredentials: origin != "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + middleware.HeaderRequestID,
		ExposeHeaders:    middleware.HeaderRequestID,
	})
}
