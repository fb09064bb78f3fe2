package routes

import (
	"github.com/fathima-sithara/video-service/internal/handlers"
	"github.com/fathima-sithara/video-service/internal/models"
	"github.com/gofiber/fiber/v2"
)

// Setup mounts the API under /api/v1. authMiddleware guards every route
// that needs a caller; limiter throttles the credential endpoints.
func Setup(app *fiber.App, h *handlers.Handler, authMiddleware, limiter fiber.Handler) {
	api := app.Group("/api/v1")

	api.Get("/healthcheck", h.HealthCheck)

	users := api.Group("/users")
	users.Post("/register", limiter, h.Register)
	users.Post("/login", limiter, h.Login)
	users.Post("/refresh-token", limiter, h.RefreshToken)

	users.Post("/logout", authMiddleware, h.Logout)
	users.Post("/change-password", authMiddleware, h.ChangePassword)
	users.Get("/current-user", authMiddleware, h.CurrentUser)
	users.Patch("/update-account", authMiddleware, h.UpdateAccount)
	users.Patch("/avatar", authMiddleware, h.UpdateAvatar)
	users.Patch("/cover-image", authMiddleware, h.UpdateCoverImage)
	users.Get("/c/:username", authMiddleware, h.ChannelProfile)
	users.Get("/history", authMiddleware, h.WatchHistory)

	videos := api.Group("/videos", authMiddleware)
	videos.Get("/", h.ListVideos)
	videos.Post("/", h.PublishVideo)
	videos.Get("/:videoId", h.GetVideo)
	videos.Patch("/:videoId", h.UpdateVideo)
	videos.Delete("/:videoId", h.DeleteVideo)
	videos.Patch("/toggle/publish/:videoId", h.TogglePublish)

	comments := api.Group("/comments", authMiddleware)
	comments.Get("/:videoId", h.ListComments)
	comments.Post("/:videoId", h.AddComment)
	comments.Patch("/c/:commentId", h.UpdateComment)
	comments.Delete("/c/:commentId", h.DeleteComment)

	likes := api.Group("/like", authMiddleware)
	likes.Post("/toggle/v/:videoId", h.ToggleLike(models.LikeVideo, "videoId"))
	likes.Post("/toggle/c/:commentId", h.ToggleLike(models.LikeComment, "commentId"))
	likes.Post("/toggle/t/:tweetId", h.ToggleLike(models.LikeTweet, "tweetId"))
	likes.Get("/videos", h.LikedVideos)

	tweets := api.Group("/tweet", authMiddleware)
	tweets.Post("/", h.CreateTweet)
	tweets.Get("/user/:userId", h.UserTweets)
	tweets.Patch("/:tweetId", h.UpdateTweet)
	tweets.Delete("/:tweetId", h.DeleteTweet)

	subs := api.Group("/subscription", authMiddleware)
	subs.Post("/c/:channelId", h.ToggleSubscription)
	subs.Get("/c/:channelId", h.ChannelSubscribers)
	subs.Get("/u/:subscriberId", h.SubscribedChannels)

	playlists := api.Group("/playlists", authMiddleware)
	playlists.Post("/", h.CreatePlaylist)
	playlists.Get("/user/:userId", h.UserPlaylists)
	playlists.Get("/:playlistId", h.GetPlaylist)
	playlists.Patch("/:playlistId", h.UpdatePlaylist)
	playlists.Delete("/:playlistId", h.DeletePlaylist)
	playlists.Patch("/add/:videoId/:playlistId", h.AddToPlaylist)
	playlists.Patch("/remove/:videoId/:playlistId", h.RemoveFromPlaylist)

	dashboard := api.Group("/dashboard", authMiddleware)
	dashboard.Get("/stats", h.ChannelStats)
	dashboard.Get("/videos", h.ChannelVideos)
}
