package handlers

import (
	"github.com/fathima-sithara/video-service/internal/models"
	"github.com/fathima-sithara/video-service/internal/utils"
	"github.com/gofiber/fiber/v2"
)

type contentReq struct {
	Content string `json:"content" form:"content"`
}

func (h *Handler) content(c *fiber.Ctx) (string, error) {
	var req contentReq
	if err := parseBody(c, &req); err != nil {
		return "", err
	}
	return req.Content, nil
}

// GET /comments/:videoId?page=&limit=
func (h *Handler) ListComments(c *fiber.Ctx) error {
	page, err := h.svc.Comments.List(c.UserContext(), c.Params("videoId"), caller(c), c.Query("page"), c.Query("limit"))
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, page, "Comments fetched successfully")
}

func (h *Handler) AddComment(c *fiber.Ctx) error {
	content, err := h.content(c)
	if err != nil {
		return err
	}
	cm, err := h.svc.Comments.Add(c.UserContext(), c.Params("videoId"), caller(c), content)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, cm, "Comment added successfully")
}

func (h *Handler) UpdateComment(c *fiber.Ctx) error {
	content, err := h.content(c)
	if err != nil {
		return err
	}
	cm, err := h.svc.Comments.Update(c.UserContext(), c.Params("commentId"), caller(c), content)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, cm, "Comment updated successfully")
}

func (h *Handler) DeleteComment(c *fiber.Ctx) error {
	if err := h.svc.Comments.Delete(c.UserContext(), c.Params("commentId"), caller(c)); err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, nil, "Comment deleted successfully")
}

// ToggleLike builds the handler for one like target kind; param names the
// route parameter carrying the target id.
func (h *Handler) ToggleLike(kind models.LikeKind, param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := h.svc.Likes.Toggle(c.UserContext(), kind, c.Params(param), caller(c))
		if err != nil {
			return err
		}
		msg := "Like removed"
		if res.Active {
			msg = "Liked successfully"
		}
		return utils.JSONSuccess(c, fiber.StatusOK, res, msg)
	}
}

// GET /like/videos
func (h *Handler) LikedVideos(c *fiber.Ctx) error {
	videos, err := h.svc.Likes.LikedVideos(c.UserContext(), caller(c))
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, videos, "Liked videos fetched successfully")
}

// POST /tweet
func (h *Handler) CreateTweet(c *fiber.Ctx) error {
	content, err := h.content(c)
	if err != nil {
		return err
	}
	t, err := h.svc.Tweets.Create(c.UserContext(), caller(c), content)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, t, "Tweet created successfully")
}

func (h *Handler) UserTweets(c *fiber.Ctx) error {
	tweets, err := h.svc.Tweets.ListByUser(c.UserContext(), c.Params("userId"), caller(c))
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, tweets, "Tweets fetched successfully")
}

func (h *Handler) UpdateTweet(c *fiber.Ctx) error {
	content, err := h.content(c)
	if err != nil {
		return err
	}
	t, err := h.svc.Tweets.Update(c.UserContext(), c.Params("tweetId"), caller(c), content)
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, t, "Tweet updated successfully")
}

func (h *Handler) DeleteTweet(c *fiber.Ctx) error {
	if err := h.svc.Tweets.Delete(c.UserContext(), c.Params("tweetId"), caller(c)); err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, nil, "Tweet deleted successfully")
}

// POST /subscription/c/:channelId
func (h *Handler) ToggleSubscription(c *fiber.Ctx) error {
	res, err := h.svc.Subscriptions.Toggle(c.UserContext(), c.Params("channelId"), caller(c))
	if err != nil {
		return err
	}
	msg := "Unsubscribed successfully"
	if res.Active {
		msg = "Subscribed successfully"
	}
	return utils.JSONSuccess(c, fiber.StatusOK, res, msg)
}

// GET /subscription/c/:channelId
func (h *Handler) ChannelSubscribers(c *fiber.Ctx) error {
	subs, err := h.svc.Subscriptions.Subscribers(c.UserContext(), c.Params("channelId"))
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, subs, "Subscribers fetched successfully")
}

// GET /subscription/u/:subscriberId
func (h *Handler) SubscribedChannels(c *fiber.Ctx) error {
	chans, err := h.svc.Subscriptions.SubscribedChannels(c.UserContext(), c.Params("subscriberId"), caller(c))
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, chans, "Subscribed channels fetched successfully")
}
