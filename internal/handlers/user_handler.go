package handlers

import (
	"time"

	"github.com/fathima-sithara/video-service/internal/middleware"
	"github.com/fathima-sithara/video-service/internal/services"
	"github.com/fathima-sithara/video-service/internal/utils"
	"github.com/gofiber/fiber/v2"
)

type registerReq struct {
	UserName string `json:"userName" form:"userName"`
	FullName string `json:"fullName" form:"fullName"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type loginReq struct {
	Email    string `json:"email" form:"email"`
	UserName string `json:"userName" form:"userName"`
	Password string `json:"password" form:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

type changePasswordReq struct {
	OldPassword string `json:"oldPassword" form:"oldPassword"`
	NewPassword string `json:"newPassword" form:"newPassword"`
}

type updateAccountReq struct {
	FullName string `json:"fullName" form:"fullName"`
	Email    string `json:"email" form:"email"`
}

// POST /users/register (multipart: avatar, coverImage)
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	u, err := h.svc.Users.Register(c.UserContext(), services.RegisterInput{
		UserName:   req.UserName,
		FullName:   req.FullName,
		Email:      req.Email,
		Password:   req.Password,
		Avatar:     formFile(c, "avatar"),
		CoverImage: formFile(c, "coverImage"),
	})
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, u, "User registered successfully")
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	s, err := h.svc.Users.Login(c.UserContext(), services.LoginInput{
		Email:    req.Email,
		UserName: req.UserName,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	h.setSessionCookies(c, s)
	return utils.JSONSuccess(c, fiber.StatusOK, s, "User logged in successfully")
}

// RefreshToken takes the refresh token from the cookie or the body.
func (h *Handler) RefreshToken(c *fiber.Ctx) error {
	token := c.Cookies(middleware.RefreshCookie)
	if token == "" {
		var req refreshReq
		if err := parseBody(c, &req); err != nil {
			return err
		}
		token = req.RefreshToken
	}
	s, err := h.svc.Users.Refresh(c.UserContext(), token)
	if err != nil {
		return err
	}
	h.setSessionCookies(c, s)
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{
		"accessToken":  s.AccessToken,
		"refreshToken": s.RefreshToken,
	}, "Access token refreshed")
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	if err := h.svc.Users.Logout(c.UserContext(), caller(c)); err != nil {
		return err
	}
	h.clearSessionCookies(c)
	return utils.JSONSuccess(c, fiber.StatusOK, nil, "User logged out")
}

func (h *Handler) ChangePassword(c *fiber.Ctx) error {
	var req changePasswordReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	err := h.svc.Users.ChangePassword(c.UserContext(), caller(c), services.ChangePasswordInput{
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, nil, "Password changed successfully")
}

func (h *Handler) CurrentUser(c *fiber.Ctx) error {
	u, err := h.svc.Users.CurrentUser(c.UserContext(), caller(c))
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, u, "User fetched successfully")
}

func (h *Handler) UpdateAccount(c *fiber.Ctx) error {
	var req updateAccountReq
	if err := parseBody(c, &req); err != nil {
		return err
	}
	u, err := h.svc.Users.UpdateAccount(c.UserContext(), caller(c), services.UpdateAccountInput{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, u, "Account details updated successfully")
}

func (h *Handler) UpdateAvatar(c *fiber.Ctx) error {
	u, err := h.svc.Users.UpdateAvatar(c.UserContext(), caller(c), formFile(c, "avatar"))
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, u, "Avatar updated successfully")
}

func (h *Handler) UpdateCoverImage(c *fiber.Ctx) error {
	u, err := h.svc.Users.UpdateCoverImage(c.UserContext(), caller(c), formFile(c, "coverImage"))
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, u, "Cover image updated successfully")
}

func (h *Handler) ChannelProfile(c *fiber.Ctx) error {
	p, err := h.svc.Users.ChannelProfile(c.UserContext(), c.Params("username"), caller(c))
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, p, "User channel fetched successfully")
}

func (h *Handler) WatchHistory(c *fiber.Ctx) error {
	videos, err := h.svc.Users.WatchHistory(c.UserContext(), caller(c))
	if err != nil {
		return err
	}
	return utils.JSONSuccess(c, fiber.StatusOK, videos, "Watch history fetched successfully")
}

func (h *Handler) setSessionCookies(c *fiber.Ctx, s *services.Session) {
	c.Cookie(h.cookie(middleware.AccessCookie, s.AccessToken, s.AccessExpiresAt))
	c.Cookie(h.cookie(middleware.RefreshCookie, s.RefreshToken, s.RefreshExpiresAt))
}

func (h *Handler) clearSessionCookies(c *fiber.Ctx) {
	expired := time.Unix(0, 0)
	c.Cookie(h.cookie(middleware.AccessCookie, "", expired))
	c.Cookie(h.cookie(middleware.RefreshCookie, "", expired))
}

func (h *Handler) cookie(name, value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}
