package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"github.com/fathima-sithara/video-service/internal/auth"
	"github.com/fathima-sithara/video-service/internal/events"
	"github.com/fathima-sithara/video-service/internal/models"
	"github.com/fathima-sithara/video-service/internal/repository"
	"github.com/fathima-sithara/video-service/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	UserName   string `json:"userName" validate:"required,min=3,max=30,alphanum"`
	FullName   string `json:"fullName" validate:"required,max=80"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	Avatar     *multipart.FileHeader
	CoverImage *multipart.FileHeader
}

type LoginInput struct {
	Email    string `json:"email"`
	UserName string `json:"userName"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

type UpdateAccountInput struct {
	FullName string `json:"fullName" validate:"required,max=80"`
	Email    string `json:"email" validate:"required,email"`
}

// Session is what login and refresh hand back. The expiries drive the
// cookie lifetimes and are not serialized.
type Session struct {
	User             *models.User `json:"user"`
	AccessToken      string       `json:"accessToken"`
	RefreshToken     string       `json:"refreshToken"`
	AccessExpiresAt  time.Time    `json:"-"`
	RefreshExpiresAt time.Time    `json:"-"`
}

type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Login(ctx context.Context, in LoginInput) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	Logout(ctx context.Context, actor string) error
	ChangePassword(ctx context.Context, actor string, in ChangePasswordInput) error
	CurrentUser(ctx context.Context, actor string) (*models.User, error)
	UpdateAccount(ctx context.Context, actor string, in UpdateAccountInput) (*models.User, error)
	UpdateAvatar(ctx context.Context, actor string, file *multipart.FileHeader) (*models.User, error)
	UpdateCoverImage(ctx context.Context, actor string, file *multipart.FileHeader) (*models.User, error)
	ChannelProfile(ctx context.Context, userName, viewer string) (*models.ChannelProfile, error)
	WatchHistory(ctx context.Context, actor string) ([]models.VideoCard, error)
}

type userService struct {
	users  repository.UserRepository
	media  MediaUploader
	jwt    *auth.JWTManager
	events events.Publisher
	log    *zap.Logger
	cost   int
}

func NewUserService(users repository.UserRepository, media MediaUploader, jwtm *auth.JWTManager, pub events.Publisher, log *zap.Logger) UserService {
	return &userService{
		users:  users,
		media:  media,
		jwt:    jwtm,
		events: pub,
		log:    log,
		cost:   bcrypt.DefaultCost,
	}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.UserName = strings.ToLower(strings.TrimSpace(in.UserName))
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	if in.Avatar == nil {
		return nil, utils.BadRequest("avatar file is required")
	}

	exists, err := s.users.Exists(ctx, in.Email, in.UserName)
	if err != nil {
		return nil, storeErr(err, "")
	}
	if exists {
		return nil, utils.Conflict("user with email or username already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, utils.Internal("failed to hash password", err)
	}

	avatar, err := s.media.UploadImage(ctx, in.Avatar, folderAvatars)
	if err != nil {
		return nil, mediaErr(err, "avatar")
	}
	var cover models.Asset
	if in.CoverImage != nil {
		cover, err = s.media.UploadImage(ctx, in.CoverImage, folderCovers)
		if err != nil {
			releaseAsset(ctx, s.media, s.log, avatar)
			return nil, mediaErr(err, "cover image")
		}
	}

	u := &models.User{
		UserName:   in.UserName,
		FullName:   in.FullName,
		Email:      in.Email,
		Password:   string(hash),
		Avatar:     avatar,
		CoverImage: cover,
	}
	if err := s.users.Create(ctx, u); err != nil {
		releaseAsset(ctx, s.media, s.log, avatar)
		releaseAsset(ctx, s.media, s.log, cover)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, utils.Conflict("user with email or username already exists")
		}
		return nil, storeErr(err, "")
	}

	publish(ctx, s.events, s.log, events.New(events.UserRegistered, u.ID.Hex(), map[string]any{
		"userName": u.UserName,
	}))
	return u, nil
}

func (s *userService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.UserName = strings.ToLower(strings.TrimSpace(in.UserName))
	if in.Email == "" && in.UserName == "" {
		return nil, utils.BadRequest("username or email is required")
	}
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	u, err := s.users.FindByLogin(ctx, in.Email, in.UserName)
	if err != nil {
		return nil, storeErr(err, "user does not exist")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.Password)); err != nil {
		return nil, utils.Unauthorized("invalid user credentials")
	}
	return s.issue(ctx, u)
}

// Refresh rotates both tokens. The presented refresh token must be the one
// most recently issued; a replayed token is rejected.
func (s *userService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, utils.Unauthorized("unauthorized request")
	}
	claims, err := s.jwt.ParseRefresh(refreshToken)
	if err != nil {
		return nil, utils.Unauthorized("invalid refresh token")
	}
	id, err := actorID(claims.UserID)
	if err != nil {
		return nil, utils.Unauthorized("invalid refresh token")
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.Unauthorized("invalid refresh token")
		}
		return nil, storeErr(err, "")
	}
	if u.RefreshToken == "" || u.RefreshToken != auth.Digest(refreshToken) {
		return nil, utils.Unauthorized("refresh token is expired or used")
	}
	return s.issue(ctx, u)
}

func (s *userService) issue(ctx context.Context, u *models.User) (*Session, error) {
	access, accessExp, err := s.jwt.GenerateAccessToken(auth.Identity{
		UserID:   u.ID.Hex(),
		Email:    u.Email,
		UserName: u.UserName,
		FullName: u.FullName,
	})
	if err != nil {
		return nil, utils.Internal("failed to generate access token", err)
	}
	refresh, refreshExp, err := s.jwt.GenerateRefreshToken(u.ID.Hex())
	if err != nil {
		return nil, utils.Internal("failed to generate refresh token", err)
	}
	if err := s.users.SetRefreshToken(ctx, u.ID, auth.Digest(refresh)); err != nil {
		return nil, storeErr(err, "user does not exist")
	}
	u.RefreshToken = ""
	return &Session{
		User:             u,
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *userService) Logout(ctx context.Context, actor string) error {
	id, err := actorID(actor)
	if err != nil {
		return err
	}
	return storeErr(s.users.SetRefreshToken(ctx, id, ""), "user does not exist")
}

func (s *userService) ChangePassword(ctx context.Context, actor string, in ChangePasswordInput) error {
	id, err := actorID(actor)
	if err != nil {
		return err
	}
	if err := utils.ValidateStruct(in); err != nil {
		return err
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return storeErr(err, "user does not exist")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.OldPassword)); err != nil {
		return utils.Unauthorized("invalid old password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.cost)
	if err != nil {
		return utils.Internal("failed to hash password", err)
	}
	return storeErr(s.users.SetPassword(ctx, id, string(hash)), "user does not exist")
}

func (s *userService) CurrentUser(ctx context.Context, actor string) (*models.User, error) {
	id, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "user does not exist")
	}
	return u, nil
}

func (s *userService) UpdateAccount(ctx context.Context, actor string, in UpdateAccountInput) (*models.User, error) {
	id, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	u, err := s.users.UpdateAccount(ctx, id, in.FullName, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, utils.Conflict("email is already in use")
		}
		return nil, storeErr(err, "user does not exist")
	}
	return u, nil
}

func (s *userService) UpdateAvatar(ctx context.Context, actor string, file *multipart.FileHeader) (*models.User, error) {
	return s.replaceImage(ctx, actor, file, repository.AvatarField, folderAvatars, "avatar")
}

func (s *userService) UpdateCoverImage(ctx context.Context, actor string, file *multipart.FileHeader) (*models.User, error) {
	return s.replaceImage(ctx, actor, file, repository.CoverImageField, folderCovers, "cover image")
}

// replaceImage uploads the new asset, saves the record, then drops the old
// asset. A failed save releases the new upload instead.
func (s *userService) replaceImage(ctx context.Context, actor string, file *multipart.FileHeader, field, folder, what string) (*models.User, error) {
	id, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, utils.BadRequest("%s file is missing", what)
	}
	current, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "user does not exist")
	}

	asset, err := s.media.UploadImage(ctx, file, folder)
	if err != nil {
		return nil, mediaErr(err, what)
	}
	u, err := s.users.SetAsset(ctx, id, field, asset)
	if err != nil {
		releaseAsset(ctx, s.media, s.log, asset)
		return nil, storeErr(err, "user does not exist")
	}

	old := current.Avatar
	if field == repository.CoverImageField {
		old = current.CoverImage
	}
	releaseAsset(ctx, s.media, s.log, old)
	return u, nil
}

func (s *userService) ChannelProfile(ctx context.Context, userName, viewer string) (*models.ChannelProfile, error) {
	userName = strings.ToLower(strings.TrimSpace(userName))
	if userName == "" {
		return nil, utils.BadRequest("username is missing")
	}
	p, err := s.users.ChannelProfile(ctx, userName, viewerID(viewer))
	if err != nil {
		return nil, storeErr(err, "channel does not exist")
	}
	return p, nil
}

func (s *userService) WatchHistory(ctx context.Context, actor string) ([]models.VideoCard, error) {
	id, err := actorID(actor)
	if err != nil {
		return nil, err
	}
	h, err := s.users.WatchHistory(ctx, id)
	if err != nil {
		return nil, storeErr(err, "user does not exist")
	}
	return h, nil
}
