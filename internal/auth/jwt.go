package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")
)

const (
	audienceAccess  = "access"
	audienceRefresh = "refresh"
)

// AccessClaims identify the caller on every authenticated request.
type AccessClaims struct {
	UserID   string `json:"_id"`
	Email    string `json:"email"`
	UserName string `json:"userName"`
	FullName string `json:"fullName"`
	jwt.RegisteredClaims
}

// RefreshClaims carry the user id only.
type RefreshClaims struct {
	UserID string `json:"_id"`
	jwt.RegisteredClaims
}

// Identity is the subject an access token is issued for.
type Identity struct {
	UserID   string
	Email    string
	UserName string
	FullName string
}

type JWTManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewJWTManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func (j *JWTManager) AccessTTL() time.Duration { return j.accessTTL }
func (j *JWTManager) RefreshTTL() time.Duration { return j.refreshTTL }

// GenerateAccessToken signs a short-lived token for id.
func (j *JWTManager) GenerateAccessToken(id Identity) (string, time.Time, error) {
	now := j.now()
	exp := now.Add(j.accessTTL)
	claims := &AccessClaims{
		UserID:   id.UserID,
		Email:    id.Email,
		UserName: id.UserName,
		FullName: id.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			Audience:  jwt.ClaimStrings{audienceAccess},
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.accessSecret)
	return signed, exp, err
}

// GenerateRefreshToken signs a long-lived token carrying only the user id.
func (j *JWTManager) GenerateRefreshToken(userID string) (string, time.Time, error) {
	now := j.now()
	exp := now.Add(j.refreshTTL)
	claims := &RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			Audience:  jwt.ClaimStrings{audienceRefresh},
			// distinct jti so two refreshes in the same second still rotate
			ID: randomID(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.refreshSecret)
	return signed, exp, err
}

func (j *JWTManager) ParseAccess(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := j.parse(tokenStr, claims, j.accessSecret, audienceAccess); err != nil {
		return nil, err
	}
	return claims, nil
}

func (j *JWTManager) ParseRefresh(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := j.parse(tokenStr, claims, j.refreshSecret, audienceRefresh); err != nil {
		return nil, err
	}
	return claims, nil
}

func (j *JWTManager) parse(tokenStr string, claims jwt.Claims, secret []byte, audience string) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithTimeFunc(j.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrInvalidToken
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	aud, err := claims.GetAudience()
	if err != nil || !slices.Contains(aud, audience) {
		return ErrInvalidToken
	}
	return nil
}

// Digest is the form a refresh token is persisted in. bcrypt would only
// look at the first 72 bytes, which every token from this service shares.
func Digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
