package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/taskforge/task-assignment-api/internal/models"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken        = errors.New("invalid token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// Claims carried by both access and refresh tokens. Role travels with the
// token so API middleware can gate routes before touching the database.
type Claims struct {
	UserID    uint64      `json:"user_id"`
	Username  string      `json:"username"`
	Role      models.Role `json:"role"`
	TokenType string      `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is an access/refresh token pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService issues and validates the JWT pair for the REST API. When a
// Redis client is configured, refresh tokens are whitelisted so a rotation or
// logout invalidates older ones; with a nil client refresh stays stateless.
type TokenService struct {
	secret        string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	redis         *redis.Client
}

// NewTokenService creates a new TokenService.
func NewTokenService(secret string, accessExpiry, refreshExpiry time.Duration, redisClient *redis.Client) *TokenService {
	return &TokenService{
		secret:        secret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		redis:         redisClient,
	}
}

// IssuePair issues a fresh access/refresh pair for the user.
func (s *TokenService) IssuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessToken, err := s.generateToken(user, tokenTypeAccess, s.accessExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := s.generateToken(user, tokenTypeRefresh, s.refreshExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, refreshKey(user.ID), refreshToken, s.refreshExpiry).Err(); err != nil {
			return nil, fmt.Errorf("failed to store refresh token: %w", err)
		}
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a valid refresh token for a new pair, rotating the stored
// refresh token when a whitelist is configured.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, *Claims, error) {
	claims, err := s.parseToken(refreshToken)
	if err != nil || claims.TokenType != tokenTypeRefresh {
		return nil, nil, ErrInvalidRefreshToken
	}

	if s.redis != nil {
		stored, err := s.redis.Get(ctx, refreshKey(claims.UserID)).Result()
		if err != nil || stored != refreshToken {
			return nil, nil, ErrInvalidRefreshToken
		}
	}

	user := &models.User{
		ID:       claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	}

	pair, err := s.IssuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return pair, claims, nil
}

// Revoke drops the stored refresh token for the user, if any.
func (s *TokenService) Revoke(ctx context.Context, userID uint64) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, refreshKey(userID)).Err()
}

// ValidateAccess parses and validates an access token.
func (s *TokenService) ValidateAccess(tokenString string) (*Claims, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil || claims.TokenType != tokenTypeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *TokenService) generateToken(user *models.User, tokenType string, expiry time.Duration) (string, error) {
	claims := Claims{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

func (s *TokenService) parseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

func refreshKey(userID uint64) string {
	return fmt.Sprintf("refresh_token:%d", userID)
}
