package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenService verifies access tokens issued by the external auth service.
// Both the HTTP middleware and the realtime handshake go through it.
type TokenService struct {
	jwtSecret []byte
	now       func() time.Time
}

func NewTokenService(jwtSecret string) *TokenService {
	return &TokenService{
		jwtSecret: []byte(jwtSecret),
		now:       time.Now,
	}
}

// Issue signs a token for userID. Production tokens come from the auth
// service; this is used by tooling and tests.
func (s *TokenService) Issue(userID string, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     expiresAt.Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// VerifyToken verifies JWT token and returns user ID
func (s *TokenService) VerifyToken(_ context.Context, tokenString string) (string, error) {
	if tokenString == "" {
		return "", domain.ErrInvalidToken
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())

	if err != nil || !token.Valid {
		return "", domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", domain.ErrInvalidToken
	}

	raw, ok := claims["user_id"].(string)
	if !ok {
		return "", domain.ErrInvalidToken
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return "", domain.ErrInvalidToken
	}

	return userID.String(), nil
}
