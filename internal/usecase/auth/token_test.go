package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = strings.Repeat("x", 32)

func TestIssueAndVerify(t *testing.T) {
	svc := NewTokenService(secret)
	userID := uuid.NewString()

	token, expiresAt, err := svc.Issue(userID, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	got, err := svc.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestVerifyNormalizesUserID(t *testing.T) {
	svc := NewTokenService(secret)
	userID := uuid.New()

	token, _, err := svc.Issue(strings.ToUpper(userID.String()), time.Hour)
	require.NoError(t, err)

	got, err := svc.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), got)
}

func TestVerifyRejects(t *testing.T) {
	svc := NewTokenService(secret)
	other := NewTokenService(strings.Repeat("y", 32))
	userID := uuid.NewString()

	foreign, _, err := other.Issue(userID, time.Hour)
	require.NoError(t, err)

	expired, _, err := svc.Issue(userID, -time.Minute)
	require.NoError(t, err)

	notUUID, _, err := svc.Issue("42", time.Hour)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": userID}).SignedString([]byte(secret))
	require.NoError(t, err)

	numericID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 42,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	tests := map[string]string{
		"empty":        "",
		"garbage":      "not-a-jwt",
		"wrong secret": foreign,
		"expired":      expired,
		"non uuid":     notUUID,
		"missing exp":  noExp,
		"numeric id":   numericID,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.VerifyToken(context.Background(), token)
			assert.ErrorIs(t, err, domain.ErrInvalidToken)
		})
	}
}
