package service

import (
	"context"
	"testing"
	"time"

	"filterchat/internal/config"
	apperrors "filterchat/pkg/errors"
	"filterchat/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthService_ValidateToken(t *testing.T) {
	auth := NewAuthService(config.JWTConfig{Secret: "s3cret", Issuer: "filterchat-auth"}, logger.Nop())
	ctx := context.Background()
	exp := time.Now().Add(time.Hour).Unix()

	userID, err := auth.ValidateToken(ctx, signToken(t, "s3cret", jwt.MapClaims{"sub": "u1", "iss": "filterchat-auth", "exp": exp}))
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	userID, err = auth.ValidateToken(ctx, signToken(t, "s3cret", jwt.MapClaims{"user_id": "u2", "iss": "filterchat-auth", "exp": exp}))
	require.NoError(t, err)
	assert.Equal(t, "u2", userID)

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", signToken(t, "other", jwt.MapClaims{"sub": "u1", "iss": "filterchat-auth", "exp": exp})},
		{"expired", signToken(t, "s3cret", jwt.MapClaims{"sub": "u1", "iss": "filterchat-auth", "exp": time.Now().Add(-time.Hour).Unix()})},
		{"no expiry", signToken(t, "s3cret", jwt.MapClaims{"sub": "u1", "iss": "filterchat-auth"})},
		{"wrong issuer", signToken(t, "s3cret", jwt.MapClaims{"sub": "u1", "iss": "someone", "exp": exp})},
		{"no subject", signToken(t, "s3cret", jwt.MapClaims{"iss": "filterchat-auth", "exp": exp})},
		{"garbage", "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.ValidateToken(ctx, tt.token)
			assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
		})
	}
}
