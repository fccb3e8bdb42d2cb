package service

import (
	"context"
	"fmt"

	"filterchat/internal/config"
	apperrors "filterchat/pkg/errors"
	"filterchat/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService проверяет токены внешнего auth-сервиса и отдает requester id
type AuthService interface {
	ValidateToken(ctx context.Context, tokenString string) (string, error)
}

type authService struct {
	jwtCfg config.JWTConfig
	log    logger.Logger
}

func NewAuthService(jwtCfg config.JWTConfig, log logger.Logger) AuthService {
	return &authService{
		jwtCfg: jwtCfg,
		log:    log,
	}
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.jwtCfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.jwtCfg.Issuer))
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtCfg.Secret), nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	}

	// flask-jwt-extended кладет identity в sub, старые токены - в user_id
	userID, _ := claims["sub"].(string)
	if userID == "" {
		userID, _ = claims["user_id"].(string)
	}
	if userID == "" {
		return "", fmt.Errorf("token has no subject: %w", apperrors.ErrUnauthorized)
	}
	return userID, nil
}
