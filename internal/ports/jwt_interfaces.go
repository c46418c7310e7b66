package ports

import (
	"auth-service/internal/model"
	"auth-service/internal/security"
	"context"
	"time"
)

type JWTRepositoryInterface interface {
	SaveRefreshToken(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) (int64, error)
	RevokeAllByUser(ctx context.Context, userUUID string) (int64, error)
	// RotateRefreshToken атомарно помечает старый токен отозванным и сохраняет замену.
	// Возвращает false, если старый токен уже был отозван кем-то другим.
	RotateRefreshToken(ctx context.Context, oldTokenHash string, next *model.RefreshToken) (bool, error)
}

type JWTServiceInterface interface {
	GenerateToken(userUUID, email, tokenType string, ttl time.Duration) (string, error)
	ParseToken(tokenStr, expectedType string) (*security.Claims, error)
	GenerateAccessRefreshTokens(user *model.User) (*model.TokensPair, *model.RefreshToken, error)
	AccessTokenTTL() time.Duration
	RefreshTokenTTL() time.Duration
}
