package security

import (
	"auth-service/config"
	"auth-service/internal/apperr"
	"auth-service/internal/model"
	"auth-service/internal/util"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const (
	UserContextKey        contextKey = "user"
	AccessTokenContextKey contextKey = "access_token"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

const (
	defaultAlgorithm       = "HS256"
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
)

type Claims struct {
	Email     string `json:"email,omitempty"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

type JWTService struct {
	secretKey  []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTService : создаёт кодек токенов из конфигурации.
// Алгоритм и TTL валидируются один раз на старте, а не на каждый вызов.
func NewJWTService(cfg *config.JWTConfig) (*JWTService, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("jwt: секретный ключ не задан")
	}

	algorithm := cfg.Algorithm
	if algorithm == "" {
		algorithm = defaultAlgorithm
	}
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("jwt: неизвестный алгоритм подписи %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("jwt: алгоритм %q не работает с общим секретом", algorithm)
	}

	accessTTL := defaultAccessTokenTTL
	if cfg.AccessTokenTTL != "" {
		parsed, err := time.ParseDuration(cfg.AccessTokenTTL)
		if err != nil {
			return nil, util.LogError("jwt: ошибка парсинга access_token_ttl", err)
		}
		accessTTL = parsed
	}

	refreshTTL := defaultRefreshTokenTTL
	if cfg.RefreshTokenTTL != "" {
		parsed, err := time.ParseDuration(cfg.RefreshTokenTTL)
		if err != nil {
			return nil, util.LogError("jwt: ошибка парсинга refresh_token_ttl", err)
		}
		refreshTTL = parsed
	}

	return &JWTService{
		secretKey:  []byte(cfg.SecretKey),
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

func (service *JWTService) AccessTokenTTL() time.Duration {
	return service.accessTTL
}

func (service *JWTService) RefreshTokenTTL() time.Duration {
	return service.refreshTTL
}

// GenerateToken : подписывает токен заданного типа с claims {sub, email, iat, exp, type}
func (service *JWTService) GenerateToken(userUUID, email, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userUUID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	jwtToken := jwt.NewWithClaims(service.method, claims)
	signed, err := jwtToken.SignedString(service.secretKey)
	if err != nil {
		return "", util.LogError("ошибка подписи токена", err)
	}

	return signed, nil
}

// ParseToken : проверяет подпись, срок действия и тип токена.
// На любую проблему возвращает apperr.ErrInvalidToken без расшифровки причины
// и без частично разобранных claims.
func (service *JWTService) ParseToken(tokenStr, expectedType string) (*Claims, error) {
	var claims = &Claims{}

	jwtToken, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != service.method.Alg() {
			return nil, fmt.Errorf("неверный способ подписи токена: %v", token.Header["alg"])
		}
		return service.secretKey, nil
	})

	if err != nil || !jwtToken.Valid {
		return nil, apperr.ErrInvalidToken
	}

	if claims.TokenType != expectedType {
		return nil, apperr.ErrInvalidToken
	}

	return claims, nil
}

// GenerateAccessRefreshTokens : выпускает пару токенов для пользователя
// и запись refresh-токена для сохранения в БД
func (service *JWTService) GenerateAccessRefreshTokens(user *model.User) (*model.TokensPair, *model.RefreshToken, error) {
	accessToken, err := service.GenerateToken(user.UUID, user.Email, TokenTypeAccess, service.accessTTL)
	if err != nil {
		return nil, nil, util.LogError("ошибка генерации access токена", err)
	}

	refreshToken, err := service.GenerateToken(user.UUID, "", TokenTypeRefresh, service.refreshTTL)
	if err != nil {
		return nil, nil, util.LogError("ошибка генерации refresh токена", err)
	}

	record := &model.RefreshToken{
		UUID:      uuid.New().String(),
		UserUUID:  user.UUID,
		TokenHash: TokenFingerprint(refreshToken),
		ExpiresAt: time.Now().UTC().Add(service.refreshTTL),
		Revoked:   false,
	}

	return &model.TokensPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(service.accessTTL.Seconds()),
	}, record, nil
}

// RemainingLifetime : сколько токену осталось жить по его claims.
// Используется как TTL записи в чёрном списке.
func RemainingLifetime(claims *Claims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	return time.Until(claims.ExpiresAt.Time)
}

// TokenFingerprint : детерминированный отпечаток токена (sha256, hex).
// По нему токен ищется в refresh_tokens и в чёрном списке, сам токен нигде не хранится.
func TokenFingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Authenticator : минимальный контракт аутентификации для middleware.
// Реализуется session-менеджером: подпись + чёрный список, без похода в БД.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*Claims, error)
}

func JWTMiddleware(authenticator Authenticator) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(handleAuthentication(authenticator, next))
	}
}

func handleAuthentication(authenticator Authenticator, next http.Handler) func(writer http.ResponseWriter, request *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		authorizationHeader := request.Header.Get("Authorization")
		if !strings.HasPrefix(authorizationHeader, "Bearer ") {
			http.Error(writer, "unauthorized", http.StatusUnauthorized)
			return
		}

		token := strings.TrimPrefix(authorizationHeader, "Bearer ")

		claims, err := authenticator.Authenticate(request.Context(), token)
		if err != nil {
			http.Error(writer, "невалидный токен", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(request.Context(), UserContextKey, claims)
		ctx = context.WithValue(ctx, AccessTokenContextKey, token)
		next.ServeHTTP(writer, request.WithContext(ctx))
	}
}

func GetClaimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(UserContextKey).(*Claims)
	if !ok || claims == nil {
		return nil, fmt.Errorf("пользователь не авторизован")
	}
	return claims, nil
}

func GetAccessTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(AccessTokenContextKey).(string)
	return token
}
