package security_test

import (
	"auth-service/config"
	"auth-service/internal/apperr"
	"auth-service/internal/model"
	"auth-service/internal/security"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(t *testing.T) *security.JWTService {
	t.Helper()

	svc, err := security.NewJWTService(&config.JWTConfig{
		SecretKey:       "test-secret",
		Algorithm:       "HS256",
		AccessTokenTTL:  "15m",
		RefreshTokenTTL: "168h",
	})
	require.NoError(t, err)

	return svc
}

// 1. Подписанный токен разбирается обратно с теми же claims
func TestGenerateToken_ParseRoundtrip(t *testing.T) {
	svc := newTestJWTService(t)

	token, err := svc.GenerateToken("u1", "user@example.com", security.TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	claims, err := svc.ParseToken(token, security.TokenTypeAccess)

	assert.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, security.TokenTypeAccess, claims.TokenType)
	assert.NotNil(t, claims.IssuedAt)
	assert.NotNil(t, claims.ExpiresAt)
}

// 2. Refresh токен не принимается там, где ждут access, и наоборот
func TestParseToken_TypeMismatch(t *testing.T) {
	svc := newTestJWTService(t)

	refresh, err := svc.GenerateToken("u1", "", security.TokenTypeRefresh, time.Minute)
	require.NoError(t, err)

	_, err = svc.ParseToken(refresh, security.TokenTypeAccess)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)

	access, err := svc.GenerateToken("u1", "user@example.com", security.TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	_, err = svc.ParseToken(access, security.TokenTypeRefresh)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

// 3. Испорченная подпись отклоняется
func TestParseToken_TamperedSignature(t *testing.T) {
	svc := newTestJWTService(t)

	token, err := svc.GenerateToken("u1", "user@example.com", security.TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]

	_, err = svc.ParseToken(tampered, security.TokenTypeAccess)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

// 4. Токен, подписанный другим секретом, отклоняется
func TestParseToken_WrongSecret(t *testing.T) {
	svc := newTestJWTService(t)

	other, err := security.NewJWTService(&config.JWTConfig{SecretKey: "other-secret"})
	require.NoError(t, err)

	token, err := other.GenerateToken("u1", "", security.TokenTypeAccess, time.Minute)
	require.NoError(t, err)

	_, err = svc.ParseToken(token, security.TokenTypeAccess)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

// 5. Истёкший токен отклоняется без поблажек по времени
func TestParseToken_Expired(t *testing.T) {
	svc := newTestJWTService(t)

	token, err := svc.GenerateToken("u1", "", security.TokenTypeAccess, -time.Minute)
	require.NoError(t, err)

	_, err = svc.ParseToken(token, security.TokenTypeAccess)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

// 6. exp в claims отстоит от iat ровно на настроенный TTL
func TestGenerateAccessRefreshTokens_TTLFidelity(t *testing.T) {
	svc, err := security.NewJWTService(&config.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenTTL:  "15m",
		RefreshTokenTTL: "168h",
	})
	require.NoError(t, err)

	user := &model.User{UUID: "u1", Email: "user@example.com"}
	tokens, record, err := svc.GenerateAccessRefreshTokens(user)
	require.NoError(t, err)

	accessClaims, err := svc.ParseToken(tokens.AccessToken, security.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, accessClaims.ExpiresAt.Sub(accessClaims.IssuedAt.Time))
	assert.Equal(t, int64((15 * time.Minute).Seconds()), tokens.ExpiresIn)

	refreshClaims, err := svc.ParseToken(tokens.RefreshToken, security.TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, 168*time.Hour, refreshClaims.ExpiresAt.Sub(refreshClaims.IssuedAt.Time))

	// запись для БД указывает на refresh токен по отпечатку, а не по тексту
	assert.Equal(t, "u1", record.UserUUID)
	assert.Equal(t, security.TokenFingerprint(tokens.RefreshToken), record.TokenHash)
	assert.False(t, record.Revoked)
	assert.WithinDuration(t, time.Now().UTC().Add(168*time.Hour), record.ExpiresAt, 5*time.Second)
}

// 7. Пустой секрет и не-HMAC алгоритмы отклоняются на старте
func TestNewJWTService_Validation(t *testing.T) {
	_, err := security.NewJWTService(&config.JWTConfig{SecretKey: ""})
	assert.Error(t, err)

	_, err = security.NewJWTService(&config.JWTConfig{SecretKey: "secret", Algorithm: "RS256"})
	assert.Error(t, err)

	_, err = security.NewJWTService(&config.JWTConfig{SecretKey: "secret", Algorithm: "none"})
	assert.Error(t, err)

	_, err = security.NewJWTService(&config.JWTConfig{SecretKey: "secret", AccessTokenTTL: "not-a-duration"})
	assert.Error(t, err)
}

// 8. Отпечаток детерминирован и различает токены
func TestTokenFingerprint(t *testing.T) {
	assert.Equal(t, security.TokenFingerprint("token-a"), security.TokenFingerprint("token-a"))
	assert.NotEqual(t, security.TokenFingerprint("token-a"), security.TokenFingerprint("token-b"))
	// sha256 в hex
	assert.Len(t, security.TokenFingerprint("token-a"), 64)
}

// 9. Остаток жизни токена положителен для живого и неположителен для истёкшего
func TestRemainingLifetime(t *testing.T) {
	svc := newTestJWTService(t)

	token, err := svc.GenerateToken("u1", "", security.TokenTypeAccess, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ParseToken(token, security.TokenTypeAccess)
	require.NoError(t, err)

	remaining := security.RemainingLifetime(claims)
	assert.Greater(t, remaining, 59*time.Minute)
	assert.LessOrEqual(t, remaining, time.Hour)

	assert.Equal(t, time.Duration(0), security.RemainingLifetime(nil))
	assert.Equal(t, time.Duration(0), security.RemainingLifetime(&security.Claims{}))
}
