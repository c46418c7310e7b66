package model

import "time"

// RefreshToken : строка таблицы refresh_tokens, одна запись на выданный refresh-токен.
// В БД хранится только fingerprint токена (sha256), сам токен клиенту.
type RefreshToken struct {
	UUID      string    `db:"uuid"`
	UserUUID  string    `db:"user_uuid"`
	TokenHash string    `db:"token_hash"`
	ExpiresAt time.Time `db:"expires_at"`
	Revoked   bool      `db:"revoked"`
	CreatedAt time.Time `db:"created_at"`
}

// IsUsable : запись пригодна для обмена, пока не отозвана и не истекла
func (t *RefreshToken) IsUsable() bool {
	return t != nil && !t.Revoked && time.Now().UTC().Before(t.ExpiresAt)
}

// TokensPair содержит пару access и refresh токенов
// swagger:model
type TokensPair struct {
	// Access токен (JWT)
	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	AccessToken string `json:"accessToken"`

	// Refresh токен (JWT, для получения новой пары)
	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	RefreshToken string `json:"refreshToken"`

	// Время жизни access токена в секундах
	// example: 900
	ExpiresIn int64 `json:"expiresIn"`
}

// LoginResult : результат успешной аутентификации
type LoginResult struct {
	Tokens *TokensPair
	User   *User
}
