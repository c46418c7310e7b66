package security_test

import (
	"auth-service/internal/security"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// 1. Хэш проверяется исходным паролем
func TestHashPassword_Roundtrip(t *testing.T) {
	hash, err := security.HashPassword("Correct1Password")

	assert.NoError(t, err)
	assert.True(t, security.CheckPassword("Correct1Password", hash))
}

// 2. Неверный пароль не проходит проверку
func TestCheckPassword_WrongPassword(t *testing.T) {
	hash, err := security.HashPassword("Correct1Password")

	assert.NoError(t, err)
	assert.False(t, security.CheckPassword("Wrong1Password", hash))
}

// 3. Формат хэша — PHC-строка argon2id с параметрами
func TestHashPassword_PHCFormat(t *testing.T) {
	hash, err := security.HashPassword("Correct1Password")

	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m="))

	parts := strings.Split(hash, "$")
	// "", argon2id, v=19, параметры, соль, хэш
	assert.Len(t, parts, 6)
}

// 4. Одинаковые пароли дают разные хэши за счёт случайной соли
func TestHashPassword_UniqueSalt(t *testing.T) {
	first, err := security.HashPassword("Correct1Password")
	assert.NoError(t, err)

	second, err := security.HashPassword("Correct1Password")
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, security.CheckPassword("Correct1Password", first))
	assert.True(t, security.CheckPassword("Correct1Password", second))
}

// 5. Повреждённый или чужой хэш не валит проверку, а просто не проходит
func TestCheckPassword_MalformedHash(t *testing.T) {
	malformed := []string{
		"",
		"not-a-hash",
		"$argon2id$v=19$m=65536,t=1,p=4$короткая",
		"$argon2i$v=19$m=65536,t=1,p=4$c29tZXNhbHQ$c29tZWhhc2g",
		"$argon2id$v=19$m=abc,t=1,p=4$c29tZXNhbHQ$c29tZWhhc2g",
		"$2a$10$completely.different.scheme",
	}

	for _, hash := range malformed {
		assert.False(t, security.CheckPassword("Correct1Password", hash), "хэш: %q", hash)
	}
}
