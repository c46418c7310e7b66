package repository_test

import (
	"auth-service/config"
	"auth-service/internal/apperr"
	"auth-service/internal/model"
	"auth-service/internal/repository"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDatabase(t *testing.T) (*config.Database, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &config.Database{DB: sqlx.NewDb(db, "sqlmock")}, mock
}

func testRefreshToken() *model.RefreshToken {
	return &model.RefreshToken{
		UUID:      "r1",
		UserUUID:  "u1",
		TokenHash: "fingerprint-1",
		ExpiresAt: time.Now().UTC().Add(168 * time.Hour),
		Revoked:   false,
	}
}

// 1. Сохранение записи refresh токена
func TestSaveRefreshToken_Success(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewJWTRepository(database)
	token := testRefreshToken()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO refresh_tokens`)).
		WithArgs(token.UUID, token.UserUUID, token.TokenHash, token.ExpiresAt, token.Revoked).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveRefreshToken(context.Background(), token)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 2. Ошибка БД при сохранении транслируется в ErrUnavailable
func TestSaveRefreshToken_DBError(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewJWTRepository(database)
	token := testRefreshToken()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO refresh_tokens`)).
		WillReturnError(errors.New("connection refused"))

	err := repo.SaveRefreshToken(context.Background(), token)

	assert.ErrorIs(t, err, apperr.ErrUnavailable)
}

// 3. Поиск по отпечатку возвращает запись
func TestFindByTokenHash_Found(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewJWTRepository(database)

	expiresAt := time.Now().UTC().Add(time.Hour)
	createdAt := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT uuid, user_uuid, token_hash, expires_at, revoked, created_at FROM refresh_tokens WHERE token_hash = $1`)).
		WithArgs("fingerprint-1").
		WillReturnRows(sqlmock.NewRows([]string{"uuid", "user_uuid", "token_hash", "expires_at", "revoked", "created_at"}).
			AddRow("r1", "u1", "fingerprint-1", expiresAt, false, createdAt))

	token, err := repo.FindByTokenHash(context.Background(), "fingerprint-1")

	assert.NoError(t, err)
	assert.Equal(t, "r1", token.UUID)
	assert.Equal(t, "u1", token.UserUUID)
	assert.True(t, token.IsUsable())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 4. Отсутствующая запись — nil без ошибки
func TestFindByTokenHash_NotFound(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewJWTRepository(database)

	mock.ExpectQuery(`SELECT .+ FROM refresh_tokens`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"uuid", "user_uuid", "token_hash", "expires_at", "revoked", "created_at"}))

	token, err := repo.FindByTokenHash(context.Background(), "missing")

	assert.NoError(t, err)
	assert.Nil(t, token)
}

// 5. Отзыв по отпечатку: условие revoked = FALSE делает операцию идемпотентной
func TestRevokeByTokenHash_Idempotent(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewJWTRepository(database)

	query := regexp.QuoteMeta(`UPDATE refresh_tokens SET revoked = TRUE WHERE token_hash = $1 AND revoked = FALSE`)

	mock.ExpectExec(query).WithArgs("fingerprint-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs("fingerprint-1").WillReturnResult(sqlmock.NewResult(0, 0))

	first, err := repo.RevokeByTokenHash(context.Background(), "fingerprint-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), first)

	second, err := repo.RevokeByTokenHash(context.Background(), "fingerprint-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), second)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// 6. Отзыв всех токенов пользователя возвращает число затронутых строк
func TestRevokeAllByUser(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewJWTRepository(database)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE refresh_tokens SET revoked = TRUE WHERE user_uuid = $1 AND revoked = FALSE`)).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	count, err := repo.RevokeAllByUser(context.Background(), "u1")

	assert.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

// 7. Ротация-победитель: UPDATE задел строку, INSERT и commit проходят
func TestRotateRefreshToken_Winner(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewJWTRepository(database)
	next := testRefreshToken()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE refresh_tokens SET revoked = TRUE WHERE token_hash = $1 AND revoked = FALSE`)).
		WithArgs("old-fingerprint").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO refresh_tokens`)).
		WithArgs(next.UUID, next.UserUUID, next.TokenHash, next.ExpiresAt, next.Revoked).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rotated, err := repo.RotateRefreshToken(context.Background(), "old-fingerprint", next)

	assert.NoError(t, err)
	assert.True(t, rotated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 8. Ротация-проигравший: UPDATE задел 0 строк, INSERT не выполняется,
// транзакция откатывается
func TestRotateRefreshToken_Loser(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewJWTRepository(database)
	next := testRefreshToken()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE refresh_tokens SET revoked = TRUE WHERE token_hash = $1 AND revoked = FALSE`)).
		WithArgs("old-fingerprint").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	rotated, err := repo.RotateRefreshToken(context.Background(), "old-fingerprint", next)

	assert.NoError(t, err)
	assert.False(t, rotated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 9. Ошибка INSERT откатывает и отзыв старого токена
func TestRotateRefreshToken_InsertErrorRollsBack(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewJWTRepository(database)
	next := testRefreshToken()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE refresh_tokens`)).
		WithArgs("old-fingerprint").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO refresh_tokens`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	rotated, err := repo.RotateRefreshToken(context.Background(), "old-fingerprint", next)

	assert.ErrorIs(t, err, apperr.ErrUnavailable)
	assert.False(t, rotated)
	assert.NoError(t, mock.ExpectationsWereMet())
}
