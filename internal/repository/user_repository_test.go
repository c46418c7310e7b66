package repository_test

import (
	"auth-service/internal/apperr"
	"auth-service/internal/model"
	"auth-service/internal/repository"
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

var userColumns = []string{
	"uuid", "email", "password_hash", "full_name", "profile_picture_url",
	"is_active", "is_verified", "created_at", "updated_at",
}

func userRow(user *model.User) *sqlmock.Rows {
	return sqlmock.NewRows(userColumns).AddRow(
		user.UUID, user.Email, user.PasswordHash, user.FullName, user.ProfilePictureURL,
		user.IsActive, user.IsVerified, user.CreatedAt, user.UpdatedAt,
	)
}

func testUser() *model.User {
	now := time.Now().UTC()
	return &model.User{
		UUID:         "u1",
		Email:        "user@example.com",
		PasswordHash: "$argon2id$hash",
		FullName:     "Test User",
		IsActive:     true,
		IsVerified:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// 1. Создание пользователя возвращает строку из RETURNING
func TestCreateUser_Success(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(database)
	user := testUser()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs(user.UUID, user.Email, user.PasswordHash, user.FullName, user.IsActive, user.IsVerified).
		WillReturnRows(userRow(user))

	created, err := repo.CreateUser(context.Background(), user)

	assert.NoError(t, err)
	assert.Equal(t, user.UUID, created.UUID)
	assert.Equal(t, user.Email, created.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 2. Нарушение уникальности email транслируется в ErrAlreadyExists
func TestCreateUser_DuplicateEmail(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(database)
	user := testUser()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_lower_idx"})

	created, err := repo.CreateUser(context.Background(), user)

	assert.Nil(t, created)
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)
}

// 3. Поиск по email без учёта регистра
func TestFindByEmail_Found(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(database)
	user := testUser()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE LOWER(email) = LOWER($1)`)).
		WithArgs("User@Example.COM").
		WillReturnRows(userRow(user))

	found, err := repo.FindByEmail(context.Background(), "User@Example.COM")

	assert.NoError(t, err)
	assert.Equal(t, "u1", found.UUID)
}

// 4. Отсутствующий пользователь — nil без ошибки
func TestFindByEmail_NotFound(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(database)

	mock.ExpectQuery(`SELECT .+ FROM users`).
		WithArgs("missing@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	found, err := repo.FindByEmail(context.Background(), "missing@example.com")

	assert.NoError(t, err)
	assert.Nil(t, found)
}

// 5. Поиск по UUID
func TestFindByUUID_Found(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(database)
	user := testUser()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE uuid = $1`)).
		WithArgs("u1").
		WillReturnRows(userRow(user))

	found, err := repo.FindByUUID(context.Background(), "u1")

	assert.NoError(t, err)
	assert.Equal(t, "user@example.com", found.Email)
}

// 6. Обновление аватара возвращает обновлённую запись
func TestUpdateProfilePicture_Success(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(database)

	user := testUser()
	pictureURL := "http://localhost:9000/user-uploads/profile-pictures/u1/avatar.png"
	user.ProfilePictureURL = &pictureURL

	mock.ExpectQuery(regexp.QuoteMeta(`SET profile_picture_url = $2`)).
		WithArgs("u1", pictureURL).
		WillReturnRows(userRow(user))

	updated, err := repo.UpdateProfilePicture(context.Background(), "u1", pictureURL)

	assert.NoError(t, err)
	assert.Equal(t, pictureURL, *updated.ProfilePictureURL)
}

// 7. Обновление аватара несуществующего пользователя — ErrNotFound
func TestUpdateProfilePicture_NotFound(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(database)

	mock.ExpectQuery(regexp.QuoteMeta(`SET profile_picture_url = $2`)).
		WithArgs("missing", "url").
		WillReturnRows(sqlmock.NewRows(userColumns))

	updated, err := repo.UpdateProfilePicture(context.Background(), "missing", "url")

	assert.Nil(t, updated)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// 8. Деактивация несуществующего пользователя — ErrNotFound
func TestSetActive_NotFound(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(database)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET is_active = $2`)).
		WithArgs("missing", false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetActive(context.Background(), "missing", false)

	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// 9. Деактивация существующего пользователя
func TestSetActive_Success(t *testing.T) {
	database, mock := newMockDatabase(t)
	repo := repository.NewUserRepository(database)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET is_active = $2`)).
		WithArgs("u1", false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetActive(context.Background(), "u1", false)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
