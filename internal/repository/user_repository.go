package repository

import (
	"auth-service/config"
	"auth-service/internal/apperr"
	"auth-service/internal/model"
	"auth-service/internal/util"
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// код ошибки postgres для нарушения уникальности
const pgUniqueViolation = "23505"

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

// CreateUser : сохраняет нового пользователя.
// Уникальность email обеспечивает индекс в БД, нарушение транслируется в ErrAlreadyExists
func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	query := `
	INSERT INTO users (uuid, email, password_hash, full_name, is_active, is_verified)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING uuid, email, password_hash, full_name, profile_picture_url, is_active, is_verified, created_at, updated_at
	`

	createdUser := &model.User{}
	err := r.DB.QueryRowxContext(ctx, query,
		user.UUID,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.IsActive,
		user.IsVerified,
	).StructScan(createdUser)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return nil, apperr.ErrAlreadyExists
		}
		return nil, util.LogError("[UserRepo] ошибка вставки данных в БД", errors.Join(apperr.ErrUnavailable, err))
	}

	return createdUser, nil
}

// FindByUUID : ищет пользователя по UUID.
// Возвращает nil без ошибки, если пользователя нет
func (r *UserRepository) FindByUUID(ctx context.Context, uuid string) (*model.User, error) {
	query := `SELECT uuid, email, password_hash, full_name, profile_picture_url, is_active, is_verified, created_at, updated_at
				FROM users WHERE uuid = $1`
	var user model.User
	err := r.DB.GetContext(ctx, &user, query, uuid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, util.LogError("[UserRepo] не удалось найти пользователя в БД", errors.Join(apperr.ErrUnavailable, err))
	}
	return &user, nil
}

// FindByEmail : ищет пользователя по email без учёта регистра
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT uuid, email, password_hash, full_name, profile_picture_url, is_active, is_verified, created_at, updated_at
				FROM users WHERE LOWER(email) = LOWER($1)`
	var user model.User
	err := r.DB.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, util.LogError("[UserRepo] не удалось найти пользователя по email", errors.Join(apperr.ErrUnavailable, err))
	}
	return &user, nil
}

// UpdateProfilePicture : сохраняет ссылку на аватар и возвращает обновлённую запись
func (r *UserRepository) UpdateProfilePicture(ctx context.Context, uuid string, pictureURL string) (*model.User, error) {
	query := `
		UPDATE users
		SET profile_picture_url = $2, updated_at = NOW()
		WHERE uuid = $1
		RETURNING uuid, email, password_hash, full_name, profile_picture_url, is_active, is_verified, created_at, updated_at
	`

	updatedUser := &model.User{}
	err := r.DB.QueryRowxContext(ctx, query, uuid, pictureURL).StructScan(updatedUser)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, util.LogError("[UserRepo] не удалось обновить аватар", errors.Join(apperr.ErrUnavailable, err))
	}

	return updatedUser, nil
}

// SetActive : включает или отключает учётную запись
func (r *UserRepository) SetActive(ctx context.Context, uuid string, active bool) error {
	query := `UPDATE users SET is_active = $2, updated_at = NOW() WHERE uuid = $1`

	result, err := r.DB.ExecContext(ctx, query, uuid, active)
	if err != nil {
		return util.LogError("[UserRepo] не удалось изменить статус пользователя", errors.Join(apperr.ErrUnavailable, err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("[UserRepo] не удалось проверить статус пользователя", errors.Join(apperr.ErrUnavailable, err))
	}
	if rowsAffected == 0 {
		return apperr.ErrNotFound
	}

	return nil
}
