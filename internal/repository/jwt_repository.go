package repository

import (
	"auth-service/config"
	"auth-service/internal/apperr"
	"auth-service/internal/model"
	"auth-service/internal/util"
	"context"
	"database/sql"
	"errors"
)

type JWTRepository struct {
	*config.Database
}

func NewJWTRepository(database *config.Database) *JWTRepository {
	return &JWTRepository{database}
}

// SaveRefreshToken сохраняет запись refresh-токена в базе данных
// Возвращает ошибку, если операция не удалась
func (r *JWTRepository) SaveRefreshToken(ctx context.Context, refreshToken *model.RefreshToken) error {
	query := `INSERT INTO refresh_tokens (uuid, user_uuid, token_hash, expires_at, revoked)
				VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.DB.ExecContext(ctx, query,
		refreshToken.UUID,
		refreshToken.UserUUID,
		refreshToken.TokenHash,
		refreshToken.ExpiresAt,
		refreshToken.Revoked,
	)

	if err != nil {
		return util.LogError("ошибка вставки refresh токена в БД", errors.Join(apperr.ErrUnavailable, err))
	}

	return nil
}

// FindByTokenHash ищет запись refresh-токена по отпечатку токена
// Возвращает nil без ошибки, если записи нет
func (r *JWTRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	query := `SELECT uuid, user_uuid, token_hash, expires_at, revoked, created_at FROM refresh_tokens WHERE token_hash = $1`

	refreshToken := &model.RefreshToken{}

	err := r.DB.QueryRowContext(ctx, query, tokenHash).Scan(
		&refreshToken.UUID,
		&refreshToken.UserUUID,
		&refreshToken.TokenHash,
		&refreshToken.ExpiresAt,
		&refreshToken.Revoked,
		&refreshToken.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, util.LogError("ошибка при выполнении запроса", errors.Join(apperr.ErrUnavailable, err))
	}

	return refreshToken, nil
}

// RevokeByTokenHash изменяет поле revoked, делая его равным true.
// Идемпотентна: уже отозванный или отсутствующий токен даёт 0 строк без ошибки.
// Возвращает количество фактически отозванных строк
func (r *JWTRepository) RevokeByTokenHash(ctx context.Context, tokenHash string) (int64, error) {
	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE token_hash = $1 AND revoked = FALSE`

	result, err := r.DB.ExecContext(ctx, query, tokenHash)
	if err != nil {
		return 0, util.LogError("не удалось отозвать refresh токен", errors.Join(apperr.ErrUnavailable, err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, util.LogError("не удалось проверить, отозван ли токен", errors.Join(apperr.ErrUnavailable, err))
	}

	return rowsAffected, nil
}

// RevokeAllByUser отзывает все неотозванные refresh-токены пользователя.
// Возвращает количество фактически отозванных строк
func (r *JWTRepository) RevokeAllByUser(ctx context.Context, userUUID string) (int64, error) {
	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE user_uuid = $1 AND revoked = FALSE`

	result, err := r.DB.ExecContext(ctx, query, userUUID)
	if err != nil {
		return 0, util.LogError("не удалось отозвать refresh токены пользователя", errors.Join(apperr.ErrUnavailable, err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, util.LogError("не удалось проверить количество отозванных токенов", errors.Join(apperr.ErrUnavailable, err))
	}

	return rowsAffected, nil
}

// RotateRefreshToken выполняет ротацию в одной транзакции:
// условный UPDATE старой записи (только если revoked = FALSE) и INSERT замены.
// Из двух конкурентных вызовов с одним токеном UPDATE пройдёт ровно у одного,
// проигравший получает false. Отмена вызова до commit откатывает обе записи разом.
func (r *JWTRepository) RotateRefreshToken(ctx context.Context, oldTokenHash string, next *model.RefreshToken) (bool, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return false, util.LogError("не удалось начать транзакцию", errors.Join(apperr.ErrUnavailable, err))
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE token_hash = $1 AND revoked = FALSE`,
		oldTokenHash,
	)
	if err != nil {
		return false, util.LogError("не удалось отозвать старый refresh токен", errors.Join(apperr.ErrUnavailable, err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, util.LogError("не удалось проверить, отозван ли старый токен", errors.Join(apperr.ErrUnavailable, err))
	}
	if rowsAffected == 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO refresh_tokens (uuid, user_uuid, token_hash, expires_at, revoked) VALUES ($1, $2, $3, $4, $5)`,
		next.UUID,
		next.UserUUID,
		next.TokenHash,
		next.ExpiresAt,
		next.Revoked,
	)
	if err != nil {
		return false, util.LogError("не удалось сохранить новый refresh токен", errors.Join(apperr.ErrUnavailable, err))
	}

	if err := tx.Commit(); err != nil {
		return false, util.LogError("не удалось зафиксировать ротацию токена", errors.Join(apperr.ErrUnavailable, err))
	}

	return true, nil
}
