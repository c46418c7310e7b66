package requestresponse

import (
	"auth-service/internal/model"
	"time"
)

// UserResponse : публичное представление пользователя (без хэша пароля)
type UserResponse struct {
	UUID              string  `json:"uuid" example:"123e4567-e89b-12d3-a456-426614174000"`
	Email             string  `json:"email" example:"user@example.com"`
	FullName          string  `json:"full_name" example:"Ivan Ivanov"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`
	IsActive          bool    `json:"is_active" example:"true"`
	IsVerified        bool    `json:"is_verified" example:"false"`
	CreatedAt         string  `json:"created_at" example:"2025-08-23T12:34:56Z"`
	UpdatedAt         string  `json:"updated_at" example:"2025-08-23T12:34:56Z"`
}

// UserResponseFromModel : конвертирует model.User в UserResponse
func UserResponseFromModel(user *model.User) UserResponse {
	return UserResponse{
		UUID:              user.UUID,
		Email:             user.Email,
		FullName:          user.FullName,
		ProfilePictureURL: user.ProfilePictureURL,
		IsActive:          user.IsActive,
		IsVerified:        user.IsVerified,
		CreatedAt:         user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         user.UpdatedAt.Format(time.RFC3339),
	}
}

// ErrorDetail : детальная информация об ошибке
type ErrorDetail struct {
	Code int    `json:"code" example:"400"`
	Text string `json:"text" example:"for example: invalid login or password"`
}

// ErrorResponse : стандартная структура ошибки
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
