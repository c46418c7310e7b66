package ports

import (
	"auth-service/internal/model"
	"context"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	FindByUUID(ctx context.Context, uuid string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfilePicture(ctx context.Context, uuid string, pictureURL string) (*model.User, error)
	SetActive(ctx context.Context, uuid string, active bool) error
}
