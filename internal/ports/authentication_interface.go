package ports

import (
	"auth-service/internal/model"
	"auth-service/internal/security"
	"context"
	"io"
)

type AuthenticationService interface {
	Register(ctx context.Context, email, password, fullName string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokensPair, error)
	Logout(ctx context.Context, userUUID, accessToken string) (bool, error)
	Authenticate(ctx context.Context, accessToken string) (*security.Claims, error)
	GetUser(ctx context.Context, userUUID string) (*model.User, error)
	Deactivate(ctx context.Context, userUUID string) error
	UpdateProfilePicture(ctx context.Context, userUUID string, body io.Reader, filename, contentType string) (*model.User, error)
}
