package service

import (
	"auth-service/internal/apperr"
	"auth-service/internal/model"
	"auth-service/internal/ports"
	"auth-service/internal/security"
	"auth-service/internal/util"
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

type AuthenticationService struct {
	userRepository ports.UserRepository
	jwtRepository  ports.JWTRepositoryInterface
	jwtService     ports.JWTServiceInterface
	blacklist      ports.BlacklistCache
	s3Storage      ports.S3Storage
}

func NewAuthenticationService(
	userRepository ports.UserRepository,
	jwtRepository ports.JWTRepositoryInterface,
	jwtService ports.JWTServiceInterface,
	blacklist ports.BlacklistCache,
	s3Storage ports.S3Storage,
) *AuthenticationService {
	return &AuthenticationService{
		userRepository: userRepository,
		jwtRepository:  jwtRepository,
		jwtService:     jwtService,
		blacklist:      blacklist,
		s3Storage:      s3Storage,
	}
}

// Register регистрирует нового пользователя.
// Email сравнивается без учёта регистра; занятый email даёт apperr.ErrAlreadyExists.
//
// Возвращает:
//   - созданного пользователя (без хэша пароля в JSON-представлении)
//   - ошибку, если пользователь уже существует или БД недоступна
func (s *AuthenticationService) Register(ctx context.Context, email, password, fullName string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || fullName == "" {
		return nil, fmt.Errorf("%w: email и full_name обязательны", apperr.ErrValidation)
	}

	if err := validatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	existing, err := s.userRepository.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка поиска пользователя: %w", err)
	}
	if existing != nil {
		return nil, apperr.ErrAlreadyExists
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] не удалось создать хэш пароля: %w", err)
	}

	user := &model.User{
		UUID:         uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		IsActive:     true,
		IsVerified:   false,
	}

	// гонка двух одновременных регистраций разрешается уникальным индексом в БД
	created, err := s.userRepository.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Login аутентифицирует пользователя и выдаёт пару токенов.
// Неизвестный email, неверный пароль и отключённая учётная запись дают одну и ту же
// ошибку apperr.ErrInvalidCredentials, чтобы по ответу нельзя было перечислять аккаунты.
//
// Возвращает:
//   - model.LoginResult с парой токенов, временем жизни access токена и пользователем
//   - ошибку, если аутентификация не удалась
func (s *AuthenticationService) Login(ctx context.Context, email, password string) (*model.LoginResult, error) {
	user, err := s.userRepository.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка поиска пользователя: %w", err)
	}
	if user == nil {
		return nil, apperr.ErrInvalidCredentials
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, apperr.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, apperr.ErrInvalidCredentials
	}

	tokens, refreshToken, err := s.jwtService.GenerateAccessRefreshTokens(user)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка генерации токенов: %w", err)
	}

	if err := s.jwtRepository.SaveRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка сохранения refresh токена: %w", err)
	}

	return &model.LoginResult{
		Tokens: tokens,
		User:   user,
	}, nil
}

// Refresh обменивает refresh-токен на новую пару токенов.
// Выполняет следующие требования к операции:
//  1. Предъявленный токен должен пройти проверку подписи и иметь тип "refresh".
//  2. В БД должна существовать пригодная запись: не отозванная и не истёкшая.
//  3. Ротация атомарна: отзыв старой записи и сохранение новой выполняются одной
//     транзакцией, из конкурентных вызовов с одним токеном выигрывает ровно один,
//     остальные получают apperr.ErrInvalidToken.
//
// После успешного обмена старый refresh-токен навсегда непригоден, даже при повторе.
//
// Возвращает:
//   - model.TokensPair
//   - ошибку, если не удалось обновить токены
func (s *AuthenticationService) Refresh(ctx context.Context, refreshToken string) (*model.TokensPair, error) {
	if _, err := s.jwtService.ParseToken(refreshToken, security.TokenTypeRefresh); err != nil {
		return nil, apperr.ErrInvalidToken
	}

	storedRefreshToken, err := s.jwtRepository.FindByTokenHash(ctx, security.TokenFingerprint(refreshToken))
	if err != nil {
		return nil, util.LogError("[AuthService] не удалось найти refresh токен", err)
	}
	if !storedRefreshToken.IsUsable() {
		return nil, apperr.ErrInvalidToken
	}

	user, err := s.userRepository.FindByUUID(ctx, storedRefreshToken.UserUUID)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка поиска пользователя: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, apperr.ErrInvalidToken
	}

	tokensPair, newRefreshToken, err := s.jwtService.GenerateAccessRefreshTokens(user)
	if err != nil {
		return nil, util.LogError("[AuthService] ошибка генерации токенов", err)
	}

	rotated, err := s.jwtRepository.RotateRefreshToken(ctx, storedRefreshToken.TokenHash, newRefreshToken)
	if err != nil {
		return nil, util.LogError("[AuthService] не удалось выполнить ротацию токена", err)
	}
	if !rotated {
		// проигравший конкурентной ротации
		return nil, apperr.ErrInvalidToken
	}

	return tokensPair, nil
}

// Logout завершает все сессии пользователя.
// Отзывает все его refresh-токены; переданный access-токен попадает в чёрный список
// на остаток своей жизни, так что им нельзя пользоваться до естественного истечения.
// Недоступность чёрного списка не считается ошибкой выхода.
//
// Возвращает:
//   - true, если был отозван хотя бы один refresh-токен (повторный выход даёт false)
//   - ошибку, если БД недоступна
func (s *AuthenticationService) Logout(ctx context.Context, userUUID, accessToken string) (bool, error) {
	count, err := s.jwtRepository.RevokeAllByUser(ctx, userUUID)
	if err != nil {
		return false, fmt.Errorf("[AuthService] не удалось отозвать токены: %w", err)
	}

	if accessToken != "" {
		if claims, parseErr := s.jwtService.ParseToken(accessToken, security.TokenTypeAccess); parseErr == nil {
			if denyErr := s.blacklist.Deny(ctx, accessToken, security.RemainingLifetime(claims)); denyErr != nil {
				log.Printf("[AuthService] не удалось добавить access токен в чёрный список: %v", denyErr)
			}
		}
	}

	return count > 0, nil
}

// Authenticate проверяет access-токен на каждом защищённом запросе.
// Только подпись и чёрный список, без похода в БД.
//
// Возвращает:
//   - claims токена (subject — UUID пользователя)
//   - apperr.ErrInvalidToken, если токен невалиден или отозван
func (s *AuthenticationService) Authenticate(ctx context.Context, accessToken string) (*security.Claims, error) {
	claims, err := s.jwtService.ParseToken(accessToken, security.TokenTypeAccess)
	if err != nil {
		return nil, apperr.ErrInvalidToken
	}

	if s.blacklist.IsDenied(ctx, accessToken) {
		return nil, apperr.ErrInvalidToken
	}

	return claims, nil
}

// GetUser возвращает пользователя по UUID или apperr.ErrNotFound
func (s *AuthenticationService) GetUser(ctx context.Context, userUUID string) (*model.User, error) {
	user, err := s.userRepository.FindByUUID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка поиска пользователя: %w", err)
	}
	if user == nil {
		return nil, apperr.ErrNotFound
	}

	return user, nil
}

// Deactivate отключает учётную запись.
// Каскадов в БД нет: отзыв всех refresh-токенов выполняется здесь же явно,
// чтобы отключённый пользователь не мог продлить сессию
func (s *AuthenticationService) Deactivate(ctx context.Context, userUUID string) error {
	if err := s.userRepository.SetActive(ctx, userUUID, false); err != nil {
		return err
	}

	count, err := s.jwtRepository.RevokeAllByUser(ctx, userUUID)
	if err != nil {
		return fmt.Errorf("[AuthService] не удалось отозвать токены: %w", err)
	}
	log.Printf("[AuthService] пользователь %s отключён, отозвано refresh токенов: %d", userUUID, count)

	return nil
}

// UpdateProfilePicture загружает новый аватар в S3 и сохраняет ссылку.
// Старый объект удаляется; ошибки удаления не прерывают загрузку
func (s *AuthenticationService) UpdateProfilePicture(ctx context.Context, userUUID string, body io.Reader, filename, contentType string) (*model.User, error) {
	user, err := s.userRepository.FindByUUID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] ошибка поиска пользователя: %w", err)
	}
	if user == nil {
		return nil, apperr.ErrNotFound
	}

	if user.ProfilePictureURL != nil {
		if key, ok := s.s3Storage.KeyFromURL(*user.ProfilePictureURL); ok {
			if err := s.s3Storage.DeleteObject(ctx, key); err != nil {
				log.Printf("[AuthService] не удалось удалить старый аватар: %v", err)
			}
		}
	}

	key := profilePictureKey(userUUID, filename)
	pictureURL, err := s.s3Storage.UploadObject(ctx, key, body, contentType)
	if err != nil {
		return nil, fmt.Errorf("[AuthService] не удалось загрузить аватар: %w", err)
	}

	updated, err := s.userRepository.UpdateProfilePicture(ctx, userUUID, pictureURL)
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// profilePictureKey : ключ вида profile-pictures/<user>/<время>_<случайный суффикс>.<ext>
func profilePictureKey(userUUID, filename string) string {
	extension := filepath.Ext(filename)
	if extension == "" {
		extension = ".jpg"
	}
	timestamp := time.Now().UTC().Format("20060102_150405")
	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("profile-pictures/%s/%s_%s%s", userUUID, timestamp, suffix, extension)
}

// validatePassword : минимум 8 символов, буквы в обоих регистрах и цифра
func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("пароль должен содержать минимум 8 символов")
	}

	var upperCount, lowerCount, digitCount int

	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			upperCount++
		case unicode.IsLower(c):
			lowerCount++
		case unicode.IsDigit(c):
			digitCount++
		}
	}

	if upperCount == 0 || lowerCount == 0 {
		return fmt.Errorf("пароль должен содержать буквы в верхнем и нижнем регистрах")
	}
	if digitCount == 0 {
		return fmt.Errorf("пароль должен содержать хотя бы одну цифру")
	}

	return nil
}
