package handler

import (
	"auth-service/internal/apperr"
	"auth-service/internal/model/requestresponse"
	"auth-service/internal/ports"
	"auth-service/internal/security"
	"auth-service/internal/util"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const maxProfilePictureSize = 5 << 20 // 5MB

var allowedPictureTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
}

type UserHandler struct {
	ports.AuthenticationService
}

func NewUserHandler(authenticationService ports.AuthenticationService) *UserHandler {
	return &UserHandler{authenticationService}
}

// GetUser godoc
// @Summary Получение пользователя
// @Description Возвращает публичные данные пользователя по UUID; доступен только владельцу токена
// @Tags Users
// @Produce json
// @Param uuid path string true "UUID пользователя"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.UserResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/users/{uuid} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		sendErrorResponse(w, 401, "не авторизован")
		return
	}

	userUUID := chi.URLParam(r, "uuid")
	if claims.Subject != userUUID {
		sendErrorResponse(w, 403, "доступ запрещён")
		return
	}

	user, err := h.AuthenticationService.GetUser(ctx, userUUID)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(requestresponse.UserResponseFromModel(user))
}

// UpdateProfilePicture godoc
// @Summary Загрузка аватара
// @Description Принимает изображение (jpeg/png/gif, до 5MB) в multipart-поле file и сохраняет его в S3
// @Tags Users
// @Accept multipart/form-data
// @Produce json
// @Param uuid path string true "UUID пользователя"
// @Param file formData file true "Файл изображения"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.UserResponse "Пользователь с новой ссылкой на аватар"
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный тип или размер файла"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/users/{uuid}/profile-picture [put]
func (h *UserHandler) UpdateProfilePicture(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		sendErrorResponse(w, 401, "не авторизован")
		return
	}

	userUUID := chi.URLParam(r, "uuid")
	if claims.Subject != userUUID {
		sendErrorResponse(w, 403, "доступ запрещён")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxProfilePictureSize)
	if err := r.ParseMultipartForm(maxProfilePictureSize); err != nil {
		sendErrorResponse(w, 400, "файл превышает 5MB или форма некорректна")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		sendErrorResponse(w, 400, "поле file обязательно")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !allowedPictureTypes[contentType] {
		sendErrorResponse(w, 400, "допустимы только изображения jpeg, png или gif")
		return
	}

	user, err := h.AuthenticationService.UpdateProfilePicture(ctx, userUUID, file, header.Filename, contentType)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(requestresponse.UserResponseFromModel(user))
}

// DeactivateUser godoc
// @Summary Отключение учётной записи
// @Description Деактивирует пользователя и отзывает все его refresh-токены
// @Tags Users
// @Produce json
// @Param uuid path string true "UUID пользователя"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.MessageResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/users/{uuid} [delete]
func (h *UserHandler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ctx := r.Context()

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		sendErrorResponse(w, 401, "не авторизован")
		return
	}

	userUUID := chi.URLParam(r, "uuid")
	if claims.Subject != userUUID {
		sendErrorResponse(w, 403, "доступ запрещён")
		return
	}

	if err := h.AuthenticationService.Deactivate(ctx, userUUID); err != nil {
		sendServiceError(w, err)
		return
	}

	w.WriteHeader(200)
	json.NewEncoder(w).Encode(requestresponse.MessageResponse{Message: "Учётная запись отключена"})
}

// sendServiceError сопоставляет ошибку сервиса с HTTP-статусом.
// Текст ответа намеренно одинаков внутри каждого вида ошибки
func sendServiceError(w http.ResponseWriter, err error) {
	log.Println(err)
	switch {
	case errors.Is(err, apperr.ErrValidation):
		sendErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrAlreadyExists):
		sendErrorResponse(w, http.StatusConflict, "пользователь с таким email уже существует")
	case errors.Is(err, apperr.ErrInvalidCredentials):
		sendErrorResponse(w, http.StatusUnauthorized, "неверный логин или пароль")
	case errors.Is(err, apperr.ErrInvalidToken):
		sendErrorResponse(w, http.StatusUnauthorized, "невалидный токен")
	case errors.Is(err, apperr.ErrNotFound):
		sendErrorResponse(w, http.StatusNotFound, "пользователь не найден")
	case errors.Is(err, apperr.ErrUnavailable):
		sendErrorResponse(w, http.StatusServiceUnavailable, "сервис временно недоступен")
	default:
		sendErrorResponse(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
	}
}

// sendErrorResponse отправляет ответ об ошибке JSON с указанным кодом статуса и сообщением
func sendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	util.HandleError(w, message, statusCode)
}
