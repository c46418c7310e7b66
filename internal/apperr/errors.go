package apperr

import "errors"

// Ошибки уровня приложения. Сервисы возвращают только эти значения (обёрнутые через %w),
// обработчики сопоставляют их со статусами через errors.Is.
//
// ErrInvalidCredentials и ErrInvalidToken намеренно не различают причину
// ("нет такого пользователя" / "неверный пароль" / "токен просрочен" / "токен подделан"),
// чтобы по ответу нельзя было перечислять аккаунты.
var (
	ErrValidation         = errors.New("некорректные данные")
	ErrAlreadyExists      = errors.New("уже существует")
	ErrInvalidCredentials = errors.New("неверный логин или пароль")
	ErrInvalidToken       = errors.New("невалидный токен")
	ErrNotFound           = errors.New("не найдено")
	ErrUnavailable        = errors.New("хранилище недоступно")
)
