package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrAuthorization сигнализирует об ошибке авторизации (401).
var ErrAuthorization = errors.New("ошибка авторизации")

// ErrSignerNotConfigured - клиент создан без адреса сервиса подписи.
var ErrSignerNotConfigured = errors.New("адрес сервиса подписи не настроен")

// TransportError - сеть недоступна или бэкенд ответил не-2xx без структурированного тела.
type TransportError struct {
	Op     string // Операция, например "вход"
	Status int    // HTTP статус, 0 если ответа не было
	Err    error  // Исходная ошибка
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("ошибка запроса (%s): статус %d", e.Op, e.Status)
	}
	return fmt.Sprintf("ошибка запроса (%s): %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is делает 401 без тела совместимым с ErrAuthorization.
func (e *TransportError) Is(target error) bool {
	return target == ErrAuthorization && e.Status == http.StatusUnauthorized
}

// ValidationError - бэкенд вернул сообщение об ошибке в поле detail.
type ValidationError struct {
	Op     string
	Status int
	Detail string
}

func (e *ValidationError) Error() string {
	return e.Detail
}

// Is делает 401 с телом совместимым с ErrAuthorization.
func (e *ValidationError) Is(target error) bool {
	return target == ErrAuthorization && e.Status == http.StatusUnauthorized
}

// ErrorMessage возвращает сообщение для пользователя: detail от бэкенда,
// а если его нет - текст исходной ошибки.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) && validationErr.Detail != "" {
		return validationErr.Detail
	}
	return err.Error()
}
