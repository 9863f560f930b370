package models

import "errors"

var (
	// ErrTokenSetNotFound - у пользователя нет документа/ключа с токенами.
	ErrTokenSetNotFound = errors.New("token set not found")
	// ErrNotificationNotFound - запись уведомления не найдена.
	ErrNotificationNotFound = errors.New("notification not found")
	// ErrMalformedNotification - запись не содержит обязательных полей.
	ErrMalformedNotification = errors.New("malformed notification record")

	ErrUnauthenticated = errors.New("user must be authenticated")

	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")
)
