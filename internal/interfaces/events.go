package interfaces

import (
	"context"

	"gymbuddy-server/internal/models"
)

// EventPublisher принимает события о создании записей уведомлений.
// Реализации: публикация в RabbitMQ или прямой вызов диспетчера.
type EventPublisher interface {
	PublishNotificationCreated(ctx context.Context, event models.NotificationCreatedEvent) error
}

// Dispatcher доставляет одно уведомление. Никогда не возвращает ошибку.
type Dispatcher interface {
	Dispatch(ctx context.Context, event *models.NotificationCreatedEvent) models.DispatchResult
}

// IDTokenVerifier проверяет Firebase ID токен и возвращает uid пользователя.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (string, error)
}

// InterServiceVerifier проверяет межсервисный токен и возвращает имя сервиса.
type InterServiceVerifier interface {
	VerifyInterServiceToken(ctx context.Context, token string) (string, error)
}

// TestNotificationTrigger создает тестовое уведомление для пользователя.
type TestNotificationTrigger interface {
	Trigger(ctx context.Context, userID string) (*models.TestTriggerResult, error)
}
