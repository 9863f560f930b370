package interfaces

import (
	"context"

	"gymbuddy-server/internal/models"
)

// TokenRepository - хранилище push-токенов пользователя.
type TokenRepository interface {
	// GetTokens возвращает токены пользователя или models.ErrTokenSetNotFound.
	GetTokens(ctx context.Context, userID string) ([]string, error)
	// RemoveTokens атомарно вычитает указанные токены из набора пользователя.
	// Токены, которых нет в списке, не затрагиваются.
	RemoveTokens(ctx context.Context, userID string, tokens []string) error
}

// NotificationRepository - хранилище записей уведомлений.
type NotificationRepository interface {
	// Create добавляет новую запись и возвращает её ID.
	Create(ctx context.Context, rec *models.NotificationRecord) (string, error)
	// Get читает запись по ID или возвращает models.ErrNotificationNotFound.
	Get(ctx context.Context, id string) (*models.NotificationRecord, error)
	// PathFor возвращает путь документа записи для обратной записи статуса.
	PathFor(id string) string
	// MarkSent записывает успешный статус доставки. Запись не создаётся заново.
	MarkSent(ctx context.Context, path string, successCount, failureCount int) error
	// MarkFailed записывает ошибку доставки. Счётчики не трогаются.
	MarkFailed(ctx context.Context, path string, message string) error
}
