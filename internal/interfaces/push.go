package interfaces

import (
	"context"

	"gymbuddy-server/internal/models"
	"gymbuddy-server/internal/push"
)

// PushSender отправляет одно мультикаст-сообщение.
// Ошибка - только системный сбой; отказы по токенам лежат в результате.
// Вместе с ошибкой может вернуться непустой результат уже отправленной части.
type PushSender interface {
	SendMulticast(ctx context.Context, msg *push.Message) (*models.MulticastResult, error)
}

var (
	_ PushSender = (*push.FCMSender)(nil)
	_ PushSender = (*push.StubSender)(nil)
)
