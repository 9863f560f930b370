package service

import (
	"context"
	"fmt"

	"gymbuddy-server/internal/interfaces"
	"gymbuddy-server/internal/models"

	"go.uber.org/zap"
)

const (
	SystemSenderID                 = "system"
	SystemSenderUsername           = "System"
	TestNotificationType           = "test"
	TestNotificationTitle          = "Test Notification"
	TestNotificationBody           = "This is a test notification from Firebase Cloud Functions"
	TestNotificationCreatedMessage = "Test notification created"
)

// TestTrigger создает тестовую запись уведомления для текущего пользователя.
// Доставку выполняет обычный путь через Dispatcher.
type TestTrigger struct {
	notifications interfaces.NotificationRepository
	logger        *zap.Logger
}

func NewTestTrigger(notifications interfaces.NotificationRepository, logger *zap.Logger) *TestTrigger {
	return &TestTrigger{
		notifications: notifications,
		logger:        logger.Named("test_trigger"),
	}
}

func (t *TestTrigger) Trigger(ctx context.Context, userID string) (*models.TestTriggerResult, error) {
	if userID == "" {
		testTriggersTotal.WithLabelValues("unauthenticated").Inc()
		return nil, models.ErrUnauthenticated
	}

	notSent := false
	rec := &models.NotificationRecord{
		UserID:         userID,
		SenderID:       SystemSenderID,
		SenderUsername: SystemSenderUsername,
		Type:           TestNotificationType,
		Title:          TestNotificationTitle,
		Body:           TestNotificationBody,
		Data:           map[string]string{},
		IsRead:         false,
		FCMSent:        &notSent,
	}

	id, err := t.notifications.Create(ctx, rec)
	if err != nil {
		testTriggersTotal.WithLabelValues("error").Inc()
		t.logger.Error("Не удалось создать тестовое уведомление", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to create test notification: %w", err)
	}

	testTriggersTotal.WithLabelValues("created").Inc()
	t.logger.Info("Тестовое уведомление создано", zap.String("user_id", userID), zap.String("notification_id", id))
	return &models.TestTriggerResult{
		Success:        true,
		Message:        TestNotificationCreatedMessage,
		NotificationID: id,
	}, nil
}
