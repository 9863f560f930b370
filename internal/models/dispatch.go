package models

import "time"

// DispatchOutcome - чем закончился вызов диспетчера.
type DispatchOutcome string

const (
	OutcomeDelivered         DispatchOutcome = "delivered"
	OutcomeNoTokens          DispatchOutcome = "no_tokens"
	OutcomeInvalidEvent      DispatchOutcome = "invalid_event"
	OutcomeSendFailed        DispatchOutcome = "send_failed"
	OutcomeStatusWriteFailed DispatchOutcome = "status_write_failed"
)

// DispatchResult - результат одного вызова диспетчера.
// Для триггера событий он никому не нужен, но всегда корректно заполнен.
type DispatchResult struct {
	Success      bool            `json:"success"`
	SuccessCount int             `json:"successCount"`
	FailureCount int             `json:"failureCount"`
	Error        string          `json:"error,omitempty"`
	Outcome      DispatchOutcome `json:"outcome"`
}

// NotificationCreatedEvent - событие о создании записи уведомления.
// Path указывает на документ, в который пишется статус доставки.
type NotificationCreatedEvent struct {
	EventID        string              `json:"event_id"`
	NotificationID string              `json:"notification_id"`
	Path           string              `json:"path"`
	Record         *NotificationRecord `json:"record"`
	OccurredAt     time.Time           `json:"occurred_at"`
}

// TestTriggerResult - ответ на ручной тестовый запуск.
type TestTriggerResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	NotificationID string `json:"notification_id,omitempty"`
}
