package service

import (
	"context"
	"time"

	"gymbuddy-server/internal/interfaces"
	"gymbuddy-server/internal/models"

	"go.uber.org/zap"
)

var _ interfaces.EventPublisher = (*DirectPublisher)(nil)

// DirectPublisher передаёт события диспетчеру в том же процессе.
// Используется, когда брокер сообщений не настроен.
type DirectPublisher struct {
	dispatcher interfaces.Dispatcher
	timeout    time.Duration
	logger     *zap.Logger
}

func NewDirectPublisher(dispatcher interfaces.Dispatcher, timeout time.Duration, logger *zap.Logger) *DirectPublisher {
	return &DirectPublisher{
		dispatcher: dispatcher,
		timeout:    timeout,
		logger:     logger.Named("direct_publisher"),
	}
}

func (p *DirectPublisher) PublishNotificationCreated(ctx context.Context, event models.NotificationCreatedEvent) error {
	dispatchCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		dispatchCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	res := p.dispatcher.Dispatch(dispatchCtx, &event)
	p.logger.Info("Событие обработано локально",
		zap.String("event_id", event.EventID),
		zap.String("notification_id", event.NotificationID),
		zap.String("outcome", string(res.Outcome)))
	return nil
}
