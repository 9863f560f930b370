package messaging

import (
	"context"
	"encoding/json"
	"time"

	"gymbuddy-server/internal/interfaces"
	"gymbuddy-server/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Processor обрабатывает одно сообщение о созданной записи.
type Processor struct {
	logger     *zap.Logger
	dispatcher interfaces.Dispatcher
	timeout    time.Duration
}

// NewProcessor создает обработчик. timeout - предел на одну доставку, 0 - без предела.
func NewProcessor(logger *zap.Logger, dispatcher interfaces.Dispatcher, timeout time.Duration) *Processor {
	return &Processor{
		logger:     logger.Named("processor"),
		dispatcher: dispatcher,
		timeout:    timeout,
	}
}

// ProcessMessage подтверждает сообщение после любого исхода доставки:
// ошибки уже записаны в саму запись. Нечитаемое сообщение отклоняется без повтора,
// прерванное остановкой консьюмера возвращается в очередь.
func (p *Processor) ProcessMessage(ctx context.Context, d amqp.Delivery) {
	log := p.logger.With(zap.Uint64("delivery_tag", d.DeliveryTag))

	var event models.NotificationCreatedEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		log.Error("Ошибка десериализации JSON", zap.Error(err), zap.ByteString("body", d.Body))
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.Error("Ошибка Nack сообщения после ошибки JSON", zap.Error(nackErr))
		}
		return
	}
	log = log.With(zap.String("event_id", event.EventID), zap.String("notification_id", event.NotificationID))

	processCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		processCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	res := p.dispatcher.Dispatch(processCtx, &event)
	log.Info("Событие обработано",
		zap.String("outcome", string(res.Outcome)),
		zap.Int("success_count", res.SuccessCount),
		zap.Int("failure_count", res.FailureCount))

	// Консьюмер остановлен посреди доставки: ошибка в запись не попала,
	// поэтому сообщение возвращается в очередь и будет доставлено после рестарта.
	if ctx.Err() != nil && res.Outcome == models.OutcomeSendFailed {
		log.Warn("Доставка прервана остановкой консьюмера, сообщение возвращено в очередь", zap.String("error", res.Error))
		if nackErr := d.Nack(false, true); nackErr != nil {
			log.Error("Ошибка Nack сообщения при остановке", zap.Error(nackErr))
		}
		return
	}

	if ackErr := d.Ack(false); ackErr != nil {
		log.Error("Ошибка Ack сообщения", zap.Error(ackErr))
	}
}
