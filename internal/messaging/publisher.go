package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gymbuddy-server/internal/interfaces"
	"gymbuddy-server/internal/models"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DefaultQueueName - очередь событий о созданных записях уведомлений.
const DefaultQueueName = "notification_created"

var _ interfaces.EventPublisher = (*rabbitEventPublisher)(nil)

type rabbitEventPublisher struct {
	conn      *amqp.Connection
	logger    *zap.Logger
	queueName string
}

// NewRabbitEventPublisher создает издателя и проверяет очередь при старте.
func NewRabbitEventPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (interfaces.EventPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("RabbitMQ connection is nil")
	}
	if queueName == "" {
		queueName = DefaultQueueName
	}
	p := &rabbitEventPublisher{
		conn:      conn,
		logger:    logger.Named("EventPublisher").With(zap.String("queue", queueName)),
		queueName: queueName,
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()
	if _, err := declareQueue(ch, queueName); err != nil {
		return nil, fmt.Errorf("failed to verify queue %s on init: %w", queueName, err)
	}

	p.logger.Info("EventPublisher инициализирован")
	return p, nil
}

func (p *rabbitEventPublisher) PublishNotificationCreated(ctx context.Context, event models.NotificationCreatedEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	log := p.logger.With(zap.String("event_id", event.EventID), zap.String("notification_id", event.NotificationID))

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}

	ch, err := p.conn.Channel()
	if err != nil {
		log.Error("Не удалось открыть канал для публикации", zap.Error(err))
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	err = ch.PublishWithContext(ctx,
		"",          // exchange (default)
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.EventID,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		log.Error("Ошибка публикации события", zap.Error(err))
		return fmt.Errorf("failed to publish notification event: %w", err)
	}

	log.Debug("Событие опубликовано")
	return nil
}
