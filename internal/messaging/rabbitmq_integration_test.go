//go:build integration

package messaging_test

import (
	"context"
	"testing"
	"time"

	"gymbuddy-server/internal/interfaces/mocks"
	"gymbuddy-server/internal/messaging"
	"gymbuddy-server/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func TestPublisherConsumerRoundTrip(t *testing.T) {
	ctx := context.Background()

	container, err := rabbitmq.Run(ctx,
		"rabbitmq:3-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete"),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	amqpURL, err := container.AmqpURL(ctx)
	require.NoError(t, err)
	conn, err := amqp.Dial(amqpURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	queue := "notification_created_test"
	publisher, err := messaging.NewRabbitEventPublisher(conn, queue, zap.NewNop())
	require.NoError(t, err)

	dispatched := make(chan *models.NotificationCreatedEvent, 1)
	dispatcher := new(mocks.Dispatcher)
	dispatcher.On("Dispatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			dispatched <- args.Get(1).(*models.NotificationCreatedEvent)
		}).
		Return(models.DispatchResult{Success: true, SuccessCount: 1, Outcome: models.OutcomeDelivered})

	processor := messaging.NewProcessor(zap.NewNop(), dispatcher, 10*time.Second)
	consumer, err := messaging.NewConsumer(conn, zap.NewNop(), queue, 2, processor)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- consumer.Start() }()
	t.Cleanup(func() {
		consumer.Stop()
		<-done
	})

	err = publisher.PublishNotificationCreated(ctx, models.NotificationCreatedEvent{
		NotificationID: "n1",
		Path:           "notifications/n1",
		Record:         &models.NotificationRecord{ID: "n1", UserID: "u1", Title: "Hello"},
		OccurredAt:     time.Now().UTC(),
	})
	require.NoError(t, err)

	select {
	case ev := <-dispatched:
		assert.Equal(t, "n1", ev.NotificationID)
		assert.NotEmpty(t, ev.EventID)
		require.NotNil(t, ev.Record)
		assert.Equal(t, "u1", ev.Record.UserID)
	case <-time.After(30 * time.Second):
		t.Fatal("событие не было доставлено консьюмеру")
	}
}
