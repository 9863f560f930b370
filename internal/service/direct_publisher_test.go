package service_test

import (
	"context"
	"testing"
	"time"

	"gymbuddy-server/internal/interfaces/mocks"
	"gymbuddy-server/internal/models"
	"gymbuddy-server/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestDirectPublisher_DispatchesWithDeadline(t *testing.T) {
	dispatcher := new(mocks.Dispatcher)
	pub := service.NewDirectPublisher(dispatcher, 5*time.Second, zap.NewNop())

	event := models.NotificationCreatedEvent{
		EventID:        "evt-1",
		NotificationID: "n1",
		Record:         &models.NotificationRecord{ID: "n1", UserID: "u1"},
	}
	dispatcher.On("Dispatch", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), mock.MatchedBy(func(ev *models.NotificationCreatedEvent) bool {
		return ev.NotificationID == "n1"
	})).Return(models.DispatchResult{Outcome: models.OutcomeSendFailed}).Once()

	// ошибки доставки уже записаны диспетчером и наружу не поднимаются
	err := pub.PublishNotificationCreated(context.Background(), event)

	assert.NoError(t, err)
	dispatcher.AssertExpectations(t)
}
