package watcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"gymbuddy-server/internal/interfaces/mocks"
	"gymbuddy-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func docData(userID string, createdAt time.Time) map[string]interface{} {
	return map[string]interface{}{
		"user_id":    userID,
		"title":      "New like",
		"created_at": createdAt,
	}
}

func eventFor(id string) interface{} {
	return mock.MatchedBy(func(ev models.NotificationCreatedEvent) bool {
		return ev.NotificationID == id
	})
}

func TestWatcher_HandleAdded(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Сбой передачи не сдвигает курсор, документ передается повторно", func(t *testing.T) {
		sink := new(mocks.EventPublisher)
		w := New(nil, "notifications", sink, start, zap.NewNop())
		created := start.Add(time.Second)

		sink.On("PublishNotificationCreated", mock.Anything, eventFor("n1")).Return(errors.New("channel closed")).Once()

		err := w.handleAdded(ctx, "n1", docData("u1", created))
		require.Error(t, err)
		assert.Equal(t, start, w.since)

		// переоткрытый поток снова присылает тот же документ
		sink.On("PublishNotificationCreated", mock.Anything, eventFor("n1")).Return(nil).Once()

		require.NoError(t, w.handleAdded(ctx, "n1", docData("u1", created)))
		assert.Equal(t, created, w.since)
		sink.AssertExpectations(t)
	})

	t.Run("Уже переданный документ на границе курсора не дублируется", func(t *testing.T) {
		sink := new(mocks.EventPublisher)
		w := New(nil, "notifications", sink, start, zap.NewNop())
		created := start.Add(time.Second)

		sink.On("PublishNotificationCreated", mock.Anything, eventFor("n1")).Return(nil).Once()
		sink.On("PublishNotificationCreated", mock.Anything, eventFor("n2")).Return(nil).Once()

		require.NoError(t, w.handleAdded(ctx, "n1", docData("u1", created)))
		require.NoError(t, w.handleAdded(ctx, "n1", docData("u1", created)))
		// другой документ с тем же created_at передается
		require.NoError(t, w.handleAdded(ctx, "n2", docData("u2", created)))

		sink.AssertExpectations(t)
		sink.AssertNumberOfCalls(t, "PublishNotificationCreated", 2)
	})

	t.Run("Непереданный документ после сбоя соседа приходит снова", func(t *testing.T) {
		sink := new(mocks.EventPublisher)
		w := New(nil, "notifications", sink, start, zap.NewNop())
		first := start.Add(time.Second)
		second := start.Add(2 * time.Second)

		sink.On("PublishNotificationCreated", mock.Anything, eventFor("n1")).Return(nil).Once()
		sink.On("PublishNotificationCreated", mock.Anything, eventFor("n2")).Return(errors.New("broker down")).Once()

		require.NoError(t, w.handleAdded(ctx, "n1", docData("u1", first)))
		require.Error(t, w.handleAdded(ctx, "n2", docData("u1", second)))
		assert.Equal(t, first, w.since)

		// поток переоткрыт с created_at >= first: n1 пропускается, n2 передается
		sink.On("PublishNotificationCreated", mock.Anything, eventFor("n2")).Return(nil).Once()
		require.NoError(t, w.handleAdded(ctx, "n1", docData("u1", first)))
		require.NoError(t, w.handleAdded(ctx, "n2", docData("u1", second)))

		assert.Equal(t, second, w.since)
		sink.AssertNumberOfCalls(t, "PublishNotificationCreated", 3)
	})

	t.Run("Некорректный документ пропускается без ошибки", func(t *testing.T) {
		sink := new(mocks.EventPublisher)
		w := New(nil, "notifications", sink, start, zap.NewNop())

		require.NoError(t, w.handleAdded(ctx, "n1", map[string]interface{}{"title": "x"}))
		sink.AssertNotCalled(t, "PublishNotificationCreated", mock.Anything, mock.Anything)
		assert.Equal(t, start, w.since)
	})
}
