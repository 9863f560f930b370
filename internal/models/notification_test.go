package models_test

import (
	"errors"
	"testing"
	"time"

	"gymbuddy-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeNotificationRecord(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("Full document", func(t *testing.T) {
		rec, err := models.DecodeNotificationRecord("n1", map[string]interface{}{
			"user_id":         "u1",
			"sender_id":       "s1",
			"sender_username": "Alice",
			"type":            "friend_request",
			"title":           "Hi",
			"body":            "There",
			"is_read":         true,
			"created_at":      createdAt,
			"fcm_sent":        false,
			"data": map[string]interface{}{
				"workout_id": "w1",
				"reps":       int64(12),
				"public":     true,
				"skipped":    nil,
			},
		})
		require.NoError(t, err)

		assert.Equal(t, "n1", rec.ID)
		assert.Equal(t, "u1", rec.UserID)
		assert.Equal(t, "Alice", rec.SenderUsername)
		assert.Equal(t, "friend_request", rec.Type)
		assert.True(t, rec.IsRead)
		assert.Equal(t, createdAt, rec.CreatedAt)
		require.NotNil(t, rec.FCMSent)
		assert.False(t, *rec.FCMSent)
		assert.Equal(t, map[string]string{"workout_id": "w1", "reps": "12", "public": "true"}, rec.Data)
	})

	t.Run("Delivery status fields", func(t *testing.T) {
		rec, err := models.DecodeNotificationRecord("n2", map[string]interface{}{
			"user_id":           "u1",
			"fcm_success_count": int64(2),
			"fcm_failure_count": int64(1),
		})
		require.NoError(t, err)
		require.NotNil(t, rec.FCMSuccessCount)
		require.NotNil(t, rec.FCMFailureCount)
		assert.Equal(t, 2, *rec.FCMSuccessCount)
		assert.Equal(t, 1, *rec.FCMFailureCount)
		assert.Nil(t, rec.Data)
	})

	t.Run("Missing user id", func(t *testing.T) {
		_, err := models.DecodeNotificationRecord("n3", map[string]interface{}{"title": "x"})
		assert.True(t, errors.Is(err, models.ErrMalformedNotification))
	})

	t.Run("Non-string user id", func(t *testing.T) {
		_, err := models.DecodeNotificationRecord("n4", map[string]interface{}{"user_id": int64(7)})
		assert.True(t, errors.Is(err, models.ErrMalformedNotification))
	})

	t.Run("Data is not a map", func(t *testing.T) {
		_, err := models.DecodeNotificationRecord("n5", map[string]interface{}{"user_id": "u1", "data": "oops"})
		assert.True(t, errors.Is(err, models.ErrMalformedNotification))
	})

	t.Run("Nil document", func(t *testing.T) {
		_, err := models.DecodeNotificationRecord("n6", nil)
		assert.True(t, errors.Is(err, models.ErrMalformedNotification))
	})
}

func TestNotificationRecord_Validate(t *testing.T) {
	var nilRec *models.NotificationRecord
	assert.Error(t, nilRec.Validate())
	assert.Error(t, (&models.NotificationRecord{UserID: "u1"}).Validate())
	assert.Error(t, (&models.NotificationRecord{ID: "n1"}).Validate())
	assert.NoError(t, (&models.NotificationRecord{ID: "n1", UserID: "u1"}).Validate())
}
