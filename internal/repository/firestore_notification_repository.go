package repository

import (
	"context"
	"fmt"

	"gymbuddy-server/internal/interfaces"
	"gymbuddy-server/internal/models"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var _ interfaces.NotificationRepository = (*firestoreNotificationRepository)(nil)

type firestoreNotificationRepository struct {
	client     *firestore.Client
	collection string
	logger     *zap.Logger
}

// NewFirestoreNotificationRepository создает репозиторий записей уведомлений.
func NewFirestoreNotificationRepository(client *firestore.Client, collection string, logger *zap.Logger) interfaces.NotificationRepository {
	if collection == "" {
		collection = models.NotificationsCollection
	}
	return &firestoreNotificationRepository{
		client:     client,
		collection: collection,
		logger:     logger.Named("FirestoreNotificationRepo"),
	}
}

func (r *firestoreNotificationRepository) PathFor(id string) string {
	return r.collection + "/" + id
}

// Create добавляет запись; created_at всегда проставляет сервер.
func (r *firestoreNotificationRepository) Create(ctx context.Context, rec *models.NotificationRecord) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("%w: record is nil", models.ErrMalformedNotification)
	}
	data := rec.Data
	if data == nil {
		data = map[string]string{}
	}
	doc := map[string]interface{}{
		models.FieldUserID:         rec.UserID,
		models.FieldSenderID:       rec.SenderID,
		models.FieldSenderUsername: rec.SenderUsername,
		models.FieldType:           rec.Type,
		models.FieldTitle:          rec.Title,
		models.FieldBody:           rec.Body,
		models.FieldData:           data,
		models.FieldIsRead:         rec.IsRead,
		models.FieldCreatedAt:      firestore.ServerTimestamp,
	}
	if rec.FCMSent != nil {
		doc[models.FieldFCMSent] = *rec.FCMSent
	}

	ref, _, err := r.client.Collection(r.collection).Add(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create notification for user %s: %w", rec.UserID, err)
	}
	r.logger.Debug("Запись уведомления создана", zap.String("notification_id", ref.ID), zap.String("user_id", rec.UserID))
	return ref.ID, nil
}

func (r *firestoreNotificationRepository) Get(ctx context.Context, id string) (*models.NotificationRecord, error) {
	snap, err := r.client.Collection(r.collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to get notification %s: %w", id, err)
	}
	if !snap.Exists() {
		return nil, models.ErrNotificationNotFound
	}
	return models.DecodeNotificationRecord(snap.Ref.ID, snap.Data())
}

func (r *firestoreNotificationRepository) MarkSent(ctx context.Context, path string, successCount, failureCount int) error {
	return r.update(ctx, path, []firestore.Update{
		{Path: models.FieldFCMSent, Value: true},
		{Path: models.FieldFCMSentAt, Value: firestore.ServerTimestamp},
		{Path: models.FieldFCMSuccessCount, Value: successCount},
		{Path: models.FieldFCMFailureCount, Value: failureCount},
	})
}

func (r *firestoreNotificationRepository) MarkFailed(ctx context.Context, path string, message string) error {
	return r.update(ctx, path, []firestore.Update{
		{Path: models.FieldFCMSent, Value: false},
		{Path: models.FieldFCMError, Value: message},
		{Path: models.FieldFCMErrorAt, Value: firestore.ServerTimestamp},
	})
}

// update меняет только указанные поля существующего документа.
// Update в Firestore не создаёт документ, поэтому удалённая запись даёт NotFound.
func (r *firestoreNotificationRepository) update(ctx context.Context, path string, updates []firestore.Update) error {
	ref := r.client.Doc(path)
	if ref == nil {
		return fmt.Errorf("%w: invalid document path %q", models.ErrMalformedNotification, path)
	}
	if _, err := ref.Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%w: %s", models.ErrNotificationNotFound, path)
		}
		return fmt.Errorf("failed to update notification %s: %w", path, err)
	}
	return nil
}
