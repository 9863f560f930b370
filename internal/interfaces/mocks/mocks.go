package mocks

import (
	"context"

	"gymbuddy-server/internal/models"
	"gymbuddy-server/internal/push"

	"github.com/stretchr/testify/mock"
)

// Mock TokenRepository
type TokenRepository struct {
	mock.Mock
}

func (m *TokenRepository) GetTokens(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	tokens, _ := args.Get(0).([]string)
	return tokens, args.Error(1)
}

func (m *TokenRepository) RemoveTokens(ctx context.Context, userID string, tokens []string) error {
	args := m.Called(ctx, userID, tokens)
	return args.Error(0)
}

// Mock NotificationRepository
type NotificationRepository struct {
	mock.Mock
}

func (m *NotificationRepository) Create(ctx context.Context, rec *models.NotificationRecord) (string, error) {
	args := m.Called(ctx, rec)
	return args.String(0), args.Error(1)
}

func (m *NotificationRepository) Get(ctx context.Context, id string) (*models.NotificationRecord, error) {
	args := m.Called(ctx, id)
	rec, _ := args.Get(0).(*models.NotificationRecord)
	return rec, args.Error(1)
}

func (m *NotificationRepository) PathFor(id string) string {
	return models.NotificationsCollection + "/" + id
}

func (m *NotificationRepository) MarkSent(ctx context.Context, path string, successCount, failureCount int) error {
	args := m.Called(ctx, path, successCount, failureCount)
	return args.Error(0)
}

func (m *NotificationRepository) MarkFailed(ctx context.Context, path string, message string) error {
	args := m.Called(ctx, path, message)
	return args.Error(0)
}

// Mock PushSender
type PushSender struct {
	mock.Mock
}

func (m *PushSender) SendMulticast(ctx context.Context, msg *push.Message) (*models.MulticastResult, error) {
	args := m.Called(ctx, msg)
	res, _ := args.Get(0).(*models.MulticastResult)
	return res, args.Error(1)
}

// Mock EventPublisher
type EventPublisher struct {
	mock.Mock
}

func (m *EventPublisher) PublishNotificationCreated(ctx context.Context, event models.NotificationCreatedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// Mock Dispatcher
type Dispatcher struct {
	mock.Mock
}

func (m *Dispatcher) Dispatch(ctx context.Context, event *models.NotificationCreatedEvent) models.DispatchResult {
	args := m.Called(ctx, event)
	return args.Get(0).(models.DispatchResult)
}

// Mock IDTokenVerifier
type IDTokenVerifier struct {
	mock.Mock
}

func (m *IDTokenVerifier) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	args := m.Called(ctx, idToken)
	return args.String(0), args.Error(1)
}

// Mock InterServiceVerifier
type InterServiceVerifier struct {
	mock.Mock
}

func (m *InterServiceVerifier) VerifyInterServiceToken(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

// Mock TestNotificationTrigger
type TestNotificationTrigger struct {
	mock.Mock
}

func (m *TestNotificationTrigger) Trigger(ctx context.Context, userID string) (*models.TestTriggerResult, error) {
	args := m.Called(ctx, userID)
	res, _ := args.Get(0).(*models.TestTriggerResult)
	return res, args.Error(1)
}
