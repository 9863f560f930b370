package push

import (
	"context"

	"gymbuddy-server/internal/models"
	"gymbuddy-server/pkg/logger"

	"go.uber.org/zap"
)

// StubSender ничего не отправляет и отвечает успехом по каждому токену.
// Используется локально с эмулятором Firestore, когда FCM недоступен.
type StubSender struct {
	logger *zap.Logger
}

func NewStubSender(l *zap.Logger) *StubSender {
	return &StubSender{logger: l.Named("stub_fcm_sender")}
}

func (s *StubSender) SendMulticast(ctx context.Context, msg *Message) (*models.MulticastResult, error) {
	if msg == nil {
		return &models.MulticastResult{}, nil
	}
	s.logger.Info("ЗАГЛУШКА: Отправка FCM",
		logger.Tokens(msg.Tokens),
		zap.String("title", msg.Title),
		zap.String("body", msg.Body),
		zap.Any("data", msg.Data),
	)
	result := &models.MulticastResult{
		SuccessCount: len(msg.Tokens),
		Outcomes:     make([]models.DeliveryOutcome, 0, len(msg.Tokens)),
	}
	for _, t := range msg.Tokens {
		result.Outcomes = append(result.Outcomes, models.DeliveryOutcome{Token: t, Success: true})
	}
	return result, nil
}
