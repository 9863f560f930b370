package push

import (
	"context"
	"errors"
	"fmt"

	"gymbuddy-server/internal/models"
	"gymbuddy-server/pkg/logger"

	fcm "firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// MaxMulticastTokens - лимит токенов на один вызов SendEachForMulticast.
const MaxMulticastTokens = 500

// MulticastClient - часть *messaging.Client, которая нужна отправителю.
type MulticastClient interface {
	SendEachForMulticast(ctx context.Context, message *fcm.MulticastMessage) (*fcm.BatchResponse, error)
}

// FCMSender отправляет мультикаст через Firebase Cloud Messaging.
type FCMSender struct {
	client   MulticastClient
	logger   *zap.Logger
	classify func(error) string
}

// NewFCMSender создает отправителя поверх клиента FCM.
func NewFCMSender(client MulticastClient, logger *zap.Logger) (*FCMSender, error) {
	if client == nil {
		return nil, errors.New("fcm messaging client is nil")
	}
	return &FCMSender{
		client:   client,
		logger:   logger.Named("fcm_sender"),
		classify: ClassifyError,
	}, nil
}

// SendMulticast отправляет сообщение на все токены одним логическим вызовом.
// Больше 500 токенов режется на пачки, результаты склеиваются в исходном порядке.
// Ошибка возвращается только при системном сбое (сеть, авторизация, квоты проекта),
// неудачи по отдельным токенам лежат в Outcomes. Если сбой случился не на первой пачке,
// вместе с ошибкой возвращаются результаты уже отправленных пачек.
func (s *FCMSender) SendMulticast(ctx context.Context, msg *Message) (*models.MulticastResult, error) {
	if msg == nil || len(msg.Tokens) == 0 {
		return &models.MulticastResult{}, nil
	}

	result := &models.MulticastResult{
		Outcomes: make([]models.DeliveryOutcome, 0, len(msg.Tokens)),
	}

	for _, batch := range chunkTokens(msg.Tokens, MaxMulticastTokens) {
		br, err := s.client.SendEachForMulticast(ctx, toFCMMessage(msg, batch))
		if err != nil {
			s.logger.Error("Ошибка вызова SendEachForMulticast FCM", zap.Error(err),
				zap.Int("batch_size", len(batch)), zap.Int("already_sent", len(result.Outcomes)))
			return partial(result), fmt.Errorf("fcm multicast send failed: %w", err)
		}
		if len(br.Responses) != len(batch) {
			return partial(result), fmt.Errorf("fcm multicast returned %d responses for %d tokens", len(br.Responses), len(batch))
		}

		result.SuccessCount += br.SuccessCount
		result.FailureCount += br.FailureCount

		for i, resp := range br.Responses {
			outcome := models.DeliveryOutcome{Token: batch[i], Success: resp != nil && resp.Success}
			if !outcome.Success {
				if resp != nil {
					outcome.Err = resp.Error
				}
				outcome.Code = s.classify(outcome.Err)
				if outcome.Code == "" {
					outcome.Code = models.CodeUnknownError
				}
				s.logger.Warn("Ошибка доставки FCM для токена",
					logger.Token(batch[i]),
					zap.String("code", outcome.Code),
					zap.Error(outcome.Err),
				)
			}
			result.Outcomes = append(result.Outcomes, outcome)
		}
	}

	s.logger.Info("Результат отправки FCM",
		zap.Int("token_count", len(msg.Tokens)),
		zap.Int("success_count", result.SuccessCount),
		zap.Int("failure_count", result.FailureCount),
	)
	return result, nil
}

// partial возвращает результат уже отправленных пачек или nil, если не ушло ничего.
func partial(result *models.MulticastResult) *models.MulticastResult {
	if len(result.Outcomes) == 0 {
		return nil
	}
	return result
}

func toFCMMessage(msg *Message, tokens []string) *fcm.MulticastMessage {
	badge := msg.APNS.Badge
	return &fcm.MulticastMessage{
		Tokens: tokens,
		Notification: &fcm.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &fcm.AndroidConfig{
			Priority: msg.Android.Priority,
			Notification: &fcm.AndroidNotification{
				ChannelID: msg.Android.ChannelID,
				Sound:     msg.Android.Sound,
				Color:     msg.Android.Color,
			},
		},
		APNS: &fcm.APNSConfig{
			Payload: &fcm.APNSPayload{
				Aps: &fcm.Aps{
					Sound: msg.APNS.Sound,
					Badge: &badge,
				},
			},
		},
	}
}

func chunkTokens(tokens []string, size int) [][]string {
	var chunks [][]string
	for i := 0; i < len(tokens); i += size {
		end := i + size
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, tokens[i:end])
	}
	return chunks
}
