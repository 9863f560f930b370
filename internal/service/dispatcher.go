package service

import (
	"context"
	"errors"
	"fmt"

	"gymbuddy-server/internal/interfaces"
	"gymbuddy-server/internal/models"
	"gymbuddy-server/internal/push"

	"go.uber.org/zap"
)

var (
	_ interfaces.Dispatcher              = (*Dispatcher)(nil)
	_ interfaces.TestNotificationTrigger = (*TestTrigger)(nil)
)

// Dispatcher доставляет push по одной новой записи уведомления
// и записывает статус доставки обратно в запись.
type Dispatcher struct {
	tokens        interfaces.TokenRepository
	notifications interfaces.NotificationRepository
	sender        interfaces.PushSender
	logger        *zap.Logger
}

func NewDispatcher(
	tokens interfaces.TokenRepository,
	notifications interfaces.NotificationRepository,
	sender interfaces.PushSender,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		tokens:        tokens,
		notifications: notifications,
		sender:        sender,
		logger:        logger.Named("dispatcher"),
	}
}

// Dispatch никогда не возвращает ошибку: все сбои отражены в результате
// и, где возможно, в самой записи. Повторный вызов для той же записи безопасен.
func (d *Dispatcher) Dispatch(ctx context.Context, event *models.NotificationCreatedEvent) (result models.DispatchResult) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Паника при доставке уведомления", zap.Any("panic", r))
			result = models.DispatchResult{
				Error:   fmt.Sprintf("panic during dispatch: %v", r),
				Outcome: models.OutcomeSendFailed,
			}
		}
		dispatchOutcomesTotal.WithLabelValues(string(result.Outcome)).Inc()
	}()

	rec, path, ok := d.resolve(event)
	if !ok {
		return models.DispatchResult{Outcome: models.OutcomeInvalidEvent}
	}
	log := d.logger.With(zap.String("notification_id", rec.ID), zap.String("user_id", rec.UserID))

	tokens, err := d.tokens.GetTokens(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, models.ErrTokenSetNotFound) {
			log.Info("У пользователя нет FCM токенов")
			return models.DispatchResult{Outcome: models.OutcomeNoTokens}
		}
		return d.fail(ctx, log, path, fmt.Errorf("failed to load tokens: %w", err))
	}
	if len(tokens) == 0 {
		log.Info("Набор FCM токенов пользователя пуст")
		return models.DispatchResult{Outcome: models.OutcomeNoTokens}
	}
	log.Info("Отправка push уведомления", zap.Int("token_count", len(tokens)))

	res, err := d.sender.SendMulticast(ctx, push.BuildMessage(rec, tokens))
	if err != nil {
		if res != nil {
			d.prunePartial(ctx, log, rec.UserID, res)
			err = fmt.Errorf("%w (sent to %d of %d tokens)", err, len(res.Outcomes), len(tokens))
		}
		return d.fail(ctx, log, path, fmt.Errorf("failed to send push: %w", err))
	}
	if res == nil {
		return d.fail(ctx, log, path, errors.New("push service returned empty response"))
	}
	pushResultsTotal.WithLabelValues("success").Add(float64(res.SuccessCount))
	pushResultsTotal.WithLabelValues("failure").Add(float64(res.FailureCount))
	log.Info("Push отправлен",
		zap.Int("success_count", res.SuccessCount),
		zap.Int("failure_count", res.FailureCount))

	if dead := res.PrunableTokens(); len(dead) > 0 {
		if err := d.tokens.RemoveTokens(ctx, rec.UserID, dead); err != nil {
			return d.fail(ctx, log, path, fmt.Errorf("failed to remove dead tokens: %w", err))
		}
		prunedTokensTotal.Add(float64(len(dead)))
		log.Info("Удалены невалидные токены", zap.Int("removed", len(dead)))
	}

	result = models.DispatchResult{
		Success:      true,
		SuccessCount: res.SuccessCount,
		FailureCount: res.FailureCount,
		Outcome:      models.OutcomeDelivered,
	}
	if err := d.notifications.MarkSent(ctx, path, res.SuccessCount, res.FailureCount); err != nil {
		// push уже ушёл, успех не откатываем
		log.Error("Не удалось записать статус доставки", zap.Error(err), zap.String("path", path))
		result.Error = fmt.Sprintf("failed to record delivery status: %v", err)
		result.Outcome = models.OutcomeStatusWriteFailed
	}
	return result
}

// resolve проверяет событие и определяет путь для записи статуса.
func (d *Dispatcher) resolve(event *models.NotificationCreatedEvent) (*models.NotificationRecord, string, bool) {
	if event == nil || event.Record == nil {
		d.logger.Warn("Событие без записи уведомления, пропускаем")
		return nil, "", false
	}
	rec := *event.Record
	if rec.ID == "" {
		rec.ID = event.NotificationID
	}
	if err := rec.Validate(); err != nil {
		d.logger.Warn("Некорректная запись уведомления, пропускаем",
			zap.Error(err), zap.String("notification_id", rec.ID))
		return nil, "", false
	}
	path := event.Path
	if path == "" {
		path = d.notifications.PathFor(rec.ID)
	}
	return &rec, path, true
}

// prunePartial удаляет мёртвые токены из пачек, ушедших до системного сбоя.
// Ошибка удаления только логируется: запись всё равно помечается как неудачная.
func (d *Dispatcher) prunePartial(ctx context.Context, log *zap.Logger, userID string, res *models.MulticastResult) {
	pushResultsTotal.WithLabelValues("success").Add(float64(res.SuccessCount))
	pushResultsTotal.WithLabelValues("failure").Add(float64(res.FailureCount))
	dead := res.PrunableTokens()
	if len(dead) == 0 {
		return
	}
	if err := d.tokens.RemoveTokens(ctx, userID, dead); err != nil {
		log.Error("Не удалось удалить невалидные токены после частичной отправки", zap.Error(err))
		return
	}
	prunedTokensTotal.Add(float64(len(dead)))
	log.Info("Удалены невалидные токены из отправленных пачек", zap.Int("removed", len(dead)))
}

// fail записывает ошибку в запись (best-effort) и формирует результат.
func (d *Dispatcher) fail(ctx context.Context, log *zap.Logger, path string, err error) models.DispatchResult {
	log.Error("Ошибка доставки уведомления", zap.Error(err))
	if markErr := d.notifications.MarkFailed(ctx, path, err.Error()); markErr != nil {
		log.Error("Не удалось записать ошибку доставки", zap.Error(markErr), zap.String("path", path))
	}
	return models.DispatchResult{
		Error:   err.Error(),
		Outcome: models.OutcomeSendFailed,
	}
}
