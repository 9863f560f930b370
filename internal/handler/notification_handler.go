package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"gymbuddy-server/internal/interfaces"
	"gymbuddy-server/internal/middleware"
	"gymbuddy-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationHandler обслуживает callable эндпоинт тестового уведомления
// и внутренний эндпоинт ручной доставки.
type NotificationHandler struct {
	trigger         interfaces.TestNotificationTrigger
	notifications   interfaces.NotificationRepository
	dispatcher      interfaces.Dispatcher
	dispatchTimeout time.Duration
	logger          *zap.Logger
}

func NewNotificationHandler(
	trigger interfaces.TestNotificationTrigger,
	notifications interfaces.NotificationRepository,
	dispatcher interfaces.Dispatcher,
	dispatchTimeout time.Duration,
	logger *zap.Logger,
) *NotificationHandler {
	return &NotificationHandler{
		trigger:         trigger,
		notifications:   notifications,
		dispatcher:      dispatcher,
		dispatchTimeout: dispatchTimeout,
		logger:          logger.Named("NotificationHandler"),
	}
}

// RegisterRoutes регистрирует маршруты. callableAuth должен положить uid в контекст,
// callableLimit может быть nil. Без interServiceAuth внутренние маршруты не регистрируются.
func (h *NotificationHandler) RegisterRoutes(router gin.IRouter, callableAuth, callableLimit, interServiceAuth gin.HandlerFunc) {
	callable := []gin.HandlerFunc{callableAuth}
	if callableLimit != nil {
		callable = append(callable, callableLimit)
	}
	callable = append(callable, h.sendTestNotification)
	router.POST("/sendTestNotification", callable...)

	if interServiceAuth == nil {
		h.logger.Warn("Межсервисная авторизация не настроена, внутренние маршруты отключены")
		return
	}
	internal := router.Group("/internal", interServiceAuth)
	internal.POST("/notifications/:id/dispatch", h.dispatchNotification)
}

const internalErrorMessage = "Failed to create test notification"

// callableRequest - тело запроса callable-функции; data не используется.
type callableRequest struct {
	Data json.RawMessage `json:"data"`
}

func (h *NotificationHandler) sendTestNotification(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		middleware.AbortCallable(c, middleware.CallableInvalidArgument, "Failed to read request body")
		return
	}
	if len(raw) > 0 {
		var req callableRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			middleware.AbortCallable(c, middleware.CallableInvalidArgument, "Request body must be a JSON object")
			return
		}
	}

	res, err := h.trigger.Trigger(c.Request.Context(), c.GetString(middleware.FirebaseUIDKey))
	if err != nil {
		if errors.Is(err, models.ErrUnauthenticated) {
			middleware.AbortCallable(c, middleware.CallableUnauthenticated, "User must be authenticated")
			return
		}
		_ = c.Error(err)
		h.logger.Error("Не удалось создать тестовое уведомление", zap.Error(err))
		middleware.AbortCallable(c, middleware.CallableInternal, internalErrorMessage)
		return
	}
	middleware.RespondCallable(c, res)
}

func (h *NotificationHandler) dispatchNotification(c *gin.Context) {
	id := c.Param("id")
	log := h.logger.With(zap.String("notification_id", id), zap.String("sourceService", c.GetString(middleware.SourceServiceKey)))

	rec, err := h.notifications.Get(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotificationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "notification not found"})
		case errors.Is(err, models.ErrMalformedNotification):
			log.Warn("Запись уведомления некорректна", zap.Error(err))
			c.JSON(http.StatusUnprocessableEntity, models.DispatchResult{
				Error:   err.Error(),
				Outcome: models.OutcomeInvalidEvent,
			})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to load notification"})
		}
		return
	}

	ctx := c.Request.Context()
	if h.dispatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.dispatchTimeout)
		defer cancel()
	}

	res := h.dispatcher.Dispatch(ctx, &models.NotificationCreatedEvent{
		EventID:        uuid.NewString(),
		NotificationID: id,
		Path:           h.notifications.PathFor(id),
		Record:         rec,
		OccurredAt:     time.Now().UTC(),
	})
	log.Info("Ручная доставка выполнена", zap.String("outcome", string(res.Outcome)))
	c.JSON(http.StatusOK, res)
}
