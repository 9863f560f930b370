package watcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gymbuddy-server/internal/interfaces"
	"gymbuddy-server/internal/models"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const defaultRetryDelay = 5 * time.Second

var watcherEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notifications_watcher_events_total",
		Help: "Total number of notification documents seen by the watcher by status.",
	},
	[]string{"status"},
)

// Watcher слушает новые документы коллекции уведомлений
// и превращает каждое добавление в событие для диспетчера.
type Watcher struct {
	client     *firestore.Client
	collection string
	sink       interfaces.EventPublisher
	since      time.Time
	atSince    map[string]struct{}
	retryDelay time.Duration
	logger     *zap.Logger
}

// New создает Watcher. Документы с created_at раньше since не обрабатываются.
func New(client *firestore.Client, collection string, sink interfaces.EventPublisher, since time.Time, logger *zap.Logger) *Watcher {
	if collection == "" {
		collection = models.NotificationsCollection
	}
	return &Watcher{
		client:     client,
		collection: collection,
		sink:       sink,
		since:      since,
		atSince:    make(map[string]struct{}),
		retryDelay: defaultRetryDelay,
		logger:     logger.Named("watcher"),
	}
}

// Run блокируется до отмены контекста. Оборванный поток изменений и сбой
// передачи события переоткрывают поток с created_at последнего переданного документа.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("Watcher запущен", zap.String("collection", w.collection), zap.Time("since", w.since))
	for {
		err := w.listen(ctx)
		if ctx.Err() != nil {
			w.logger.Info("Watcher остановлен")
			return nil
		}
		w.logger.Error("Поток изменений прерван, переподключение...", zap.Error(err), zap.Duration("delay", w.retryDelay))
		select {
		case <-ctx.Done():
			w.logger.Info("Watcher остановлен")
			return nil
		case <-time.After(w.retryDelay):
		}
	}
}

func (w *Watcher) listen(ctx context.Context) error {
	it := w.client.Collection(w.collection).
		Where(models.FieldCreatedAt, ">=", w.since).
		Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled {
				return nil
			}
			return fmt.Errorf("snapshot listener failed: %w", err)
		}
		for _, change := range snap.Changes {
			if change.Kind != firestore.DocumentAdded {
				continue
			}
			if err := w.handleAdded(ctx, change.Doc.Ref.ID, change.Doc.Data()); err != nil {
				return err
			}
		}
	}
}

// handleAdded передает событие по новому документу. Курсор since сдвигается только
// после успешной передачи, поэтому непереданный документ придет снова после переоткрытия.
// Уже переданные документы с created_at == since при повторе пропускаются.
func (w *Watcher) handleAdded(ctx context.Context, id string, data map[string]interface{}) error {
	event, err := BuildEvent(w.collection, id, data, time.Now().UTC())
	if err != nil {
		watcherEventsTotal.WithLabelValues("skipped").Inc()
		w.logger.Warn("Документ уведомления не разобран, пропускаем", zap.Error(err), zap.String("notification_id", id))
		return nil
	}
	createdAt := event.Record.CreatedAt
	if createdAt.Equal(w.since) {
		if _, done := w.atSince[id]; done {
			watcherEventsTotal.WithLabelValues("duplicate").Inc()
			return nil
		}
	}

	if err := w.sink.PublishNotificationCreated(ctx, *event); err != nil {
		watcherEventsTotal.WithLabelValues("publish_failed").Inc()
		w.logger.Error("Не удалось передать событие", zap.Error(err), zap.String("notification_id", id))
		return fmt.Errorf("publish notification %s: %w", id, err)
	}
	watcherEventsTotal.WithLabelValues("published").Inc()

	switch {
	case createdAt.After(w.since):
		w.since = createdAt
		w.atSince = map[string]struct{}{id: {}}
	case createdAt.Equal(w.since):
		w.atSince[id] = struct{}{}
	}
	return nil
}

// BuildEvent собирает событие о новой записи из данных документа.
func BuildEvent(collection, id string, data map[string]interface{}, occurredAt time.Time) (*models.NotificationCreatedEvent, error) {
	rec, err := models.DecodeNotificationRecord(id, data)
	if err != nil {
		return nil, err
	}
	return &models.NotificationCreatedEvent{
		EventID:        uuid.NewString(),
		NotificationID: id,
		Path:           collection + "/" + id,
		Record:         rec,
		OccurredAt:     occurredAt,
	}, nil
}
