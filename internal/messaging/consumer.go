package messaging

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer читает события из очереди и раздаёт их воркерам.
type Consumer struct {
	conn        *amqp.Connection
	logger      *zap.Logger
	queueName   string
	concurrency int
	processor   *Processor
	stopChannel chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

func NewConsumer(conn *amqp.Connection, logger *zap.Logger, queueName string, concurrency int, processor *Processor) (*Consumer, error) {
	if conn == nil {
		return nil, fmt.Errorf("RabbitMQ connection is nil")
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Consumer{
		conn:        conn,
		logger:      logger.Named("consumer"),
		queueName:   queueName,
		concurrency: concurrency,
		processor:   processor,
		stopChannel: make(chan struct{}),
	}, nil
}

// Start блокируется до вызова Stop и дожидается завершения всех воркеров.
func (c *Consumer) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("не удалось открыть канал RabbitMQ: %w", err)
	}
	defer ch.Close()

	q, err := declareQueue(ch, c.queueName)
	if err != nil {
		return err
	}
	c.logger.Info("Очередь успешно объявлена/найдена", zap.String("queue", q.Name))

	if err := ch.Qos(c.concurrency, 0, false); err != nil {
		return fmt.Errorf("не удалось установить QoS: %w", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"notification-dispatch-consumer",
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("не удалось зарегистрировать консьюмера: %w", err)
	}

	c.logger.Info("Консьюмер запущен, ожидание сообщений...", zap.Int("concurrency", c.concurrency))

	c.wg.Add(c.concurrency)
	for i := 0; i < c.concurrency; i++ {
		go c.worker(ctx, i, msgs)
	}

	<-c.stopChannel
	c.logger.Info("Получен сигнал остановки, отменяем контекст воркеров...")
	cancel()

	c.wg.Wait()
	c.logger.Info("Все воркеры консьюмера остановлены")
	return nil
}

func (c *Consumer) worker(ctx context.Context, workerID int, msgs <-chan amqp.Delivery) {
	defer c.wg.Done()
	logger := c.logger.With(zap.Int("worker_id", workerID))
	logger.Debug("Воркер запущен")
	for {
		select {
		case <-ctx.Done():
			logger.Debug("Воркер останавливается из-за отмены контекста")
			return
		case d, ok := <-msgs:
			if !ok {
				logger.Info("Канал сообщений закрыт, воркер завершает работу")
				return
			}
			c.processor.ProcessMessage(ctx, d)
		}
	}
}

func (c *Consumer) Stop() {
	c.stopOnce.Do(func() {
		c.logger.Info("Инициирована остановка консьюмера...")
		close(c.stopChannel)
	})
}

// declareQueue объявляет durable очередь; параметры должны совпадать у издателя и консьюмера.
func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("не удалось объявить очередь '%s': %w", name, err)
	}
	return q, nil
}
