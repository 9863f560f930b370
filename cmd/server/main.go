package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gymbuddy-server/internal/authutils"
	"gymbuddy-server/internal/config"
	"gymbuddy-server/internal/handler"
	"gymbuddy-server/internal/interfaces"
	"gymbuddy-server/internal/messaging"
	"gymbuddy-server/internal/middleware"
	"gymbuddy-server/internal/push"
	"gymbuddy-server/internal/repository"
	"gymbuddy-server/internal/service"
	"gymbuddy-server/internal/watcher"
	"gymbuddy-server/pkg/logger"

	firebase "firebase.google.com/go/v4"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

func main() {
	startedAt := time.Now().UTC()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yml"
	}
	cfg, err := config.LoadConfig(configPath, ".env")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Log.Level,
		Encoding: cfg.Log.Encoding,
		Service:  "notification-dispatcher",
		Env:      cfg.Env,
	})
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)
	zapLogger.Info("Логгер инициализирован",
		zap.String("logLevel", cfg.Log.Level),
		zap.String("tokenStore", cfg.TokenStore.Backend),
		zap.String("pushMode", cfg.Push.Mode),
		zap.Bool("broker", cfg.UseBroker()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Firebase ---
	app, err := newFirebaseApp(ctx, cfg)
	if err != nil {
		zapLogger.Fatal("Не удалось инициализировать Firebase", zap.Error(err))
	}
	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		zapLogger.Fatal("Не удалось создать клиент Firestore", zap.Error(err))
	}
	defer firestoreClient.Close()
	authClient, err := app.Auth(ctx)
	if err != nil {
		zapLogger.Fatal("Не удалось создать клиент Firebase Auth", zap.Error(err))
	}

	// --- Redis (хранилище токенов и/или счётчики rate limit) ---
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = connectRedis(ctx, cfg.Redis, zapLogger)
		if err != nil {
			zapLogger.Fatal("Не удалось подключиться к Redis", zap.Error(err))
		}
		defer redisClient.Close()
	}

	// --- Репозитории ---
	notificationRepo := repository.NewFirestoreNotificationRepository(firestoreClient, cfg.Firestore.NotificationsCollection, zapLogger)
	var tokenRepo interfaces.TokenRepository
	switch cfg.TokenStore.Backend {
	case config.TokenStoreRedis:
		tokenRepo = repository.NewRedisTokenRepository(redisClient, cfg.Redis.KeyPrefix, zapLogger)
	default:
		tokenRepo = repository.NewFirestoreTokenRepository(firestoreClient, cfg.Firestore.TokensCollection, zapLogger)
	}

	// --- Отправка push ---
	var sender interfaces.PushSender
	if cfg.Push.Mode == config.PushModeStub {
		zapLogger.Warn("Используется заглушка FCM, уведомления не отправляются")
		sender = push.NewStubSender(zapLogger)
	} else {
		messagingClient, err := app.Messaging(ctx)
		if err != nil {
			zapLogger.Fatal("Не удалось создать клиент FCM", zap.Error(err))
		}
		sender, err = push.NewFCMSender(messagingClient, zapLogger)
		if err != nil {
			zapLogger.Fatal("Ошибка инициализации FCM Sender", zap.Error(err))
		}
	}

	dispatcher := service.NewDispatcher(tokenRepo, notificationRepo, sender, zapLogger)
	testTrigger := service.NewTestTrigger(notificationRepo, zapLogger)

	// --- Доставка событий: RabbitMQ или в процессе ---
	var (
		sink            interfaces.EventPublisher
		consumer        *messaging.Consumer
		consumerErrChan = make(chan error, 1)
	)
	if cfg.UseBroker() {
		rabbitConn, err := connectRabbitMQ(cfg.RabbitMQ.URI, zapLogger)
		if err != nil {
			zapLogger.Fatal("Не удалось подключиться к RabbitMQ", zap.Error(err))
		}
		defer rabbitConn.Close()

		sink, err = messaging.NewRabbitEventPublisher(rabbitConn, cfg.RabbitMQ.QueueName, zapLogger)
		if err != nil {
			zapLogger.Fatal("Не удалось создать издателя событий", zap.Error(err))
		}
		processor := messaging.NewProcessor(zapLogger, dispatcher, cfg.DispatchTimeout)
		consumer, err = messaging.NewConsumer(rabbitConn, zapLogger, cfg.RabbitMQ.QueueName, cfg.WorkerConcurrency, processor)
		if err != nil {
			zapLogger.Fatal("Не удалось создать консьюмера RabbitMQ", zap.Error(err))
		}
		go func() {
			zapLogger.Info("Запуск консьюмера RabbitMQ...")
			err := consumer.Start()
			if err != nil {
				zapLogger.Error("Консьюмер RabbitMQ завершился с ошибкой", zap.Error(err))
			}
			consumerErrChan <- err
		}()
	} else {
		zapLogger.Info("RABBITMQ_URI не задан, события обрабатываются в процессе")
		sink = service.NewDirectPublisher(dispatcher, cfg.DispatchTimeout, zapLogger)
	}

	watcherDone := make(chan struct{})
	if cfg.Watcher.Enabled {
		w := watcher.New(firestoreClient, cfg.Firestore.NotificationsCollection, sink, startedAt, zapLogger)
		go func() {
			defer close(watcherDone)
			if err := w.Run(ctx); err != nil {
				zapLogger.Error("Watcher завершился с ошибкой", zap.Error(err))
			}
		}()
	} else {
		close(watcherDone)
		zapLogger.Info("Watcher отключён, доставка только через внутренний эндпоинт")
	}

	// --- HTTP ---
	router := newRouter(cfg, zapLogger)

	var interServiceAuth gin.HandlerFunc
	if cfg.InterService.Secret != "" {
		interServiceTokens, err := authutils.NewInterServiceTokens(cfg.InterService.Secret, cfg.InterService.ServiceID, cfg.InterService.TokenTTL, zapLogger)
		if err != nil {
			zapLogger.Fatal("Ошибка инициализации межсервисной авторизации", zap.Error(err))
		}
		interServiceAuth = middleware.InterServiceAuth(interServiceTokens, zapLogger)
	}
	rateLimitStore := middleware.NewRateLimitStore(redisClient, cfg.RateLimit.Window, cfg.RateLimit.TestTriggerLimit)

	notificationHandler := handler.NewNotificationHandler(testTrigger, notificationRepo, dispatcher, cfg.DispatchTimeout, zapLogger)
	notificationHandler.RegisterRoutes(router,
		middleware.FirebaseAuth(authutils.NewFirebaseVerifier(authClient, zapLogger), zapLogger),
		middleware.CallableRateLimit(rateLimitStore, zapLogger),
		interServiceAuth,
	)

	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	serverErrChan := make(chan error, 1)
	go func() {
		zapLogger.Info("Запуск HTTP сервера", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	// --- Ожидание сигнала завершения ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		zapLogger.Info("Получен сигнал завершения, начинаем остановку...")
	case err := <-serverErrChan:
		zapLogger.Error("HTTP сервер завершился с ошибкой, инициируем остановку", zap.Error(err))
	case err := <-consumerErrChan:
		zapLogger.Error("Консьюмер завершился, инициируем остановку", zap.Error(err))
		consumer = nil
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Ошибка при остановке HTTP сервера", zap.Error(err))
	}

	cancel()
	<-watcherDone

	if consumer != nil {
		consumer.Stop()
		<-consumerErrChan
	}

	zapLogger.Info("Сервис уведомлений успешно остановлен")
}

func newFirebaseApp(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	var opts []option.ClientOption
	if cfg.Firebase.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Firebase.CredentialsPath))
	}
	var fbConfig *firebase.Config
	if cfg.Firebase.ProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.Firebase.ProjectID}
	}
	app, err := firebase.NewApp(ctx, fbConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}
	return app, nil
}

func newRouter(cfg *config.Config, zapLogger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(middleware.GinZapLogger(zapLogger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if origins := cfg.GetAllowedOrigins(); len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	return router
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, zapLogger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	zapLogger.Info("Подключение к Redis установлено", zap.String("addr", cfg.Addr))
	return client, nil
}

// connectRabbitMQ пытается подключиться к RabbitMQ с несколькими попытками.
func connectRabbitMQ(uri string, zapLogger *zap.Logger) (*amqp.Connection, error) {
	var (
		connection *amqp.Connection
		err        error
	)
	maxRetries := 50
	retryDelay := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		connection, err = amqp.Dial(uri)
		if err == nil {
			zapLogger.Info("Подключение к RabbitMQ успешно установлено")
			go func() {
				notifyClose := make(chan *amqp.Error, 1)
				connection.NotifyClose(notifyClose)
				if closeErr := <-notifyClose; closeErr != nil {
					zapLogger.Error("Соединение с RabbitMQ разорвано", zap.Error(closeErr))
				}
			}()
			return connection, nil
		}
		zapLogger.Warn("Не удалось подключиться к RabbitMQ, попытка переподключения...",
			zap.Error(err),
			zap.Int("retry", i+1),
			zap.Duration("delay", retryDelay),
		)
		time.Sleep(retryDelay)
	}
	return nil, fmt.Errorf("не удалось подключиться к RabbitMQ после %d попыток: %w", maxRetries, err)
}
