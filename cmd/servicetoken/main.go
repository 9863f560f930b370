// Команда servicetoken выпускает межсервисный токен для вызова
// POST /internal/notifications/:id/dispatch.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gymbuddy-server/internal/authutils"
	"gymbuddy-server/internal/config"
	"gymbuddy-server/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config.yml", "путь к config.yml")
	envFile := flag.String("env", ".env", "путь к .env")
	serviceName := flag.String("service", "", "имя вызывающего сервиса (subject токена)")
	flag.Parse()

	if *serviceName == "" {
		fmt.Fprintln(os.Stderr, "флаг -service обязателен")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath, *envFile)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	zapLogger, err := logger.New(logger.Config{Level: "warn", Encoding: "console", OutputPath: "stderr"})
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer zapLogger.Sync()

	tokens, err := authutils.NewInterServiceTokens(cfg.InterService.Secret, cfg.InterService.ServiceID, cfg.InterService.TokenTTL, zapLogger)
	if err != nil {
		zapLogger.Fatal("Межсервисный секрет не настроен", zap.Error(err))
	}
	token, err := tokens.Generate(*serviceName)
	if err != nil {
		zapLogger.Fatal("Не удалось выпустить токен", zap.Error(err))
	}
	fmt.Println(token)
}
