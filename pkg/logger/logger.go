package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config содержит настройки логгера сервиса уведомлений.
type Config struct {
	Level      string // debug, info, warn, error
	Encoding   string // json или console; пусто - json, в development - console
	OutputPath string // пусто = stdout
	Service    string // попадает в каждую запись полем service
	Env        string // development включает caller и console по умолчанию
}

const developmentEnv = "development"

// New собирает zap.Logger по конфигурации.
// Неизвестный уровень не является фатальной ошибкой: используется info,
// а сам собранный логгер пишет предупреждение.
func New(cfg Config) (*zap.Logger, error) {
	level, levelErr := parseLevel(cfg.Level)
	dev := strings.EqualFold(cfg.Env, developmentEnv)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	outputPath := cfg.OutputPath
	if outputPath == "" {
		outputPath = "stdout"
	}

	fields := map[string]interface{}{}
	if cfg.Service != "" {
		fields["service"] = cfg.Service
	}
	if cfg.Env != "" {
		fields["env"] = cfg.Env
	}

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       dev,
		DisableCaller:     !dev,
		DisableStacktrace: true,
		Encoding:          encoding(cfg.Encoding, dev),
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{outputPath},
		ErrorOutputPaths:  []string{"stderr"},
		InitialFields:     fields,
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	if levelErr != nil {
		logger.Warn("Неизвестный уровень логирования, используется info",
			zap.String("requested_level", cfg.Level), zap.Error(levelErr))
	}
	return logger, nil
}

func parseLevel(raw string) (zapcore.Level, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return zapcore.InfoLevel, err
	}
	return level, nil
}

func encoding(raw string, dev bool) string {
	switch e := strings.ToLower(raw); e {
	case "json", "console":
		return e
	}
	if dev {
		return "console"
	}
	return "json"
}

// TokenPrefix возвращает начало push-токена, безопасное для логов.
func TokenPrefix(token string) string {
	const prefixLen = 10
	if len(token) <= prefixLen {
		return token
	}
	return token[:prefixLen] + "..."
}

// Token - поле zap с укороченным push-токеном.
func Token(token string) zap.Field {
	return zap.String("token_prefix", TokenPrefix(token))
}

// Tokens - поле zap со списком укороченных push-токенов.
func Tokens(tokens []string) zap.Field {
	prefixes := make([]string, 0, len(tokens))
	for _, t := range tokens {
		prefixes = append(prefixes, TokenPrefix(t))
	}
	return zap.Strings("token_prefixes", prefixes)
}
