package repository

import (
	"context"
	"fmt"

	"gymbuddy-server/internal/interfaces"
	"gymbuddy-server/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ interfaces.TokenRepository = (*redisTokenRepository)(nil)

// redisTokenRepository хранит токены пользователя во множестве fcm_tokens:{userId}.
// Пустое множество в Redis не существует, поэтому "нет набора" и "пустой набор"
// неразличимы - оба дают ErrTokenSetNotFound.
type redisTokenRepository struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisTokenRepository создает Redis-хранилище токенов.
func NewRedisTokenRepository(client *redis.Client, keyPrefix string, logger *zap.Logger) interfaces.TokenRepository {
	if keyPrefix == "" {
		keyPrefix = models.TokensCollection
	}
	return &redisTokenRepository{
		client: client,
		prefix: keyPrefix,
		logger: logger.Named("RedisTokenRepo"),
	}
}

// TokenSetKey возвращает ключ множества токенов пользователя.
func TokenSetKey(prefix, userID string) string {
	return fmt.Sprintf("%s:%s", prefix, userID)
}

func (r *redisTokenRepository) GetTokens(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, models.ErrTokenSetNotFound
	}
	key := TokenSetKey(r.prefix, userID)
	tokens, err := r.client.SMembers(ctx, key).Result()
	if err != nil {
		r.logger.Error("Failed to read token set from redis", zap.Error(err), zap.String("key", key))
		return nil, fmt.Errorf("failed to read token set %s: %w", key, err)
	}
	if len(tokens) == 0 {
		return nil, models.ErrTokenSetNotFound
	}
	return tokens, nil
}

func (r *redisTokenRepository) RemoveTokens(ctx context.Context, userID string, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	key := TokenSetKey(r.prefix, userID)
	members := make([]interface{}, 0, len(tokens))
	for _, t := range tokens {
		members = append(members, t)
	}

	removed, err := r.client.SRem(ctx, key, members...).Result()
	if err != nil {
		r.logger.Error("Failed to remove tokens from redis set", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to remove tokens from %s: %w", key, err)
	}
	r.logger.Info("Невалидные токены удалены", zap.String("user_id", userID), zap.Int64("removed", removed))
	return nil
}
