package repository

import (
	"context"
	"fmt"

	"gymbuddy-server/internal/interfaces"
	"gymbuddy-server/internal/models"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const fieldTokens = "tokens"

var _ interfaces.TokenRepository = (*firestoreTokenRepository)(nil)

// firestoreTokenRepository хранит токены в fcm_tokens/{userId}.tokens.
type firestoreTokenRepository struct {
	client     *firestore.Client
	collection string
	logger     *zap.Logger
}

// NewFirestoreTokenRepository создает репозиторий токенов поверх Firestore.
func NewFirestoreTokenRepository(client *firestore.Client, collection string, logger *zap.Logger) interfaces.TokenRepository {
	if collection == "" {
		collection = models.TokensCollection
	}
	return &firestoreTokenRepository{
		client:     client,
		collection: collection,
		logger:     logger.Named("FirestoreTokenRepo"),
	}
}

func (r *firestoreTokenRepository) GetTokens(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, models.ErrTokenSetNotFound
	}
	snap, err := r.client.Collection(r.collection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.ErrTokenSetNotFound
		}
		return nil, fmt.Errorf("failed to get token set for user %s: %w", userID, err)
	}
	if !snap.Exists() {
		return nil, models.ErrTokenSetNotFound
	}

	tokens := tokensFromField(snap.Data()[fieldTokens])
	r.logger.Debug("Токены пользователя прочитаны", zap.String("user_id", userID), zap.Int("token_count", len(tokens)))
	return tokens, nil
}

func (r *firestoreTokenRepository) RemoveTokens(ctx context.Context, userID string, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(tokens))
	for _, t := range tokens {
		values = append(values, t)
	}

	// arrayRemove выполняется на сервере атомарно и не трогает токены,
	// добавленные параллельно после чтения набора
	_, err := r.client.Collection(r.collection).Doc(userID).Update(ctx, []firestore.Update{
		{Path: fieldTokens, Value: firestore.ArrayRemove(values...)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			r.logger.Info("Документ токенов уже удалён, удалять нечего", zap.String("user_id", userID))
			return nil
		}
		return fmt.Errorf("failed to remove %d tokens for user %s: %w", len(tokens), userID, err)
	}
	r.logger.Info("Невалидные токены удалены", zap.String("user_id", userID), zap.Int("removed", len(tokens)))
	return nil
}

// tokensFromField достаёт строки из массива tokens; отсутствие поля - пустой набор.
func tokensFromField(v interface{}) []string {
	switch arr := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(arr))
		for _, item := range arr {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		out := make([]string, 0, len(arr))
		for _, s := range arr {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
