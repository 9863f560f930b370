package authutils

import (
	"context"
	"testing"
	"time"

	"gymbuddy-server/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInterServiceTokens(t *testing.T) {
	ctx := context.Background()
	tokens, err := NewInterServiceTokens("test-secret", "gymbuddy-notifications", time.Hour, zap.NewNop())
	require.NoError(t, err)

	t.Run("Выпуск и проверка", func(t *testing.T) {
		signed, err := tokens.Generate("admin-panel")
		require.NoError(t, err)

		service, err := tokens.VerifyInterServiceToken(ctx, signed)
		require.NoError(t, err)
		assert.Equal(t, "admin-panel", service)
	})

	t.Run("Чужая подпись", func(t *testing.T) {
		other, err := NewInterServiceTokens("other-secret", "x", time.Hour, zap.NewNop())
		require.NoError(t, err)
		signed, err := other.Generate("admin-panel")
		require.NoError(t, err)

		_, err = tokens.VerifyInterServiceToken(ctx, signed)
		assert.ErrorIs(t, err, models.ErrTokenInvalid)
	})

	t.Run("Истёкший токен", func(t *testing.T) {
		past, err := NewInterServiceTokens("test-secret", "x", time.Minute, zap.NewNop())
		require.NoError(t, err)
		past.nowFunc = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		signed, err := past.Generate("admin-panel")
		require.NoError(t, err)

		_, err = tokens.VerifyInterServiceToken(ctx, signed)
		assert.ErrorIs(t, err, models.ErrTokenExpired)
	})

	t.Run("Мусор вместо токена", func(t *testing.T) {
		_, err := tokens.VerifyInterServiceToken(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, models.ErrTokenMalformed)
	})

	t.Run("Другой алгоритм подписи", func(t *testing.T) {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "admin-panel"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = tokens.VerifyInterServiceToken(ctx, signed)
		assert.ErrorIs(t, err, models.ErrTokenInvalid)
	})

	t.Run("Без subject", func(t *testing.T) {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = tokens.VerifyInterServiceToken(ctx, signed)
		assert.ErrorIs(t, err, models.ErrTokenInvalid)
	})

	t.Run("Пустой секрет", func(t *testing.T) {
		_, err := NewInterServiceTokens("", "x", time.Hour, nil)
		assert.Error(t, err)
	})
}
