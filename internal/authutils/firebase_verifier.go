package authutils

import (
	"context"
	"fmt"

	"gymbuddy-server/internal/interfaces"
	"gymbuddy-server/internal/models"

	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
)

// idTokenClient - часть firebase auth.Client, нужная для проверки ID токенов.
type idTokenClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

var _ interfaces.IDTokenVerifier = (*FirebaseVerifier)(nil)

// FirebaseVerifier проверяет Firebase ID токены пользователей мобильного приложения.
type FirebaseVerifier struct {
	client idTokenClient
	logger *zap.Logger
}

func NewFirebaseVerifier(client idTokenClient, logger *zap.Logger) *FirebaseVerifier {
	return &FirebaseVerifier{
		client: client,
		logger: logger.Named("FirebaseVerifier"),
	}
}

func (v *FirebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	if idToken == "" {
		return "", models.ErrUnauthenticated
	}
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		v.logger.Warn("Firebase ID token verification failed", zap.Error(err), zap.String("tokenSnippet", tokenSnippet(idToken)))
		if auth.IsIDTokenExpired(err) {
			return "", models.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", models.ErrTokenInvalid, err)
	}
	if token == nil || token.UID == "" {
		return "", fmt.Errorf("%w: uid missing", models.ErrTokenInvalid)
	}
	return token.UID, nil
}
