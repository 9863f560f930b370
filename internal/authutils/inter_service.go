package authutils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gymbuddy-server/internal/interfaces"
	"gymbuddy-server/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InterServiceHeader - заголовок с межсервисным токеном.
const InterServiceHeader = "X-Internal-Service-Token"

var _ interfaces.InterServiceVerifier = (*InterServiceTokens)(nil)

// InterServiceClaims - claims межсервисного токена. Subject - имя вызывающего сервиса.
type InterServiceClaims struct {
	jwt.RegisteredClaims
	RequestingService string `json:"rs,omitempty"`
}

// InterServiceTokens выпускает и проверяет HS256 токены для вызовов между сервисами.
type InterServiceTokens struct {
	secret  string
	issuer  string
	ttl     time.Duration
	logger  *zap.Logger
	nowFunc func() time.Time
}

func NewInterServiceTokens(secret, issuer string, ttl time.Duration, logger *zap.Logger) (*InterServiceTokens, error) {
	if secret == "" {
		return nil, errors.New("inter-service secret cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &InterServiceTokens{
		secret:  secret,
		issuer:  issuer,
		ttl:     ttl,
		logger:  logger.Named("InterServiceTokens"),
		nowFunc: time.Now,
	}, nil
}

// Generate выпускает токен для сервиса serviceName.
func (v *InterServiceTokens) Generate(serviceName string) (string, error) {
	if serviceName == "" {
		return "", errors.New("service name cannot be empty")
	}
	now := v.nowFunc()
	claims := &InterServiceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			Subject:   serviceName,
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		RequestingService: serviceName,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(v.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyInterServiceToken проверяет подпись и срок действия, возвращает имя сервиса.
func (v *InterServiceTokens) VerifyInterServiceToken(ctx context.Context, tokenString string) (string, error) {
	log := v.logger.With(zap.String("tokenSnippet", tokenSnippet(tokenString)))
	claims := &InterServiceClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			log.Warn("Unexpected signing method", zap.Any("alg", token.Header["alg"]))
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.secret), nil
	}, jwt.WithTimeFunc(v.nowFunc))
	if err != nil {
		log.Warn("Failed to parse or verify inter-service token", zap.Error(err))
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", models.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", models.ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", models.ErrTokenInvalid
		}
		return "", fmt.Errorf("%w: %v", models.ErrTokenInvalid, err)
	}
	if !token.Valid {
		return "", models.ErrTokenInvalid
	}
	if claims.Subject == "" {
		log.Warn("Inter-service token missing subject")
		return "", fmt.Errorf("%w: subject missing", models.ErrTokenInvalid)
	}

	log.Debug("Inter-service token verified", zap.String("sourceService", claims.Subject))
	return claims.Subject, nil
}

// tokenSnippet возвращает безопасную для логгирования часть токена.
func tokenSnippet(tokenString string) string {
	limit := 15
	if len(tokenString) > limit {
		return tokenString[:limit] + "..."
	}
	return tokenString
}
