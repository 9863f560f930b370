package middleware

import (
	"strings"

	"gymbuddy-server/internal/interfaces"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FirebaseUIDKey - ключ gin.Context с uid проверенного пользователя.
const FirebaseUIDKey = "firebase_uid"

// FirebaseAuth проверяет "Authorization: Bearer <ID token>" для callable эндпоинтов.
// Ошибки отдаются в формате callable.
func FirebaseAuth(verifier interfaces.IDTokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.With(zap.String("path", c.Request.URL.Path))

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Debug("Authorization header missing")
			AbortCallable(c, CallableUnauthenticated, "User must be authenticated")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			log.Warn("Invalid Authorization header format")
			AbortCallable(c, CallableUnauthenticated, "User must be authenticated")
			return
		}

		uid, err := verifier.VerifyIDToken(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			log.Warn("ID token verification failed", zap.Error(err))
			AbortCallable(c, CallableUnauthenticated, "User must be authenticated")
			return
		}

		c.Set(FirebaseUIDKey, uid)
		c.Next()
	}
}
