package middleware

import (
	"errors"
	"net/http"

	"gymbuddy-server/internal/authutils"
	"gymbuddy-server/internal/interfaces"
	"gymbuddy-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SourceServiceKey - ключ gin.Context с именем вызывающего сервиса.
const SourceServiceKey = "source_service"

// InterServiceAuth проверяет межсервисный JWT в X-Internal-Service-Token.
func InterServiceAuth(verifier interfaces.InterServiceVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.With(zap.String("path", c.Request.URL.Path))

		tokenString := c.GetHeader(authutils.InterServiceHeader)
		if tokenString == "" {
			log.Warn("X-Internal-Service-Token header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized: Missing inter-service token"})
			return
		}

		service, err := verifier.VerifyInterServiceToken(c.Request.Context(), tokenString)
		if err != nil {
			status := http.StatusUnauthorized
			msg := "Unauthorized: Invalid inter-service token"
			switch {
			case errors.Is(err, models.ErrTokenExpired):
				msg = "Unauthorized: Inter-service token expired"
			case errors.Is(err, models.ErrTokenMalformed), errors.Is(err, models.ErrTokenInvalid):
			default:
				log.Error("Unexpected inter-service token verification error", zap.Error(err))
				status = http.StatusInternalServerError
				msg = "Internal server error during inter-service token verification"
			}
			log.Warn("Inter-service token verification failed", zap.Error(err))
			c.AbortWithStatusJSON(status, gin.H{"message": msg})
			return
		}

		c.Set(SourceServiceKey, service)
		log.Debug("Inter-service request authorized", zap.String("sourceService", service))
		c.Next()
	}
}
