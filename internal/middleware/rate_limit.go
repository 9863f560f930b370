package middleware

import (
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRateLimitStore возвращает Redis-хранилище счётчиков, если Redis настроен,
// иначе счётчики живут в памяти процесса.
func NewRateLimitStore(redisClient *redis.Client, window time.Duration, limit int) ratelimit.Store {
	if redisClient != nil {
		return ratelimit.RedisStore(&ratelimit.RedisOptions{
			RedisClient: redisClient,
			Rate:        window,
			Limit:       uint(limit),
		})
	}
	return ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  window,
		Limit: uint(limit),
	})
}

// CallableRateLimit ограничивает частоту вызовов на пользователя.
// Ставится после FirebaseAuth; без uid ключом служит IP клиента.
func CallableRateLimit(store ratelimit.Store, logger *zap.Logger) gin.HandlerFunc {
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: func(c *gin.Context, info ratelimit.Info) {
			logger.Warn("Rate limit exceeded",
				zap.String("key", rateLimitKey(c)),
				zap.Time("resetTime", info.ResetTime),
				zap.String("path", c.Request.URL.Path),
			)
			AbortCallable(c, CallableResourceExhausted, "Too many requests. Try again in "+time.Until(info.ResetTime).Round(time.Second).String())
		},
		KeyFunc: rateLimitKey,
	})
}

func rateLimitKey(c *gin.Context) string {
	if uid := c.GetString(FirebaseUIDKey); uid != "" {
		return "uid:" + uid
	}
	return "ip:" + c.ClientIP()
}
