package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"gymbuddy-server/internal/authutils"
	"gymbuddy-server/internal/interfaces/mocks"
	"gymbuddy-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGinZapLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	router := gin.New()
	router.Use(GinZapLogger(zap.New(core)))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("сохраняет входящий X-Request-ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
		entries := logs.FilterMessage("Request completed").All()
		if assert.Len(t, entries, 1) {
			assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
		}
	})

	t.Run("health не логируется", func(t *testing.T) {
		before := logs.Len()
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, before, logs.Len())
	})
}

func TestInterServiceAuth_Statuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "истёк", err: models.ErrTokenExpired, status: http.StatusUnauthorized},
		{name: "мусор", err: models.ErrTokenMalformed, status: http.StatusUnauthorized},
		{name: "неожиданная ошибка", err: assert.AnError, status: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verifier := new(mocks.InterServiceVerifier)
			verifier.On("VerifyInterServiceToken", mock.Anything, "tok").Return("", tc.err).Once()

			router := gin.New()
			router.GET("/internal/x", InterServiceAuth(verifier, zap.NewNop()), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/internal/x", nil)
			req.Header.Set(authutils.InterServiceHeader, "tok")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
		})
	}

	t.Run("имя сервиса попадает в контекст", func(t *testing.T) {
		verifier := new(mocks.InterServiceVerifier)
		verifier.On("VerifyInterServiceToken", mock.Anything, "tok").Return("admin-panel", nil).Once()

		var got string
		router := gin.New()
		router.GET("/internal/x", InterServiceAuth(verifier, zap.NewNop()), func(c *gin.Context) {
			got = c.GetString(SourceServiceKey)
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/internal/x", nil)
		req.Header.Set(authutils.InterServiceHeader, "tok")
		router.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "admin-panel", got)
	})
}
