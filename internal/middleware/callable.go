package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Статусы ошибок протокола callable-функций Firebase.
const (
	CallableUnauthenticated   = "UNAUTHENTICATED"
	CallableInvalidArgument   = "INVALID_ARGUMENT"
	CallableResourceExhausted = "RESOURCE_EXHAUSTED"
	CallableInternal          = "INTERNAL"
)

var callableHTTPStatus = map[string]int{
	CallableUnauthenticated:   http.StatusUnauthorized,
	CallableInvalidArgument:   http.StatusBadRequest,
	CallableResourceExhausted: http.StatusTooManyRequests,
	CallableInternal:          http.StatusInternalServerError,
}

// CallableError - тело ошибки в формате callable-функций.
type CallableError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// AbortCallable прерывает запрос ошибкой {"error": {...}}.
func AbortCallable(c *gin.Context, status, message string) {
	code, ok := callableHTTPStatus[status]
	if !ok {
		code = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(code, gin.H{"error": CallableError{Status: status, Message: message}})
}

// RespondCallable отдает успешный результат {"result": ...}.
func RespondCallable(c *gin.Context, result interface{}) {
	c.JSON(http.StatusOK, gin.H{"result": result})
}
