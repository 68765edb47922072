// Package response renders API errors in the {"error","message"} shape.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smallbiznis/jobboard/internal/service"
)

// KindRateLimited is emitted by the rate limiter and never by services.
const KindRateLimited service.Kind = "rate_limited"

// Body is the JSON error envelope.
type Body struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var defaultMessages = map[service.Kind]string{
	service.KindUnauthenticated:      "authentication required",
	service.KindInvalidToken:         "invalid or expired token",
	service.KindForbidden:            "access denied",
	service.KindNotFound:             "resource not found",
	service.KindValidation:           "invalid request",
	service.KindDuplicateApplication: "you have already applied for this job",
}

// StatusFor maps a taxonomy kind onto an HTTP status.
func StatusFor(kind service.Kind) int {
	switch kind {
	case service.KindUnauthenticated, service.KindInvalidToken:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindValidation, service.KindDuplicateApplication:
		return http.StatusBadRequest
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Abort writes the error envelope for err and stops the handler chain.
// Errors outside the taxonomy are logged and reported as server_error without
// leaking their text.
func Abort(c *gin.Context, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		message := svcErr.Description
		if message == "" {
			message = defaultMessages[svcErr.Kind]
		}
		AbortWith(c, svcErr.Kind, message)
		return
	}

	zap.L().Error("request failed",
		zap.String("request_id", c.GetString("request_id")),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	_ = c.Error(err)
	AbortWith(c, service.KindServer, "server error")
}

// AbortWith writes an explicit kind and message.
func AbortWith(c *gin.Context, kind service.Kind, message string) {
	c.AbortWithStatusJSON(StatusFor(kind), Body{Error: string(kind), Message: message})
}
