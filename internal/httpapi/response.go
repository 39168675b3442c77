package httpapi

import (
	"context"
	"errors"
	"net/http"

	"emoheal/internal/services"

	"github.com/gin-gonic/gin"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// respondServiceError maps service errors onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	var devErr *services.DeviceError
	switch {
	case errors.As(err, &devErr):
		RespondError(c, http.StatusForbidden, "device_unavailable", errors.New(devErr.Message))
	case errors.Is(err, services.ErrNotAuthenticated):
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, services.ErrPermissionDenied):
		RespondError(c, http.StatusForbidden, "forbidden", err)
	case errors.Is(err, services.ErrInvalidMood),
		errors.Is(err, services.ErrInvalidFeedback),
		errors.Is(err, services.ErrInvalidSetting),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrInvalidPeriod):
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrAlertNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, services.ErrNotReady):
		RespondError(c, http.StatusServiceUnavailable, "not_ready", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		RespondError(c, http.StatusRequestTimeout, "cancelled", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}
