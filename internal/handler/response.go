package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ragchat/internal/ragerr"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Hint tells the user whether to fix their input, retry later, or wait
	// for the service to come back.
	Hint string `json:"hint"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func Fail(c *gin.Context, err error) {
	status, code, hint := classify(err)
	c.JSON(status, gin.H{"error": APIError{Code: code, Message: err.Error(), Hint: hint}})
}

func classify(err error) (status int, code, hint string) {
	switch {
	case errors.Is(err, ragerr.ErrInvalidConfig):
		return http.StatusBadRequest, "invalid_input", "fix your input and try again"
	case errors.Is(err, ragerr.ErrAuthInvalid):
		return http.StatusUnauthorized, "auth_invalid", "configure a valid API key"
	case errors.Is(err, ragerr.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found", "create a new session"
	case errors.Is(err, ragerr.ErrBusy):
		return http.StatusConflict, "session_busy", "wait for the current answer to finish"
	case errors.Is(err, ragerr.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited", "try again later"
	case errors.Is(err, ragerr.ErrProviderUnavailable):
		return http.StatusServiceUnavailable, "provider_unavailable", "service unavailable, try again later"
	default:
		return http.StatusInternalServerError, "internal", "unexpected error, try again later"
	}
}
