package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func Conflict(c *gin.Context, code, message string) {
	Write(c, http.StatusConflict, code, message)
}

func NotFoundStatus(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

// WriteError maps a typed error from the core onto the HTTP surface.
func WriteError(c *gin.Context, err error) {
	switch {
	case IsValidation(err):
		BadRequest(c, "validation_error", err.Error())
	case IsNotFound(err):
		NotFoundStatus(c, err.Error(), "Resource not found.")
	case IsSignature(err):
		BadRequest(c, "invalid_signature", "Webhook signature verification failed.")
	case IsUpstream(err):
		Internal(c, "upstream_error", "Dependency unavailable, try again.")
	default:
		if reason, ok := ConflictReason(err); ok {
			Conflict(c, reason, "Booking not admissible: "+reason)
			return
		}
		var be BusinessError
		if errors.As(err, &be) {
			BadRequest(c, be.Code, "Request cannot be applied in the current state.")
			return
		}
		Internal(c, "internal_error", "Unexpected error.")
	}
}
