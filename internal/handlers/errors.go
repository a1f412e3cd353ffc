package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cyberkids_accounts/internal/apperr"
)

// statusFor maps an error kind to an HTTP status. authStatus is used for
// auth failures since login answers 400 while token paths answer 401.
func statusFor(err error, authStatus int) int {
	switch apperr.Kind(err) {
	case apperr.CodeValidation, apperr.CodeDuplicateKey:
		return http.StatusBadRequest
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeAuth:
		return authStatus
	default:
		return http.StatusInternalServerError
	}
}

// logFailure logs client errors at info and faults at error level.
func (h *Handler) logFailure(logKey string, err error, kv ...interface{}) {
	if h.log == nil || err == nil {
		return
	}
	fields := append([]interface{}{"err", err, "kind", apperr.Kind(err)}, kv...)
	if apperr.Kind(err) == apperr.CodeInternal {
		h.log.Errorw(logKey, fields...)
		return
	}
	h.log.Infow(logKey, fields...)
}

// respondMessage writes {key: message} with the status derived from err.
func (h *Handler) respondMessage(c *gin.Context, key string, authStatus int, logKey string, err error, kv ...interface{}) {
	h.logFailure(logKey, err, kv...)
	c.JSON(statusFor(err, authStatus), gin.H{key: apperr.Message(err)})
}

// respondError writes {error: message} for the linking endpoints. Their
// services never fail with an auth kind, so no auth status is chosen here.
func (h *Handler) respondError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	h.respondMessage(c, "error", http.StatusBadRequest, logKey, err, kv...)
}

// respondFields writes the per-field error map used by registration.
// Errors without field detail fall back to non_field_errors.
func (h *Handler) respondFields(c *gin.Context, logKey string, err error, kv ...interface{}) {
	h.logFailure(logKey, err, kv...)
	status := statusFor(err, http.StatusBadRequest)
	if fields := apperr.FieldErrors(err); len(fields) > 0 && status == http.StatusBadRequest {
		c.JSON(status, fields)
		return
	}
	c.JSON(status, gin.H{nonFieldErrors: []string{apperr.Message(err)}})
}

const nonFieldErrors = "non_field_errors"
