package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httputil "natgpt/internal/pkg/http"
	"natgpt/internal/service"
)

// ErrorResponse alias of the shared error envelope.
type ErrorResponse = httputil.ErrorResponse

// SuccessResponse alias of the shared success envelope.
type SuccessResponse = httputil.SuccessResponse

// Error codes: the first three digits are the HTTP status.
const (
	CodeBadRequest   = 40001
	CodeUnauthorized = 40101
	CodeForbidden    = 40301
	CodeNotFound     = 40401
	CodeTooLarge     = 41301
	CodeUnsupported  = 41501
	CodeRateLimited  = 42901
	CodeInternal     = 50001
	CodeUnavailable  = 50301
)

// respondError writes an error envelope.
func respondError(c *gin.Context, status, code int, message string, detail ...string) {
	c.AbortWithStatusJSON(status, httputil.NewErrorResponse(code, message, detail...))
}

// respondServiceError maps a use-case error to its status and envelope.
func respondServiceError(c *gin.Context, err error) {
	switch service.KindOf(err) {
	case service.KindValidation:
		respondError(c, http.StatusBadRequest, CodeBadRequest, err.Error())
	case service.KindNotFound:
		respondError(c, http.StatusNotFound, CodeNotFound, err.Error())
	case service.KindForbidden:
		respondError(c, http.StatusForbidden, CodeForbidden, err.Error())
	case service.KindUnavailable:
		respondError(c, http.StatusServiceUnavailable, CodeUnavailable, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, CodeInternal, err.Error())
	}
}

// respondOK writes a success envelope.
func respondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, httputil.NewSuccessResponse(message, data))
}
