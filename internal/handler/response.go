package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taxipro/internal/triperr"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps error kinds to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch triperr.KindOf(err) {
	case triperr.Unauthenticated:
		return http.StatusUnauthorized
	case triperr.InvalidArgument:
		return http.StatusBadRequest
	case triperr.NotFound:
		return http.StatusNotFound
	case triperr.PermissionDenied:
		return http.StatusForbidden
	case triperr.FailedPrecondition:
		return http.StatusPreconditionFailed
	case triperr.AlreadyExists:
		return http.StatusConflict
	case triperr.ResourceExhausted:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
