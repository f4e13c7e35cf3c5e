package common

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"bawabt.com/labour/core"
)

// ErrorResponse is the error body for every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{Error: message}
}

// Classify maps a core error to its HTTP status and client-facing message.
// Upstream and unknown errors surface as a generic 500 message; the caller
// is expected to log them.
func Classify(err error) (int, string) {
	var validation *core.ValidationError
	var duplicate *core.DuplicateError
	var notFound *core.NotFoundError
	var forbidden *core.ForbiddenError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Message
	case errors.As(err, &duplicate):
		return http.StatusBadRequest, duplicate.Message
	case errors.As(err, &notFound):
		return http.StatusNotFound, notFound.Error()
	case errors.As(err, &forbidden):
		return http.StatusForbidden, forbidden.Message
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// Fail writes the error body for a failed operation.
func Fail(c *gin.Context, err error) {
	status, message := Classify(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, NewErrorResponse(message))
}
