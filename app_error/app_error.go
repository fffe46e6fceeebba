package app_error

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type statusError struct {
	error
	status int
}

func (e statusError) Unwrap() error {
	return e.error
}

func (e statusError) HTTPStatus() int {
	return e.status
}

func Validation(format string, args ...any) error {
	return statusError{fmt.Errorf(format, args...), http.StatusBadRequest}
}

func NotFound(format string, args ...any) error {
	return statusError{fmt.Errorf(format, args...), http.StatusNotFound}
}

func Forbidden(format string, args ...any) error {
	return statusError{fmt.Errorf(format, args...), http.StatusForbidden}
}

func Conflict(format string, args ...any) error {
	return statusError{fmt.Errorf(format, args...), http.StatusConflict}
}

func Internal(err error) error {
	return statusError{err, http.StatusInternalServerError}
}

// HTTPStatus walks the wrap chain for a status; errors without one are
// treated as internal.
func HTTPStatus(err error) int {
	var se interface{ HTTPStatus() int }
	if errors.As(err, &se) {
		return se.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// Respond writes the error as the standard {"error": ...} body. Internal
// errors are logged with their cause and surfaced with a generic message.
func Respond(c *gin.Context, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
