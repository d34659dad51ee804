package router

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is http-facing error carrying response status
type Error struct {
	Status  int
	Message string
}

// Error implementation
func (err *Error) Error() string {
	return err.Message
}

// NewError returns new error with given status and formatted message
func NewError(status int, format string, args ...interface{}) *Error {
	return &Error{
		Status:  status,
		Message: fmt.Sprintf(format, args...),
	}
}

// BadRequest returns 400 error
func BadRequest(format string, args ...interface{}) *Error {
	return NewError(http.StatusBadRequest, format, args...)
}

// Forbidden returns 403 error
func Forbidden(format string, args ...interface{}) *Error {
	return NewError(http.StatusForbidden, format, args...)
}

// NotFound returns 404 error
func NotFound(format string, args ...interface{}) *Error {
	return NewError(http.StatusNotFound, format, args...)
}

// Conflict returns 409 error
func Conflict(format string, args ...interface{}) *Error {
	return NewError(http.StatusConflict, format, args...)
}

// Internal returns 500 error
func Internal(format string, args ...interface{}) *Error {
	return NewError(http.StatusInternalServerError, format, args...)
}

// ErrorBody is json error envelope
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes error
type ErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func statusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}

	return http.StatusInternalServerError
}

func writeError(ctx *Context, err error) {
	var e *Error
	if !errors.As(err, &e) {
		ctx.Log.WithError(err).Error("Unhandled request error")

		e = Internal("Internal server error")
	}

	werr := ctx.JSON(e.Status, &ErrorBody{
		Error: ErrorDetail{
			Code:    e.Status,
			Message: e.Message,
		},
	})
	if werr != nil {
		ctx.Log.WithError(werr).Error("Writing error response")
	}
}
