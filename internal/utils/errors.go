package utils

import (
	"errors"
	"net/http"
)

// AppError is the error type the HTTP layer knows how to render.
type AppError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap attaches the underlying cause for logging; the message shown to clients is unchanged.
func (e *AppError) Wrap(err error) *AppError {
	e.Err = err
	return e
}

func NewAppError(status int, message string) *AppError {
	return &AppError{StatusCode: status, Message: message}
}

func NewBadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message)
}

func NewUnauthorizedError(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, message)
}

func NewForbiddenError(message string) *AppError {
	return NewAppError(http.StatusForbidden, message)
}

func NewNotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, message)
}

func NewConflictError(message string) *AppError {
	return NewAppError(http.StatusConflict, message)
}

func NewInternalError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, message)
}

func NewBadGatewayError(message string) *AppError {
	return NewAppError(http.StatusBadGateway, message)
}

// StatusCode returns the HTTP status carried by err, or 500.
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
