// Package errors is the error taxonomy returned across the service
// boundary and rendered as {"error":{code,message,details}}.
package errors

import (
	"net/http"
	"strings"
)

type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}

// Envelope is the response body for e.
func (e *APIError) Envelope() map[string]any {
	return map[string]any{"error": e}
}

// New builds an APIError. An empty message falls back to the lowercased
// HTTP status text.
func New(status int, code, message string) *APIError {
	if message == "" {
		message = strings.ToLower(http.StatusText(status))
	}
	return &APIError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

func Internal(message string) *APIError {
	return New(http.StatusInternalServerError, "internal_error", message)
}

func BadRequest(code, message string) *APIError {
	return New(http.StatusBadRequest, code, message)
}

// Validation wraps a domain validation failure as a 400 carrying the
// error's message.
func Validation(code string, err error) *APIError {
	return New(http.StatusBadRequest, code, err.Error())
}

func Unauthorized(message string) *APIError {
	return New(http.StatusUnauthorized, "unauthorized", message)
}

func NotFound(code, message string) *APIError {
	return New(http.StatusNotFound, code, message)
}

func Conflict(code, message string, details any) *APIError {
	err := New(http.StatusConflict, code, message)
	err.Details = details
	return err
}
