package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeTimeout      = "TIMEOUT"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
	CodeInvalidInput = "INVALID_INPUT"
	CodeRateLimited  = "RATE_LIMITED"

	CodeSlotUnavailable       = "SLOT_UNAVAILABLE"
	CodeInvalidScheduleWindow = "INVALID_SCHEDULE_WINDOW"
	CodeInvalidTransition     = "INVALID_TRANSITION"
)

// AppError is the error shape every handler writes. Err is logged, never serialized.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

func (e *AppError) StatusCode() int { return e.HTTPStatus }

func (e *AppError) ToJSON() []byte {
	data, _ := json.Marshal(ErrorResponse{Code: e.Code, Message: e.Message, Details: e.Details})
	return data
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus, Err: err}
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, resource+" not found", http.StatusNotFound)
}

func NotFoundWithID(resource, id string) *AppError {
	return NotFound(resource).WithDetails(map[string]any{"resource": resource, "id": id})
}

func Validation(message string, details map[string]any) *AppError {
	return New(CodeValidation, message, http.StatusUnprocessableEntity).WithDetails(details)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message, http.StatusBadRequest)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

func Internal(message string, err error) *AppError {
	return Wrap(err, CodeInternal, message, http.StatusInternalServerError)
}

func Timeout(message string) *AppError {
	return New(CodeTimeout, message, http.StatusGatewayTimeout)
}

func Unavailable(service string) *AppError {
	return New(CodeUnavailable, service+" is temporarily unavailable", http.StatusServiceUnavailable)
}

// SlotUnavailable is returned when the requested interval collides with a buffered busy block.
func SlotUnavailable(message string, details map[string]any) *AppError {
	return New(CodeSlotUnavailable, message, http.StatusConflict).WithDetails(details)
}

func InvalidScheduleWindow(message string, err error) *AppError {
	return Wrap(err, CodeInvalidScheduleWindow, message, http.StatusBadRequest)
}

func InvalidTransition(from, to string) *AppError {
	return New(
		CodeInvalidTransition,
		fmt.Sprintf("Cannot transition order from %s to %s", from, to),
		http.StatusConflict,
	).WithDetails(map[string]any{"from": from, "to": to})
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError unwraps to the first AppError in the chain, or reports err as internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
