package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("connection reset")

	tests := []struct {
		name    string
		err     *AppError
		code    string
		status  int
		message string
	}{
		{"not found", NotFound("Order"), CodeNotFound, http.StatusNotFound, "Order not found"},
		{"not found with id", NotFoundWithID("Reservation", "12345"), CodeNotFound, http.StatusNotFound, "Reservation not found"},
		{"validation", Validation("Order validation failed", nil), CodeValidation, http.StatusUnprocessableEntity, "Order validation failed"},
		{"invalid input", InvalidInput("bad date"), CodeInvalidInput, http.StatusBadRequest, "bad date"},
		{"conflict", Conflict("changed"), CodeConflict, http.StatusConflict, "changed"},
		{"internal", Internal("boom", cause), CodeInternal, http.StatusInternalServerError, "boom"},
		{"timeout", Timeout("too slow"), CodeTimeout, http.StatusGatewayTimeout, "too slow"},
		{"unavailable", Unavailable("Calendar"), CodeUnavailable, http.StatusServiceUnavailable, "Calendar is temporarily unavailable"},
		{"slot unavailable", SlotUnavailable("taken", nil), CodeSlotUnavailable, http.StatusConflict, "taken"},
		{"schedule window", InvalidScheduleWindow("bad window", cause), CodeInvalidScheduleWindow, http.StatusBadRequest, "bad window"},
		{"transition", InvalidTransition("completed", "pending"), CodeInvalidTransition, http.StatusConflict, "Cannot transition order from completed to pending"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.StatusCode())
			assert.Equal(t, tt.message, tt.err.Message)
		})
	}
}

func TestDetails(t *testing.T) {
	assert.Equal(t, map[string]any{"resource": "Reservation", "id": "12345"}, NotFoundWithID("Reservation", "12345").Details)
	assert.Equal(t, map[string]any{"from": "completed", "to": "pending"}, InvalidTransition("completed", "pending").Details)
	assert.Equal(t, "TB145", SlotUnavailable("taken", map[string]any{"equipmentId": "TB145"}).Details["equipmentId"])
	assert.Nil(t, Validation("failed", nil).Details)
}

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: Order not found", NotFound("Order").Error())
	assert.Equal(t,
		"INTERNAL_ERROR: internal error (caused by: database connection failed)",
		Internal("internal error", errors.New("database connection failed")).Error(),
	)
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("granularity must be positive")

	assert.ErrorIs(t, InvalidScheduleWindow("Invalid schedule window", cause), cause)
	assert.ErrorIs(t, Wrap(cause, CodeInternal, "wrapped", http.StatusInternalServerError), cause)
	assert.Nil(t, errors.Unwrap(Conflict("busy")))
}

func TestAsAppError(t *testing.T) {
	appErr := Conflict("busy")
	wrapped := fmt.Errorf("reserve: %w", appErr)

	assert.True(t, IsAppError(wrapped))
	assert.Same(t, appErr, AsAppError(wrapped))

	plain := errors.New("regular error")
	assert.False(t, IsAppError(plain))
	got := AsAppError(plain)
	assert.Equal(t, CodeInternal, got.Code)
	assert.ErrorIs(t, got, plain)
}

func TestAppError_ToJSON(t *testing.T) {
	data := NotFoundWithID("Reservation", "12345").ToJSON()
	require.NotEmpty(t, data)
	assert.JSONEq(t,
		`{"code":"NOT_FOUND","message":"Reservation not found","details":{"resource":"Reservation","id":"12345"}}`,
		string(data),
	)

	data = Internal("boom", errors.New("secret")).ToJSON()
	assert.NotContains(t, string(data), "secret")
}
