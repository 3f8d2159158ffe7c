package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "equiprent/pkg/errors"
)

func TestWriteError_UsesAppErrorStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantError  string
	}{
		{
			name:       "slot unavailable",
			err:        apperrors.SlotUnavailable("Requested time is not available", nil),
			wantStatus: http.StatusConflict,
			wantCode:   apperrors.CodeSlotUnavailable,
			wantError:  "Requested time is not available",
		},
		{
			name:       "calendar unavailable",
			err:        apperrors.Unavailable("Calendar"),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   apperrors.CodeUnavailable,
			wantError:  "Calendar is temporarily unavailable",
		},
		{
			name:       "plain error hides details",
			err:        errors.New("mongo: connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperrors.CodeInternal,
			wantError:  "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			if err := WriteError(rec, tt.err); err != nil {
				t.Fatalf("WriteError returned %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			var body ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, body.Code)
			}
			if body.Error != tt.wantError {
				t.Errorf("expected error %q, got %q", tt.wantError, body.Error)
			}
		})
	}
}

func TestRequireQuery_ReportsMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/slots?equipmentType=excavators", nil)

	_, err := RequireQuery(req, "equipmentType", "equipmentId", "date")
	if err == nil {
		t.Fatal("expected error for missing parameters")
	}
	appErr := apperrors.AsAppError(err)
	missing, ok := appErr.Details["missing"].([]string)
	if !ok || len(missing) != 2 {
		t.Fatalf("expected two missing parameters, got %v", appErr.Details["missing"])
	}
}
