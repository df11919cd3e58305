package response_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"lodge/shared/failure"
	"lodge/transport/http/response"

	"github.com/stretchr/testify/assert"
)

func TestWithError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedMsg  string
		expectedKind failure.Kind
	}{
		{
			name:         "room conflict",
			err:          failure.RoomConflict("r1"),
			expectedCode: http.StatusConflict,
			expectedMsg:  "room r1 is not available for the selected dates",
			expectedKind: failure.KindRoomConflict,
		},
		{
			name:         "invalid date range",
			err:          failure.InvalidDateRange("check_out must be after check_in"),
			expectedCode: http.StatusBadRequest,
			expectedMsg:  "check_out must be after check_in",
			expectedKind: failure.KindInvalidDateRange,
		},
		{
			name:         "wrapped failure",
			err:          errors.Join(errors.New("context"), failure.NotFound("booking not found")),
			expectedCode: http.StatusNotFound,
			expectedMsg:  "booking not found",
			expectedKind: failure.KindNotFound,
		},
		{
			name:         "store error is hidden",
			err:          errors.New("pq: password authentication failed"),
			expectedCode: http.StatusInternalServerError,
			expectedMsg:  "internal server error",
			expectedKind: failure.KindPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()

			response.WithError(recorder, tt.err)

			var body struct {
				Error string       `json:"error"`
				Kind  failure.Kind `json:"kind"`
			}

			assert.Equal(t, tt.expectedCode, recorder.Code)
			assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
			assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedMsg, body.Error)
			assert.Equal(t, tt.expectedKind, body.Kind)
		})
	}
}

func TestWithJSON(t *testing.T) {
	recorder := httptest.NewRecorder()

	response.WithJSON(recorder, http.StatusCreated, map[string]string{"booking_reference": "KL-2026-1234"})

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.JSONEq(t, `{"data":{"booking_reference":"KL-2026-1234"}}`, recorder.Body.String())
}
