package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberField_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    NumberField
		wantErr bool
	}{
		{name: "number", payload: `{"estimatedValue": 1500.5}`, want: "1500.5"},
		{name: "string with comma", payload: `{"estimatedValue": " 1500,50 "}`, want: "1500,50"},
		{name: "null", payload: `{"estimatedValue": null}`, want: ""},
		{name: "missing", payload: `{}`, want: ""},
		{name: "boolean", payload: `{"estimatedValue": true}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req TenderRequest
			err := json.Unmarshal([]byte(tt.payload), &req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.EstimatedValue)
		})
	}
}

func TestNumberFieldOf(t *testing.T) {
	assert.Equal(t, NumberField("1500.25"), NumberFieldOf(1500.25))
	assert.Equal(t, NumberField("0"), NumberFieldOf(0))
}

func TestErrorResponse(t *testing.T) {
	validationErr := NewValidationError([]string{"number is required", "object is required"})
	assert.Equal(t, "validation failed: number is required; object is required", validationErr.Error())

	body, err := json.Marshal(validationErr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"validation failed","details":["number is required","object is required"]}`, string(body))

	body, err = json.Marshal(NewConflictError("tender is finalized"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"tender is finalized"}`, string(body))

	assert.Equal(t, NotFoundErrorKind, NewErrorResponse(http.StatusNotFound, "tender not found").Kind)
	assert.Equal(t, StorageErrorKind, NewErrorResponse(http.StatusServiceUnavailable, "down").Kind)

	wrapped := fmt.Errorf("close tender: %w", NewNotFoundError("tender not found"))
	assert.True(t, IsKind(wrapped, NotFoundErrorKind))
	assert.False(t, IsKind(wrapped, ConflictErrorKind))
	assert.False(t, IsKind(errors.New("plain"), StorageErrorKind))
}
