package dto

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInvalidDocType, http.StatusBadRequest},
		{ErrCodeDraftNotFound, http.StatusNotFound},
		{ErrCodeArtifactNotAvailable, http.StatusConflict},
		{ErrCodeLastItem, http.StatusUnprocessableEntity},
		{ErrCodeFontLoadFailed, http.StatusUnprocessableEntity},
		{ErrCodeCaptureTimeout, http.StatusGatewayTimeout},
		{ErrCodeCaptureFailed, http.StatusInternalServerError},
		{ErrCodeCaseAPI, http.StatusBadGateway},
		{ErrCodeCaseAPIDisabled, http.StatusServiceUnavailable},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		// domain codes resolve through normalization
		{"LAST_ITEM", http.StatusUnprocessableEntity},
		{"FONT_LOAD_FAILED", http.StatusUnprocessableEntity},
		{"CAPTURE_TIMEOUT", http.StatusGatewayTimeout},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"INVALID_DOC_TYPE", ErrCodeInvalidDocType},
		{"DRAFT_NOT_FOUND", ErrCodeDraftNotFound},
		{"LAST_ITEM", ErrCodeLastItem},
		{"FONT_LOAD_FAILED", ErrCodeFontLoadFailed},
		{"BINARY_NOT_FOUND", ErrCodeRendererMissing},
		{ErrCodeNotFound, ErrCodeNotFound},
		{"CUSTOM_ERROR", "CUSTOM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestEveryMappedCodeHasAStatus(t *testing.T) {
	for domainCode, apiCode := range DomainErrorCodeMapping {
		_, ok := ErrorCodeHTTPStatus[apiCode]
		assert.True(t, ok, "%s maps to %s which has no status", domainCode, apiCode)
	}
	for code := range ErrorCodeHTTPStatus {
		assert.True(t, strings.HasPrefix(code, "ERR_"), code)
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("DRAFT_NOT_FOUND", "Draft not found")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeDraftNotFound, resp.Error.Code)
	assert.Equal(t, "Draft not found", resp.Error.Message)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "type", Message: "Must be one of: pv rv jv withdrawal return purchase"},
	}

	resp := NewValidationErrorResponse("Request validation failed", "req-789", details)

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "type", resp.Error.Details[0].Field)
}

func TestErrorResponseJSON(t *testing.T) {
	before := time.Now()
	resp := NewErrorResponseWithRequestID(ErrCodeCaptureTimeout, "capture timed out", "req-test-123")

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"data"`)

	var decoded Response
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.False(t, decoded.Success)
	assert.Equal(t, ErrCodeCaptureTimeout, decoded.Error.Code)
	assert.Equal(t, "req-test-123", decoded.Error.RequestID)
	assert.False(t, decoded.Error.Timestamp.Before(before.Truncate(time.Second)))
}

func TestNewListResponse(t *testing.T) {
	resp := NewListResponse([]string{"a", "b"}, 2, 50)

	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 2, resp.Meta.Total)
	assert.Equal(t, 50, resp.Meta.Limit)
}
