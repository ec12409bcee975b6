package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeTimeout is used when the request deadline passed
	ErrCodeTimeout = "ERR_TIMEOUT"
)

// Validation and input error codes
const (
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeInvalidDocType  = "ERR_INVALID_DOC_TYPE"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Resource error codes
const (
	ErrCodeNotFound             = "ERR_NOT_FOUND"
	ErrCodeDraftNotFound        = "ERR_DRAFT_NOT_FOUND"
	ErrCodeItemNotFound         = "ERR_ITEM_NOT_FOUND"
	ErrCodeDocumentNotFound     = "ERR_DOCUMENT_NOT_FOUND"
	ErrCodeArtifactNotAvailable = "ERR_ARTIFACT_NOT_AVAILABLE"
)

// Business rule error codes
const (
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeLastItem     = "ERR_LAST_ITEM"
)

// Rendering error codes. Font loading stays distinct from a generic
// capture failure so clients can tell the user to retry.
const (
	ErrCodeFontLoadFailed  = "ERR_FONT_LOAD_FAILED"
	ErrCodeCaptureTimeout  = "ERR_CAPTURE_TIMEOUT"
	ErrCodeCaptureFailed   = "ERR_CAPTURE_FAILED"
	ErrCodeAssemblyFailed  = "ERR_ASSEMBLY_FAILED"
	ErrCodeStorageFailed   = "ERR_STORAGE_FAILED"
	ErrCodeRendererMissing = "ERR_RENDERER_MISSING"
)

// Case backend error codes
const (
	ErrCodeCaseAPI            = "ERR_CASE_API"
	ErrCodeCaseAPIUnavailable = "ERR_CASE_API_UNAVAILABLE"
	ErrCodeCaseAPIDisabled    = "ERR_CASE_API_DISABLED"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,
	ErrCodeTimeout:  http.StatusGatewayTimeout,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeInvalidDocType:  http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeNotFound:             http.StatusNotFound,
	ErrCodeDraftNotFound:        http.StatusNotFound,
	ErrCodeItemNotFound:         http.StatusNotFound,
	ErrCodeDocumentNotFound:     http.StatusNotFound,
	ErrCodeArtifactNotAvailable: http.StatusConflict,

	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeLastItem:     http.StatusUnprocessableEntity,

	ErrCodeFontLoadFailed:  http.StatusUnprocessableEntity,
	ErrCodeCaptureTimeout:  http.StatusGatewayTimeout,
	ErrCodeCaptureFailed:   http.StatusInternalServerError,
	ErrCodeAssemblyFailed:  http.StatusInternalServerError,
	ErrCodeStorageFailed:   http.StatusInternalServerError,
	ErrCodeRendererMissing: http.StatusServiceUnavailable,

	ErrCodeCaseAPI:            http.StatusBadGateway,
	ErrCodeCaseAPIUnavailable: http.StatusServiceUnavailable,
	ErrCodeCaseAPIDisabled:    http.StatusServiceUnavailable,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[NormalizeErrorCode(code)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain and renderer codes to API codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":              ErrCodeNotFound,
	"INVALID_INPUT":          ErrCodeInvalidInput,
	"INVALID_STATE":          ErrCodeInvalidState,
	"INVALID_STORAGE_KEY":    ErrCodeInvalidState,
	"INVALID_DOC_TYPE":       ErrCodeInvalidDocType,
	"DRAFT_NOT_FOUND":        ErrCodeDraftNotFound,
	"ITEM_NOT_FOUND":         ErrCodeItemNotFound,
	"LAST_ITEM":              ErrCodeLastItem,
	"DOCUMENT_NOT_FOUND":     ErrCodeDocumentNotFound,
	"ARTIFACT_NOT_AVAILABLE": ErrCodeArtifactNotAvailable,
	"CASE_API_DISABLED":      ErrCodeCaseAPIDisabled,
	"FONT_LOAD_FAILED":       ErrCodeFontLoadFailed,
	"CAPTURE_TIMEOUT":        ErrCodeCaptureTimeout,
	"CAPTURE_FAILED":         ErrCodeCaptureFailed,
	"INVALID_HTML":           ErrCodeCaptureFailed,
	"BINARY_NOT_FOUND":       ErrCodeRendererMissing,
	"ASSEMBLY_FAILED":        ErrCodeAssemblyFailed,
	"STORAGE_FAILED":         ErrCodeStorageFailed,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format or unknown are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
