package dto

import "net/http"

// Error code constants
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeInternal is used for internal server errors, including store failures
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeWarehouseUnavailable is used when the Main Warehouse cannot be resolved
	ErrCodeWarehouseUnavailable = "ERR_WAREHOUSE_UNAVAILABLE"
)

// Input error codes
const (
	// ErrCodeValidation is used when request binding or field validation fails
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeInvalidInput is used for input rejected by the domain
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when the body is not valid JSON
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Resource error codes
const (
	ErrCodeNotFound        = "ERR_NOT_FOUND"
	ErrCodeUnknownBusiness = "ERR_UNKNOWN_BUSINESS"
	ErrCodeAlreadyExists   = "ERR_ALREADY_EXISTS"
	ErrCodeConflict        = "ERR_CONFLICT"
)

// Concurrency error codes
const (
	// ErrCodeLockNotObtained is used when another bill holds the bill lock
	ErrCodeLockNotObtained = "ERR_LOCK_NOT_OBTAINED"
	// ErrCodeDuplicateRequest is used when an Idempotency-Key was already processed
	ErrCodeDuplicateRequest = "ERR_DUPLICATE_REQUEST"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:             http.StatusInternalServerError,
	ErrCodeWarehouseUnavailable: http.StatusInternalServerError,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeUnknownBusiness: http.StatusNotFound,
	ErrCodeAlreadyExists:   http.StatusConflict,
	ErrCodeConflict:        http.StatusConflict,

	ErrCodeLockNotObtained:  http.StatusConflict,
	ErrCodeDuplicateRequest: http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps shared.DomainError codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":             ErrCodeNotFound,
	"ALREADY_EXISTS":        ErrCodeAlreadyExists,
	"INVALID_INPUT":         ErrCodeInvalidInput,
	"CONFLICT":              ErrCodeConflict,
	"LOCK_NOT_OBTAINED":     ErrCodeLockNotObtained,
	"WAREHOUSE_UNAVAILABLE": ErrCodeWarehouseUnavailable,
	"VALIDATION_ERROR":      ErrCodeValidation,
	"INTERNAL_ERROR":        ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format or unknown are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
