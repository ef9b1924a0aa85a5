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
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	// ErrCodeOperationInProgress is used when a period-level lock is held
	ErrCodeOperationInProgress = "ERR_OPERATION_IN_PROGRESS"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodePeriodLocked is used when mutating a locked billing period
	ErrCodePeriodLocked = "ERR_PERIOD_LOCKED"
	// ErrCodeAccrualsExist is used when generation would overwrite existing accruals
	ErrCodeAccrualsExist = "ERR_ACCRUALS_EXIST"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:             http.StatusNotFound,
	ErrCodeAlreadyExists:        http.StatusConflict,
	ErrCodeConflict:             http.StatusConflict,
	ErrCodeConcurrencyConflict:  http.StatusConflict,
	ErrCodeOperationInProgress:  http.StatusConflict,

	ErrCodeInvalidState:  http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:  http.StatusUnprocessableEntity,
	ErrCodePeriodLocked:  http.StatusConflict,
	ErrCodeAccrualsExist: http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the standardized
// transport codes. Unmapped codes fall through unchanged.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":          ErrCodeNotFound,
	"PERIOD_NOT_FOUND":   ErrCodeNotFound,
	"PLOT_NOT_FOUND":     ErrCodeNotFound,
	"TARIFF_NOT_FOUND":   ErrCodeNotFound,
	"OVERRIDE_NOT_FOUND": ErrCodeNotFound,
	"PLAN_NOT_FOUND":     ErrCodeNotFound,

	"ALREADY_EXISTS":    ErrCodeAlreadyExists,
	"PERIOD_EXISTS":     ErrCodeAlreadyExists,
	"OVERRIDE_EXISTS":   ErrCodeAlreadyExists,
	"DUPLICATE_PAYMENT": ErrCodeAlreadyExists,

	"CONCURRENCY_CONFLICT":  ErrCodeConcurrencyConflict,
	"OPERATION_IN_PROGRESS": ErrCodeOperationInProgress,
	"PERIOD_LOCKED":         ErrCodePeriodLocked,
	"ACCRUALS_EXIST":        ErrCodeAccrualsExist,

	"INVALID_STATE":       ErrCodeInvalidState,
	"EMPTY_PLOT_REGISTRY": ErrCodeInvalidState,
	"NO_ACTIVE_TARIFF":    ErrCodeInvalidState,
	"EXCEEDS_ACCRUED":     ErrCodeBusinessRule,
	"EXCEEDS_UNALLOCATED": ErrCodeBusinessRule,

	"INVALID_INPUT":       ErrCodeInvalidInput,
	"EMPTY_IMPORT":        ErrCodeInvalidInput,
	"INVALID_AMOUNT":      ErrCodeInvalidInput,
	"INVALID_CATEGORY":    ErrCodeInvalidInput,
	"INVALID_CHARGE_TYPE": ErrCodeInvalidInput,
	"INVALID_DATE":        ErrCodeInvalidInput,
	"INVALID_DATE_RANGE":  ErrCodeInvalidInput,
	"INVALID_DEADLINE":    ErrCodeInvalidInput,
	"INVALID_METHOD":      ErrCodeInvalidInput,
	"INVALID_PERIOD":      ErrCodeInvalidInput,
	"INVALID_PLOT":        ErrCodeInvalidInput,
	"INVALID_REASON":      ErrCodeInvalidInput,
	"INVALID_ROW":         ErrCodeInvalidInput,
	"INVALID_STATUS":      ErrCodeInvalidInput,
	"INVALID_TARIFF":      ErrCodeInvalidInput,
	"INVALID_TARIFF_NAME": ErrCodeInvalidInput,
	"INVALID_TARIFF_TYPE": ErrCodeInvalidInput,
	"INVALID_TARIFF_UNIT": ErrCodeInvalidInput,
	"PLOT_REQUIRED":       ErrCodeInvalidInput,
	"TARIFF_REQUIRED":     ErrCodeInvalidInput,
	"PAYMENT_REQUIRED":    ErrCodeInvalidInput,
}

// NormalizeErrorCode converts a domain error code to the standardized format.
// If the code is already in the new format or unknown, returns it as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
