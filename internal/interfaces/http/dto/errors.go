package dto

import (
	"net/http"

	"github.com/parcelhub/backend/internal/domain/ledger"
)

// Error codes returned in the error envelope.
// Format: ERR_<CATEGORY>_<DESCRIPTION>
const (
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeBodyTooLarge = "ERR_BODY_TOO_LARGE"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeAlreadySettled      = "ERR_ALREADY_SETTLED"
	ErrCodeNotOutstanding      = "ERR_NOT_OUTSTANDING"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"

	ErrCodePersistence       = "ERR_PERSISTENCE"
	ErrCodeExportUnavailable = "ERR_EXPORT_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeBodyTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeAlreadySettled:      http.StatusConflict,
	ErrCodeNotOutstanding:      http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodePersistence:       http.StatusInternalServerError,
	ErrCodeExportUnavailable: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status for an error code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainCodes maps shared.DomainError codes onto the API codes
var domainCodes = map[string]string{
	ledger.CodeValidation:     ErrCodeValidation,
	ledger.CodeNotFound:       ErrCodeNotFound,
	ledger.CodeConflict:       ErrCodeConflict,
	ledger.CodeAlreadySettled: ErrCodeAlreadySettled,
	ledger.CodeNotOutstanding: ErrCodeNotOutstanding,
	ledger.CodePersistence:    ErrCodePersistence,
	"INVALID_INPUT":           ErrCodeValidation,
	"INVALID_STATE":           ErrCodeConflict,
	"CONCURRENCY_CONFLICT":    ErrCodeConcurrencyConflict,
	"ALREADY_EXISTS":          ErrCodeConflict,
	"UNAUTHORIZED":            ErrCodeUnauthorized,
	"FORBIDDEN":               ErrCodeForbidden,
	"EXPORT_UNAVAILABLE":      ErrCodeExportUnavailable,
}

// NormalizeErrorCode converts a domain error code to its API code.
// Unknown codes become ERR_INTERNAL so no internal detail leaks to clients.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainCodes[code]; ok {
		return apiCode
	}
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	return ErrCodeInternal
}
