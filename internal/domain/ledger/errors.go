package ledger

import (
	"errors"

	"github.com/parcelhub/backend/internal/domain/shared"
)

// Error codes used by the ledger
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodeAlreadySettled = "ALREADY_SETTLED"
	CodeNotOutstanding = "NOT_OUTSTANDING"
	CodePersistence    = "PERSISTENCE_ERROR"
)

var (
	// ErrAlreadySettled is returned when settling a debt that is no longer outstanding
	ErrAlreadySettled = shared.NewDomainError(CodeAlreadySettled, "Debt is already settled")
	// ErrNotOutstanding is returned when amending a debt that is no longer outstanding
	ErrNotOutstanding = shared.NewDomainError(CodeNotOutstanding, "Only outstanding debts can be changed")
	// ErrDebtNotFound is returned when a debt does not exist
	ErrDebtNotFound = shared.NewDomainError(CodeNotFound, "Debt not found")
	// ErrPairMissing is returned when a branch debt points at a counterpart row that no longer exists
	ErrPairMissing = shared.NewDomainError(CodeNotFound, "Paired debt not found")
)

// NewValidationError creates an error for bad caller input
func NewValidationError(message string) *shared.DomainError {
	return shared.NewDomainError(CodeValidation, message)
}

// NewNotFoundError creates an error for a missing record
func NewNotFoundError(message string) *shared.DomainError {
	return shared.NewDomainError(CodeNotFound, message)
}

// NewConflictError creates an error for an operation the current state forbids
func NewConflictError(message string) *shared.DomainError {
	return shared.NewDomainError(CodeConflict, message)
}

// NewPersistenceError wraps a store failure
func NewPersistenceError(message string, err error) *shared.DomainError {
	return shared.WrapDomainError(CodePersistence, message, err)
}

func codeOf(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	switch codeOf(err) {
	case CodeValidation, shared.ErrInvalidInput.Code:
		return true
	}
	return false
}

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool {
	return codeOf(err) == CodeNotFound
}

// IsConflict reports whether err is a conflict error
func IsConflict(err error) bool {
	switch codeOf(err) {
	case CodeConflict, CodeAlreadySettled, CodeNotOutstanding, shared.ErrConcurrencyConflict.Code:
		return true
	}
	return false
}

// IsPersistence reports whether err is a persistence error
func IsPersistence(err error) bool {
	return codeOf(err) == CodePersistence
}
