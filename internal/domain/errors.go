package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Account errors
	ErrAccountNotFound           = errors.New("account not found")
	ErrDuplicateAccountName      = errors.New("account with this name already exists")
	ErrNonZeroBalance            = errors.New("account balance must be zero before deletion")
	ErrNegativeBalanceNotAllowed = errors.New("account does not allow negative balance")

	// Transaction errors
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrValidation is the parent of every ValidationError.
	ErrValidation = errors.New("validation failed")
)

// ValidationError reports malformed or out-of-range input on a single field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError returns a *ValidationError for field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NonZeroBalanceError is returned when deleting an account that still holds money.
type NonZeroBalanceError struct {
	Balance decimal.Decimal
}

func (e *NonZeroBalanceError) Error() string {
	return fmt.Sprintf("%s (balance %s)", ErrNonZeroBalance.Error(), e.Balance.String())
}

func (e *NonZeroBalanceError) Unwrap() error {
	return ErrNonZeroBalance
}

// ErrorKind is the machine-readable class of an error.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation_error"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindUnauthorized ErrorKind = "unauthorized"
	KindInternal     ErrorKind = "internal_error"
)

// KindOf classifies err. Unknown errors are internal.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrTransactionNotFound):
		return KindNotFound
	case errors.Is(err, ErrNonZeroBalance),
		errors.Is(err, ErrNegativeBalanceNotAllowed),
		errors.Is(err, ErrDuplicateAccountName):
		return KindConflict
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken), errors.Is(err, ErrExpiredToken):
		return KindUnauthorized
	default:
		return KindInternal
	}
}
