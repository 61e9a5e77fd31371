package aggregates

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode standardizes aggregate failure semantics across the inventory core.
type ErrorCode string

const (
	CodeValidation            ErrorCode = "validation"
	CodeInvalidQuantity       ErrorCode = "invalid_quantity"
	CodeDuplicateEntry        ErrorCode = "duplicate_entry"
	CodeInsufficientInventory ErrorCode = "insufficient_inventory"
	CodeEntryNotFound         ErrorCode = "entry_not_found"
	CodeProductNotFound       ErrorCode = "product_not_found"
	CodeCartNotFound          ErrorCode = "cart_not_found"
	CodeNotFound              ErrorCode = "not_found"
	CodeConflict              ErrorCode = "conflict"
	CodeInvariantViolation    ErrorCode = "invariant_violation"
	CodePreconditionFailed    ErrorCode = "precondition_failed"
	CodeRetryable             ErrorCode = "retryable"
	CodeInternal              ErrorCode = "internal"

	// CodePartialCheckout accompanies a successful cart checkout that left some entries behind.
	CodePartialCheckout ErrorCode = "partial_checkout"
)

// Error is the canonical aggregate error wrapper.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds an aggregate error with explicit code + operation.
func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates an existing error with aggregate error semantics.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

// IsCode checks whether err (or wrapped err) carries the given aggregate code.
func IsCode(err error, code ErrorCode) bool {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return false
	}
	return aggErr.Code == code
}

// CodeOf extracts the aggregate error code when available.
func CodeOf(err error) ErrorCode {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Code
}

// IsFatal reports whether err means the operation did not take effect.
// A partial checkout committed its eligible entries and is not fatal.
func IsFatal(err error) bool {
	return err != nil && !IsCode(err, CodePartialCheckout)
}
