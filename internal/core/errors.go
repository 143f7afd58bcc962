// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Data errors
	ErrNoData        = &Error{Code: "NO_DATA", Message: "no price data at or before date"}
	ErrMissingPrice  = &Error{Code: "MISSING_PRICE", Message: "record has neither close nor value"}
	ErrNotYetListed  = &Error{Code: "NOT_YET_LISTED", Message: "instrument has no data at or before this date"}
	ErrUnknownTicker = &Error{Code: "UNKNOWN_TICKER", Message: "ticker not known"}
	ErrBadRecord     = &Error{Code: "BAD_RECORD", Message: "record sequence invalid"}

	// Calendar errors
	ErrOutOfRange = &Error{Code: "OUT_OF_RANGE", Message: "not enough trading days before date"}

	// Order errors
	ErrAlreadyFilled = &Error{Code: "ALREADY_FILLED", Message: "order already filled"}

	// Simulation errors
	ErrHorizonExceeded = &Error{Code: "HORIZON_EXCEEDED", Message: "execution requested outside the simulation horizon"}
	ErrNotMonotonic    = &Error{Code: "NOT_MONOTONIC", Message: "simulated day must advance strictly"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
)
