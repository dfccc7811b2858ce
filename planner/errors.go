package planner

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientFunds indicates no coin subset covers the requested
	// outputs plus fee.
	ErrInsufficientFunds = errors.New("planner: insufficient funds")

	// ErrDustViolation indicates a required output would fall below the
	// dust floor. This is a hard failure: the planner never silently
	// drops a change branch, since that would break the cardinality the
	// encoder promised.
	ErrDustViolation = errors.New("planner: output below dust floor")

	// ErrCardinality indicates the requested output count cannot be
	// satisfied (for example, non-zero change with no change slot).
	ErrCardinality = errors.New("planner: cannot satisfy requested output count")

	// ErrBadRequest indicates a structurally invalid planning request.
	ErrBadRequest = errors.New("planner: invalid request")
)

// ChainError reports which frame of a chained plan failed. The whole chain
// is aborted; no partial plans are returned.
type ChainError struct {
	Frame int // zero-based index of the failing frame
	Err   error
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("planner: chain frame %d: %v", e.Frame, e.Err)
}

func (e *ChainError) Unwrap() error { return e.Err }
