package vqleval

import (
	"errors"
	"fmt"
)

// Common sentinel errors for the vqleval package.
var (
	// ErrSkipped is returned when the predicted query targets a table that is
	// missing or empty.
	ErrSkipped = errors.New("sample skipped")

	// ErrTimedOut is returned when a sample exceeds its wall-clock deadline.
	ErrTimedOut = errors.New("sample timed out")

	// ErrExecution is returned when the database rejects a query.
	ErrExecution = errors.New("query execution failed")

	// ErrInterrupted is returned when a batch is cancelled by the operator.
	ErrInterrupted = errors.New("evaluation interrupted")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// EvalErrorType categorizes evaluation errors.
type EvalErrorType int

const (
	// EvalErrorTypeUnknown is an unclassified error.
	EvalErrorTypeUnknown EvalErrorType = iota
	// EvalErrorTypeSkipped indicates a missing or empty target table.
	EvalErrorTypeSkipped
	// EvalErrorTypeExecution indicates a database-level failure.
	EvalErrorTypeExecution
	// EvalErrorTypeTimeout indicates the sample deadline expired.
	EvalErrorTypeTimeout
	// EvalErrorTypeInterrupted indicates the batch was cancelled.
	EvalErrorTypeInterrupted
)

// EvalError describes why one sample did not execute cleanly.
type EvalError struct {
	Type    EvalErrorType
	Message string
	DBID    string
	Cause   error
}

func (e *EvalError) Error() string {
	msg := e.Message
	if e.DBID != "" {
		msg = fmt.Sprintf("%s [%s]", e.Message, e.DBID)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *EvalError) Unwrap() error {
	return e.Cause
}

// Is implements error matching for EvalError.
func (e *EvalError) Is(target error) bool {
	switch e.Type {
	case EvalErrorTypeSkipped:
		return target == ErrSkipped
	case EvalErrorTypeExecution:
		return target == ErrExecution
	case EvalErrorTypeTimeout:
		return target == ErrTimedOut
	case EvalErrorTypeInterrupted:
		return target == ErrInterrupted
	}
	return false
}

// Status maps the error to the outcome status it produces.
func (e *EvalError) Status() Status {
	switch e.Type {
	case EvalErrorTypeSkipped:
		return StatusSkipped
	case EvalErrorTypeTimeout:
		return StatusTimedOut
	}
	return StatusErrored
}

func newEvalError(errType EvalErrorType, message, dbID string, cause error) *EvalError {
	return &EvalError{
		Type:    errType,
		Message: message,
		DBID:    dbID,
		Cause:   cause,
	}
}
