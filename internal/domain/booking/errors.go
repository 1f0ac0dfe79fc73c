package booking

import (
	"errors"
	"fmt"
)

// PolicyViolationError: a branch booking rule was breached. User-correctable;
// the rule name is surfaced verbatim to the caller.
type PolicyViolationError struct {
	Rule string
}

func (e PolicyViolationError) Error() string {
	return e.Rule
}

func ErrPolicy(rule string) error {
	return PolicyViolationError{Rule: rule}
}

func IsPolicyViolation(err error, rule string) bool {
	var pe PolicyViolationError
	if errors.As(err, &pe) {
		return rule == "" || pe.Rule == rule
	}
	return false
}

// ConflictError: the slot was taken between offer and commit, or the
// appointment is in a state that rejects the transition. Retryable by
// re-resolving availability.
type ConflictError struct {
	Code string
}

func (e ConflictError) Error() string {
	return e.Code
}

func ErrConflict(code string) error {
	return ConflictError{Code: code}
}

func IsConflict(err error) bool {
	var ce ConflictError
	return errors.As(err, &ce)
}

// NotFoundError: unknown staff / service / booking id.
type NotFoundError struct {
	Entity string
}

func (e NotFoundError) Error() string {
	return e.Entity + "_not_found"
}

func ErrNotFound(entity string) error {
	return NotFoundError{Entity: entity}
}

func IsNotFound(err error) bool {
	var ne NotFoundError
	return errors.As(err, &ne)
}

// TransientStorageError: retryable storage failure (serialization, deadlock,
// dropped connection). The orchestrator retries these with backoff.
type TransientStorageError struct {
	Err error
}

func (e TransientStorageError) Error() string {
	return fmt.Sprintf("transient storage error: %v", e.Err)
}

func (e TransientStorageError) Unwrap() error {
	return e.Err
}

func ErrTransient(err error) error {
	return TransientStorageError{Err: err}
}

func IsTransient(err error) bool {
	var te TransientStorageError
	return errors.As(err, &te)
}
