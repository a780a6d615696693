/*
errors.go - Centralized error types for the leave engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context; the HTTP
  layer maps them to status codes with the helpers at the bottom.

ERROR CATEGORIES:
  1. Input errors     - InvalidAmount, InvalidCategory, InvalidPeriod (400)
  2. Business rules   - InsufficientBalance (422)
  3. Lookup errors    - EntityNotFound, RequestNotFound (404)
  4. Lifecycle errors - InvalidState, DuplicateIdempotencyKey (409)
  5. Upstream errors  - UpstreamUnavailable (recovered internally)

USAGE:
    if errors.Is(err, generic.ErrInsufficientBalance) {
        var ib *generic.InsufficientBalanceError
        errors.As(err, &ib)
        fmt.Println(ib.Available)
    }

SEE ALSO:
  - timeoff/ledger.go: Produces most of these errors
  - api/handlers.go: Maps them to HTTP responses
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDuplicateIdempotencyKey is returned when a transaction with the same
	// idempotency key already exists. This is expected behavior for retries.
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

	// ErrInvalidAmount covers non-positive, non-finite and out-of-policy amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientBalance is returned when consumption exceeds available balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrEntityNotFound is returned when an employee or its ledger record doesn't exist.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrRequestNotFound is returned when a leave request doesn't exist.
	ErrRequestNotFound = errors.New("request not found")

	// ErrInvalidState is returned for illegal lifecycle transitions.
	ErrInvalidState = errors.New("invalid state transition")

	// ErrInvalidCategory is returned for unknown leave categories or sub-types.
	ErrInvalidCategory = errors.New("invalid leave category")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrUpstreamUnavailable marks holiday lookup failures. It never leaves
	// the classifier; callers see a weekday classification instead.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrForbidden is returned when a non-admin attempts an admin action.
	ErrForbidden = errors.New("forbidden")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientBalanceError provides details about a balance shortage.
type InsufficientBalanceError struct {
	EntityID     EntityID
	ResourceType ResourceType
	Available    Amount
	Requested    Amount
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s balance: you asked for %s but only have %s available",
		resourceName(e.ResourceType), e.Requested, e.Available)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// Shortfall is how much more balance the request would need.
func (e *InsufficientBalanceError) Shortfall() Amount {
	return e.Requested.Sub(e.Available)
}

// InvalidAmountError explains why an amount was refused.
type InvalidAmountError struct {
	Amount Amount
	Reason string
}

func (e *InvalidAmountError) Error() string {
	return "invalid amount: " + e.Reason
}

func (e *InvalidAmountError) Unwrap() error {
	return ErrInvalidAmount
}

// InvalidStateError reports an illegal transition from the current status.
type InvalidStateError struct {
	RequestID string
	Current   string
	Attempted string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s request %s: status is %s", e.Attempted, e.RequestID, e.Current)
}

func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

func resourceName(r ResourceType) string {
	if r == nil {
		return "leave"
	}
	return r.ResourceID()
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidCategory) ||
		errors.Is(err, ErrInvalidPeriod)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntityNotFound) ||
		errors.Is(err, ErrRequestNotFound)
}

// IsConflict returns true if the error is a state or idempotency conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrDuplicateIdempotencyKey)
}
