package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrVersionConflict means another writer updated the booking between our
	// read and our write. The caller reloads and retries.
	ErrVersionConflict = errors.New("booking was modified concurrently")

	ErrForbidden = errors.New("requester may not perform this action on the booking")

	ErrInvalidTransition = errors.New("status transition is not allowed")

	ErrTerminalState = errors.New("booking is in a terminal status")

	ErrInvalidAmount = errors.New("payment amount must be positive")

	ErrAlreadyReviewed = errors.New("booking already has a review")

	ErrInvalidState = errors.New("booking is not in a state that allows this action")

	ErrDuplicateTransaction = errors.New("transaction id already recorded on this booking")

	ErrRefundNotPending = errors.New("booking has no pending refund")

	ErrCapacityExceeded = errors.New("expected guests exceed venue capacity")
)
