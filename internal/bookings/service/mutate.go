package service

import (
	"context"
	"errors"
	"time"

	bookingserrors "eventhub/internal/bookings/errors"
	"eventhub/internal/bookings/pricing"
	apperrors "eventhub/pkg/errors"
	"eventhub/pkg/model"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/mongo"
)

// mutate runs load, apply and a version-checked write as one unit. A lost
// race or a transient storage failure restarts the whole unit; errors from
// apply are final.
func (s *bookingService) mutate(ctx context.Context, id string, apply func(b *model.Booking) error) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	var updated *model.Booking
	attempt := func() error {
		return s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
			b, err := s.repo.FindByID(txCtx, id)
			if err != nil {
				return retryable(err)
			}

			expected := b.Version
			if err := apply(b); err != nil {
				return backoff.Permanent(err)
			}
			b.UpdatedAt = s.now()

			if err := s.repo.Update(txCtx, b, expected); err != nil {
				return retryable(err)
			}
			updated = b
			return nil
		})
	}

	err := backoff.RetryNotify(attempt, s.retryPolicy(ctx), func(err error, wait time.Duration) {
		s.cfg.Log.Debug("Retrying booking mutation", "id", id, "wait", wait, "error", err)
	})
	if err == nil {
		return updated, nil
	}

	if apperrors.IsAppError(err) {
		return nil, err
	}
	if isTransient(err) {
		s.cfg.Log.Warn("Booking mutation gave up after retries", "id", id, "error", err)
		return nil, apperrors.Unavailable("Booking storage").WithCause(err)
	}
	return nil, s.storageError(err, id)
}

func (s *bookingService) retryPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.PersistenceRetryBackoff
	b.MaxInterval = 20 * s.cfg.PersistenceRetryBackoff
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.cfg.PersistenceMaxRetries)), ctx)
}

func isTransient(err error) bool {
	return errors.Is(err, bookingserrors.ErrVersionConflict) ||
		mongo.IsNetworkError(err) ||
		mongo.IsTimeout(err)
}

func retryable(err error) error {
	if isTransient(err) {
		return err
	}
	return backoff.Permanent(err)
}

func (s *bookingService) storageError(err error, id string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id).WithCause(err)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format").WithCause(err)
	case isTransient(err):
		return apperrors.Unavailable("Booking storage").WithCause(err)
	}
	s.cfg.Log.Error("Booking storage failure", "id", id, "error", err)
	return apperrors.Internal("Failed to access booking", err)
}

// domainError converts a rule violation raised while applying an operation to
// the API error the caller sees. The sentinel stays reachable with errors.Is.
func domainError(err error, b *model.Booking, target model.BookingStatus) error {
	switch {
	case errors.Is(err, bookingserrors.ErrTerminalState):
		return apperrors.TerminalState(string(b.Status)).WithCause(err)
	case errors.Is(err, bookingserrors.ErrInvalidTransition):
		return apperrors.InvalidTransition(string(b.Status), string(target)).WithCause(err)
	case errors.Is(err, bookingserrors.ErrForbidden):
		return apperrors.Forbidden("You may not perform this action on the booking").WithCause(err)
	case errors.Is(err, bookingserrors.ErrInvalidAmount):
		return apperrors.InvalidAmount("Payment amount must be positive").WithCause(err)
	case errors.Is(err, bookingserrors.ErrDuplicateTransaction):
		return apperrors.Conflict("Transaction already recorded for this booking").WithCause(err)
	case errors.Is(err, bookingserrors.ErrAlreadyReviewed):
		return apperrors.AlreadyReviewed().WithCause(err)
	case errors.Is(err, bookingserrors.ErrInvalidState), errors.Is(err, bookingserrors.ErrRefundNotPending):
		return apperrors.InvalidState(err.Error()).WithCause(err)
	case errors.Is(err, pricing.ErrInvalidPricingInput):
		return apperrors.InvalidPricing(err.Error()).WithCause(err)
	}
	return apperrors.Internal("Failed to apply booking change", err)
}
