package service

import (
	"context"
	"fmt"

	bookingserrors "eventhub/internal/bookings/errors"
	"eventhub/internal/bookings/ledger"
	"eventhub/internal/bookings/lifecycle"
	"eventhub/pkg/auth"
	apperrors "eventhub/pkg/errors"
	"eventhub/pkg/model"
	"eventhub/pkg/sanitizer"

	"github.com/google/uuid"
)

func (s *bookingService) Transition(ctx context.Context, p auth.Principal, id string, req *model.TransitionRequest) (*model.Booking, error) {
	if err := s.validate(s.validator.ValidateTransition(req), "Invalid status update"); err != nil {
		return nil, err
	}
	message := sanitizer.NormalizeText(req.Message)

	var from model.BookingStatus
	booking, err := s.mutate(ctx, id, func(b *model.Booking) error {
		if err := lifecycle.Authorize(b, p, req.Status); err != nil {
			return domainError(err, b, req.Status)
		}
		from = b.Status
		lifecycle.Apply(b, p, req.Status, message, s.now())
		return nil
	})
	if err != nil {
		s.cfg.Log.Warn("Booking status update rejected", "id", id, "target", req.Status, "principal", p.ID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking status updated",
		"id", booking.ID,
		"from", from,
		"to", booking.Status,
		"by", p.ID,
	)

	s.notify(booking, model.StatusEvent(booking.Status), p.ID, message, counterparty(booking, p))
	return booking, nil
}

func (s *bookingService) RecordPayment(ctx context.Context, p auth.Principal, id string, req *model.PaymentRequest) (*model.Booking, error) {
	if req.Amount <= 0 {
		return nil, apperrors.InvalidAmount("Payment amount must be positive").
			WithDetails(map[string]any{"amount": req.Amount}).
			WithCause(bookingserrors.ErrInvalidAmount)
	}
	if err := s.validate(s.validator.ValidatePayment(req), "Invalid payment"); err != nil {
		return nil, err
	}
	method := sanitizer.NormalizeLabel(req.Method)
	txID := sanitizer.TrimAndNormalize(req.TransactionID)

	booking, err := s.mutate(ctx, id, func(b *model.Booking) error {
		if b.Status.IsTerminal() {
			return domainError(fmt.Errorf("%w: %s", bookingserrors.ErrTerminalState, b.Status), b, "")
		}
		if !b.IsParty(p.ID) && !p.IsAdmin() {
			return domainError(bookingserrors.ErrForbidden, b, "")
		}
		if err := ledger.Record(b, p.ID, req.Amount, method, txID, s.now()); err != nil {
			return domainError(err, b, "")
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Warn("Payment rejected", "id", id, "transaction_id", txID, "principal", p.ID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Payment recorded",
		"id", booking.ID,
		"amount", req.Amount,
		"transaction_id", txID,
		"advance_paid", booking.Pricing.AdvancePaid,
		"payment_status", booking.PaymentStatus,
	)

	s.notify(booking, model.EventPaymentRecorded, p.ID,
		fmt.Sprintf("Payment of %d received", req.Amount), counterparty(booking, p))
	return booking, nil
}

func (s *bookingService) AttachReview(ctx context.Context, p auth.Principal, id string, req *model.ReviewRequest) (*model.Booking, error) {
	if err := s.validate(s.validator.ValidateReview(req), "Invalid review"); err != nil {
		return nil, err
	}
	comment := sanitizer.NormalizeText(req.Comment)

	booking, err := s.mutate(ctx, id, func(b *model.Booking) error {
		if p.ID == "" || p.ID != b.Customer {
			return domainError(fmt.Errorf("%w: only the customer may review", bookingserrors.ErrForbidden), b, "")
		}
		if b.Status != model.StatusCompleted {
			return domainError(fmt.Errorf("%w: booking is %s, reviews need a completed booking", bookingserrors.ErrInvalidState, b.Status), b, "")
		}
		if b.Review != nil {
			return domainError(bookingserrors.ErrAlreadyReviewed, b, "")
		}
		b.Review = &model.Review{
			Rating:     req.Rating,
			Comment:    comment,
			ReviewDate: s.now(),
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Warn("Review rejected", "id", id, "principal", p.ID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Review attached", "id", booking.ID, "rating", req.Rating)
	s.notify(booking, model.EventReviewAttached, p.ID, comment, model.RecipientOrganizer)
	return booking, nil
}

// SettleRefund pays back the advance of a cancelled booking.
func (s *bookingService) SettleRefund(ctx context.Context, p auth.Principal, id string) (*model.Booking, error) {
	booking, err := s.mutate(ctx, id, func(b *model.Booking) error {
		if p.ID != b.Organizer && !p.IsAdmin() {
			return domainError(fmt.Errorf("%w: only the organizer settles refunds", bookingserrors.ErrForbidden), b, "")
		}
		if err := ledger.Refund(b, p.ID, s.now()); err != nil {
			return domainError(err, b, "")
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Warn("Refund rejected", "id", id, "principal", p.ID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Refund processed", "id", booking.ID, "amount", booking.Cancellation.RefundAmount)
	s.notify(booking, model.EventRefundProcessed, p.ID,
		fmt.Sprintf("Refund of %d processed", booking.Cancellation.RefundAmount), model.RecipientCustomer)
	return booking, nil
}

func (s *bookingService) PostMessage(ctx context.Context, p auth.Principal, id string, req *model.MessageRequest) (*model.Booking, error) {
	if err := s.validate(s.validator.ValidateMessage(req), "Invalid message"); err != nil {
		return nil, err
	}
	message := sanitizer.NormalizeText(req.Message)

	booking, err := s.mutate(ctx, id, func(b *model.Booking) error {
		if !b.IsParty(p.ID) {
			return domainError(fmt.Errorf("%w: only the customer or organizer may post", bookingserrors.ErrForbidden), b, "")
		}
		b.Communication = append(b.Communication, model.CommunicationEntry{
			ID:        uuid.NewString(),
			From:      p.ID,
			Message:   message,
			Timestamp: s.now(),
			Kind:      model.KindMessage,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Message posted", "id", booking.ID, "from", p.ID)
	s.notify(booking, model.EventMessagePosted, p.ID, message, counterparty(booking, p))
	return booking, nil
}
