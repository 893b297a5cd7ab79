// Package ledger maintains the append-only payment record of a booking and the
// payment status derived from it.
package ledger

import (
	"fmt"
	"math"
	"slices"
	"time"

	bookingserrors "eventhub/internal/bookings/errors"
	"eventhub/internal/bookings/pricing"
	"eventhub/pkg/model"

	"github.com/google/uuid"
)

// AdvancePaid sums the recorded entries. Refund entries do not count.
func AdvancePaid(entries []model.PaymentEntry) int64 {
	var sum int64
	for _, e := range entries {
		if e.Status == model.LedgerRecorded {
			sum += e.Amount
		}
	}
	return sum
}

func DeriveStatus(advancePaid, total int64) model.PaymentStatus {
	switch {
	case advancePaid <= 0:
		return model.PaymentPending
	case advancePaid < total:
		return model.PaymentPartial
	default:
		return model.PaymentCompleted
	}
}

// Recompute refreshes advancePaid, the pricing snapshot and the payment status
// from the ledger. A refunded booking keeps its refunded status.
func Recompute(b *model.Booking) error {
	p := b.Pricing
	p.AdvancePaid = AdvancePaid(b.PaymentDetails)
	if err := pricing.Apply(&p); err != nil {
		return err
	}
	b.Pricing = p
	if b.PaymentStatus != model.PaymentRefunded {
		b.PaymentStatus = DeriveStatus(b.Pricing.AdvancePaid, b.Pricing.TotalAmount)
	}
	return nil
}

func HasTransaction(entries []model.PaymentEntry, transactionID string) bool {
	for _, e := range entries {
		if e.TransactionID == transactionID {
			return true
		}
	}
	return false
}

// Record appends a recorded payment and refreshes the derived fields.
// b is left untouched on error.
func Record(b *model.Booking, from string, amount int64, method, transactionID string, now time.Time) error {
	if amount <= 0 {
		return fmt.Errorf("%w: got %d", bookingserrors.ErrInvalidAmount, amount)
	}
	if HasTransaction(b.PaymentDetails, transactionID) {
		return fmt.Errorf("%w: %s", bookingserrors.ErrDuplicateTransaction, transactionID)
	}
	if paid := AdvancePaid(b.PaymentDetails); amount > math.MaxInt64-paid {
		return fmt.Errorf("%w: %d on top of %d already paid overflows", bookingserrors.ErrInvalidAmount, amount, paid)
	}

	next := *b
	next.PaymentDetails = append(slices.Clone(b.PaymentDetails), model.PaymentEntry{
		ID:            uuid.NewString(),
		Amount:        amount,
		Method:        method,
		TransactionID: transactionID,
		Timestamp:     now,
		Status:        model.LedgerRecorded,
	})
	if err := Recompute(&next); err != nil {
		return err
	}
	*b = next

	b.Communication = append(b.Communication, model.CommunicationEntry{
		ID:        uuid.NewString(),
		From:      from,
		Message:   fmt.Sprintf("Payment of %d recorded via %s (%s)", amount, method, transactionID),
		Timestamp: now,
		Kind:      model.KindPaymentUpdate,
	})
	return nil
}

// Refund settles a pending cancellation refund.
func Refund(b *model.Booking, from string, now time.Time) error {
	c := b.Cancellation
	if b.Status != model.StatusCancelled || c == nil || c.RefundStatus != model.RefundPending {
		return bookingserrors.ErrRefundNotPending
	}

	b.PaymentDetails = append(b.PaymentDetails, model.PaymentEntry{
		ID:            uuid.NewString(),
		Amount:        c.RefundAmount,
		Method:        "refund",
		TransactionID: "refund-" + b.ID,
		Timestamp:     now,
		Status:        model.LedgerRefunded,
	})

	refundedAt := now
	c.RefundStatus = model.RefundProcessed
	c.RefundedAt = &refundedAt
	b.PaymentStatus = model.PaymentRefunded

	b.Communication = append(b.Communication, model.CommunicationEntry{
		ID:        uuid.NewString(),
		From:      from,
		Message:   fmt.Sprintf("Refund of %d processed", c.RefundAmount),
		Timestamp: now,
		Kind:      model.KindPaymentUpdate,
	})
	return nil
}
