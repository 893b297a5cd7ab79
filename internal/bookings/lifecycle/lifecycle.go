// Package lifecycle holds the booking status state machine and decides who may
// drive each transition.
package lifecycle

import (
	"fmt"
	"time"

	bookingserrors "eventhub/internal/bookings/errors"
	"eventhub/pkg/auth"
	"eventhub/pkg/model"

	"github.com/google/uuid"
)

// Actor is the relation a requester holds to a booking.
type Actor uint8

const (
	ActorCustomer Actor = 1 << iota
	ActorOrganizer
	ActorOperator
)

func (a Actor) String() string {
	switch a {
	case ActorCustomer:
		return "customer"
	case ActorOrganizer:
		return "organizer"
	case ActorOperator:
		return "operator"
	case ActorCustomer | ActorOrganizer:
		return "customer or organizer"
	}
	return "nobody"
}

var transitions = map[model.BookingStatus]map[model.BookingStatus]Actor{
	model.StatusPending: {
		model.StatusConfirmed: ActorOrganizer,
		model.StatusRejected:  ActorOrganizer,
		model.StatusCancelled: ActorCustomer | ActorOrganizer,
	},
	model.StatusConfirmed: {
		model.StatusCancelled: ActorCustomer | ActorOrganizer,
		model.StatusCompleted: ActorOperator,
	},
}

// CanTransition reports whether target is reachable from from in one step.
func CanTransition(from, target model.BookingStatus) bool {
	_, ok := transitions[from][target]
	return ok
}

// ActorsOf returns every relation p holds to b. Admins act as operators.
func ActorsOf(b *model.Booking, p auth.Principal) Actor {
	var a Actor
	if p.ID != "" && p.ID == b.Customer {
		a |= ActorCustomer
	}
	if p.ID != "" && p.ID == b.Organizer {
		a |= ActorOrganizer
	}
	if p.IsAdmin() {
		a |= ActorOperator
	}
	return a
}

// Authorize checks a requested transition. Terminal bookings are rejected
// before the table is consulted, then unknown edges, then the requester.
func Authorize(b *model.Booking, p auth.Principal, target model.BookingStatus) error {
	if b.Status.IsTerminal() {
		return fmt.Errorf("%w: %s", bookingserrors.ErrTerminalState, b.Status)
	}

	allowed, ok := transitions[b.Status][target]
	if !ok {
		return fmt.Errorf("%w: %s -> %s", bookingserrors.ErrInvalidTransition, b.Status, target)
	}

	if ActorsOf(b, p)&allowed == 0 {
		return fmt.Errorf("%w: %s -> %s requires the %s", bookingserrors.ErrForbidden, b.Status, target, allowed)
	}
	return nil
}

func DefaultMessage(target model.BookingStatus) string {
	return fmt.Sprintf("Booking %s", target)
}

// Apply moves b to target after Authorize has accepted it. It appends the
// status_update entry and, for cancellations, the cancellation record.
func Apply(b *model.Booking, p auth.Principal, target model.BookingStatus, message string, now time.Time) {
	if message == "" {
		message = DefaultMessage(target)
	}

	b.Status = target
	b.Communication = append(b.Communication, model.CommunicationEntry{
		ID:        uuid.NewString(),
		From:      p.ID,
		Message:   message,
		Timestamp: now,
		Kind:      model.KindStatusUpdate,
	})

	if target != model.StatusCancelled {
		return
	}

	refund := b.Pricing.AdvancePaid
	refundStatus := model.RefundPending
	if refund == 0 {
		refundStatus = model.RefundNotRequired
	}
	b.Cancellation = &model.Cancellation{
		Reason:       message,
		CancelledBy:  p.ID,
		CancelledAt:  now,
		RefundAmount: refund,
		RefundStatus: refundStatus,
	}
}
