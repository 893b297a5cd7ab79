package model

import "time"

type EventKind string

const (
	EventBookingCreated   EventKind = "booking.created"
	EventBookingConfirmed EventKind = "booking.confirmed"
	EventBookingRejected  EventKind = "booking.rejected"
	EventBookingCancelled EventKind = "booking.cancelled"
	EventBookingCompleted EventKind = "booking.completed"
	EventPaymentRecorded  EventKind = "payment.recorded"
	EventRefundProcessed  EventKind = "refund.processed"
	EventReviewAttached   EventKind = "review.attached"
	EventMessagePosted    EventKind = "message.posted"
)

// StatusEvent maps a lifecycle target to the event announcing it.
func StatusEvent(status BookingStatus) EventKind {
	return EventKind("booking." + string(status))
}

const (
	RecipientCustomer  = "customer"
	RecipientOrganizer = "organizer"
)

// BookingEvent is one notification about one booking for one recipient.
type BookingEvent struct {
	ID            string    `json:"id"`
	Kind          EventKind `json:"kind"`
	Recipient     string    `json:"recipient"`
	RecipientRole string    `json:"recipient_role"`
	Actor         string    `json:"actor,omitempty"`
	Message       string    `json:"message,omitempty"`
	BookingID     string    `json:"booking_id"`
	Booking       *Booking  `json:"booking"`
	OccurredAt    time.Time `json:"occurred_at"`
}
