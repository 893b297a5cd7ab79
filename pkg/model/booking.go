package model

import (
	"slices"
	"time"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
	StatusRejected  BookingStatus = "rejected"
)

// IsTerminal reports whether no further status transition is permitted.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted || s == StatusRejected
}

func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPartial   PaymentStatus = "partial"
	PaymentCompleted PaymentStatus = "completed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type CommunicationKind string

const (
	KindMessage       CommunicationKind = "message"
	KindStatusUpdate  CommunicationKind = "status_update"
	KindPaymentUpdate CommunicationKind = "payment_update"
)

const (
	LedgerRecorded = "recorded"
	LedgerRefunded = "refunded"
)

const (
	RefundPending     = "pending"
	RefundProcessed   = "processed"
	RefundNotRequired = "not_required"
)

type Booking struct {
	ID              string               `json:"id" bson:"_id"`
	Customer        string               `json:"customer" bson:"customer"`
	Organizer       string               `json:"organizer" bson:"organizer"`
	Venue           string               `json:"venue" bson:"venue"`
	CustomerDetails CustomerDetails      `json:"customer_details" bson:"customer_details"`
	EventDetails    EventDetails         `json:"event_details" bson:"event_details"`
	Schedule        Schedule             `json:"schedule" bson:"schedule"`
	Pricing         Pricing              `json:"pricing" bson:"pricing"`
	Status          BookingStatus        `json:"status" bson:"status"`
	PaymentStatus   PaymentStatus        `json:"payment_status" bson:"payment_status"`
	PaymentDetails  []PaymentEntry       `json:"payment_details" bson:"payment_details"`
	Communication   []CommunicationEntry `json:"communication" bson:"communication"`
	Cancellation    *Cancellation        `json:"cancellation,omitempty" bson:"cancellation,omitempty"`
	Review          *Review              `json:"review,omitempty" bson:"review,omitempty"`
	Version         int64                `json:"version" bson:"version"`
	CreatedAt       time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at" bson:"updated_at"`
}

// CustomerDetails is a snapshot taken at booking time, not a live profile reference.
type CustomerDetails struct {
	Name    string `json:"name" bson:"name"`
	Email   string `json:"email" bson:"email"`
	Phone   string `json:"phone" bson:"phone"`
	Address string `json:"address,omitempty" bson:"address,omitempty"`
	City    string `json:"city,omitempty" bson:"city,omitempty"`
	State   string `json:"state,omitempty" bson:"state,omitempty"`
}

type EventDetails struct {
	Title               string `json:"title" bson:"title"`
	EventType           string `json:"event_type" bson:"event_type"`
	Description         string `json:"description,omitempty" bson:"description,omitempty"`
	ExpectedGuests      int    `json:"expected_guests" bson:"expected_guests"`
	SpecialRequirements string `json:"special_requirements,omitempty" bson:"special_requirements,omitempty"`
}

type Schedule struct {
	EventDate     time.Time `json:"event_date" bson:"event_date"`
	StartTime     string    `json:"start_time" bson:"start_time"`
	EndTime       string    `json:"end_time" bson:"end_time"`
	DurationHours float64   `json:"duration_hours,omitempty" bson:"duration_hours,omitempty"`
}

type Charge struct {
	Name   string `json:"name" bson:"name" validate:"required,max=100"`
	Amount int64  `json:"amount" bson:"amount"`
}

// Pricing amounts are whole rupees.
type Pricing struct {
	BaseAmount        int64    `json:"base_amount" bson:"base_amount"`
	AdditionalCharges []Charge `json:"additional_charges" bson:"additional_charges"`
	Taxes             int64    `json:"taxes" bson:"taxes"`
	Discount          int64    `json:"discount" bson:"discount"`
	TotalAmount       int64    `json:"total_amount" bson:"total_amount"`
	AdvancePaid       int64    `json:"advance_paid" bson:"advance_paid"`
	RemainingAmount   int64    `json:"remaining_amount" bson:"remaining_amount"`
	OverpaidAmount    int64    `json:"overpaid_amount,omitempty" bson:"overpaid_amount,omitempty"`
}

type PaymentEntry struct {
	ID            string    `json:"id" bson:"id"`
	Amount        int64     `json:"amount" bson:"amount"`
	Method        string    `json:"method" bson:"method"`
	TransactionID string    `json:"transaction_id" bson:"transaction_id"`
	Timestamp     time.Time `json:"timestamp" bson:"timestamp"`
	Status        string    `json:"status" bson:"status"`
}

type CommunicationEntry struct {
	ID        string            `json:"id" bson:"id"`
	From      string            `json:"from" bson:"from"`
	Message   string            `json:"message" bson:"message"`
	Timestamp time.Time         `json:"timestamp" bson:"timestamp"`
	Kind      CommunicationKind `json:"kind" bson:"kind"`
}

type Cancellation struct {
	Reason       string     `json:"reason" bson:"reason"`
	CancelledBy  string     `json:"cancelled_by" bson:"cancelled_by"`
	CancelledAt  time.Time  `json:"cancelled_at" bson:"cancelled_at"`
	RefundAmount int64      `json:"refund_amount" bson:"refund_amount"`
	RefundStatus string     `json:"refund_status" bson:"refund_status"`
	RefundedAt   *time.Time `json:"refunded_at,omitempty" bson:"refunded_at,omitempty"`
}

type Review struct {
	Rating     int       `json:"rating" bson:"rating"`
	Comment    string    `json:"comment,omitempty" bson:"comment,omitempty"`
	ReviewDate time.Time `json:"review_date" bson:"review_date"`
}

// IsParty reports whether the identity is the customer or the organizer of the booking.
func (b *Booking) IsParty(identity string) bool {
	return identity != "" && (identity == b.Customer || identity == b.Organizer)
}

// Clone returns a deep copy so callers can mutate without aliasing stored slices.
func (b *Booking) Clone() *Booking {
	c := *b
	c.Pricing.AdditionalCharges = slices.Clone(b.Pricing.AdditionalCharges)
	c.PaymentDetails = slices.Clone(b.PaymentDetails)
	c.Communication = slices.Clone(b.Communication)
	if b.Cancellation != nil {
		cancellation := *b.Cancellation
		if b.Cancellation.RefundedAt != nil {
			refundedAt := *b.Cancellation.RefundedAt
			cancellation.RefundedAt = &refundedAt
		}
		c.Cancellation = &cancellation
	}
	if b.Review != nil {
		review := *b.Review
		c.Review = &review
	}
	return &c
}
