package model

import "time"

type CreateBookingRequest struct {
	VenueID         string               `json:"venue_id" validate:"required,max=64"`
	CustomerDetails CustomerDetailsInput `json:"customer_details"`
	EventDetails    EventDetailsInput    `json:"event_details"`
	Schedule        ScheduleInput        `json:"schedule"`
	Pricing         PricingInput         `json:"pricing"`
}

type CustomerDetailsInput struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone" validate:"required,max=32,phone"`
	Address string `json:"address,omitempty" validate:"max=300"`
	City    string `json:"city,omitempty" validate:"max=100"`
	State   string `json:"state,omitempty" validate:"max=100"`
}

type EventDetailsInput struct {
	Title               string `json:"title" validate:"required,min=2,max=200"`
	EventType           string `json:"event_type" validate:"required,max=50"`
	Description         string `json:"description,omitempty" validate:"max=2000"`
	ExpectedGuests      int    `json:"expected_guests" validate:"required,min=1,max=100000"`
	SpecialRequirements string `json:"special_requirements,omitempty" validate:"max=2000"`
}

type ScheduleInput struct {
	EventDate     time.Time `json:"event_date" validate:"required"`
	StartTime     string    `json:"start_time" validate:"required,hhmm"`
	EndTime       string    `json:"end_time" validate:"required,hhmm"`
	DurationHours *float64  `json:"duration_hours,omitempty" validate:"omitempty,gt=0,lte=24"`
}

// PricingInput amounts are checked by the pricing calculator, not by struct tags,
// so that numeric failures surface as invalid pricing input.
type PricingInput struct {
	BaseAmount        *int64   `json:"base_amount,omitempty"`
	AdditionalCharges []Charge `json:"additional_charges,omitempty" validate:"omitempty,max=20,dive"`
	Taxes             int64    `json:"taxes"`
	Discount          int64    `json:"discount"`
}

type TransitionRequest struct {
	Status  BookingStatus `json:"status" validate:"required,oneof=pending confirmed cancelled completed rejected"`
	Message string        `json:"message,omitempty" validate:"max=1000"`
}

type PaymentRequest struct {
	Amount        int64  `json:"amount"`
	Method        string `json:"method" validate:"required,max=50"`
	TransactionID string `json:"transaction_id" validate:"required,max=100"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"max=2000"`
}

type MessageRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// BookingFilter narrows a booking listing. Customer and Organizer are set by the
// service from the caller's identity, never taken from the request.
type BookingFilter struct {
	Status    BookingStatus
	Venue     string
	Customer  string
	Organizer string
	Limit     int
	Offset    int64
}
