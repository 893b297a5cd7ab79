package lifecycle

import (
	"errors"
	"testing"
	"time"

	bookingserrors "eventhub/internal/bookings/errors"
	"eventhub/pkg/auth"
	"eventhub/pkg/model"
)

var (
	customer  = auth.Principal{ID: "cust-1", Role: auth.RoleUser}
	organizer = auth.Principal{ID: "org-1", Role: auth.RoleOrganizer}
	admin     = auth.Principal{ID: "admin-1", Role: auth.RoleAdmin}
	stranger  = auth.Principal{ID: "someone", Role: auth.RoleUser}
	otherOrg  = auth.Principal{ID: "org-2", Role: auth.RoleOrganizer}
)

var allStatuses = []model.BookingStatus{
	model.StatusPending,
	model.StatusConfirmed,
	model.StatusCancelled,
	model.StatusCompleted,
	model.StatusRejected,
}

func newBooking(status model.BookingStatus) *model.Booking {
	return &model.Booking{
		ID:        "b-1",
		Customer:  customer.ID,
		Organizer: organizer.ID,
		Status:    status,
		Pricing:   model.Pricing{BaseAmount: 25000, TotalAmount: 25000},
	}
}

func TestAuthorize_Table(t *testing.T) {
	tests := []struct {
		name   string
		from   model.BookingStatus
		to     model.BookingStatus
		who    auth.Principal
		expect error
	}{
		{"organizer confirms", model.StatusPending, model.StatusConfirmed, organizer, nil},
		{"organizer rejects", model.StatusPending, model.StatusRejected, organizer, nil},
		{"customer cancels pending", model.StatusPending, model.StatusCancelled, customer, nil},
		{"organizer cancels pending", model.StatusPending, model.StatusCancelled, organizer, nil},
		{"customer cancels confirmed", model.StatusConfirmed, model.StatusCancelled, customer, nil},
		{"admin completes", model.StatusConfirmed, model.StatusCompleted, admin, nil},

		{"customer cannot confirm", model.StatusPending, model.StatusConfirmed, customer, bookingserrors.ErrForbidden},
		{"other organizer cannot confirm", model.StatusPending, model.StatusConfirmed, otherOrg, bookingserrors.ErrForbidden},
		{"admin cannot confirm", model.StatusPending, model.StatusConfirmed, admin, bookingserrors.ErrForbidden},
		{"stranger cannot cancel", model.StatusConfirmed, model.StatusCancelled, stranger, bookingserrors.ErrForbidden},
		{"organizer cannot complete", model.StatusConfirmed, model.StatusCompleted, organizer, bookingserrors.ErrForbidden},

		{"confirm twice", model.StatusConfirmed, model.StatusConfirmed, organizer, bookingserrors.ErrInvalidTransition},
		{"skip to completed", model.StatusPending, model.StatusCompleted, admin, bookingserrors.ErrInvalidTransition},
		{"back to pending", model.StatusConfirmed, model.StatusPending, organizer, bookingserrors.ErrInvalidTransition},
		{"reject confirmed", model.StatusConfirmed, model.StatusRejected, organizer, bookingserrors.ErrInvalidTransition},
		{"unknown edge before authorization", model.StatusPending, model.StatusCompleted, stranger, bookingserrors.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(newBooking(tt.from), tt.who, tt.to)
			if tt.expect == nil {
				if err != nil {
					t.Fatalf("Authorize() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.expect) {
				t.Errorf("Authorize() error = %v, want %v", err, tt.expect)
			}
		})
	}
}

func TestAuthorize_TerminalRejectsEverything(t *testing.T) {
	requesters := []auth.Principal{customer, organizer, admin, stranger}

	for _, from := range []model.BookingStatus{model.StatusCancelled, model.StatusCompleted, model.StatusRejected} {
		for _, to := range allStatuses {
			for _, who := range requesters {
				err := Authorize(newBooking(from), who, to)
				if !errors.Is(err, bookingserrors.ErrTerminalState) {
					t.Errorf("%s -> %s by %s: error = %v, want ErrTerminalState", from, to, who.ID, err)
				}
			}
		}
	}
}

func TestCanTransition_NeverLeavesTerminal(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			if from.IsTerminal() && CanTransition(from, to) {
				t.Errorf("terminal %s must not reach %s", from, to)
			}
		}
	}
}

func TestApply_StatusUpdateEntry(t *testing.T) {
	b := newBooking(model.StatusPending)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	Apply(b, organizer, model.StatusConfirmed, "", now)

	if b.Status != model.StatusConfirmed {
		t.Fatalf("status = %s, want confirmed", b.Status)
	}
	if len(b.Communication) != 1 {
		t.Fatalf("communication length = %d, want 1", len(b.Communication))
	}
	entry := b.Communication[0]
	if entry.Kind != model.KindStatusUpdate || entry.From != organizer.ID || entry.Message != "Booking confirmed" {
		t.Errorf("unexpected entry %+v", entry)
	}
	if entry.ID == "" || !entry.Timestamp.Equal(now) {
		t.Errorf("entry missing id or timestamp: %+v", entry)
	}
	if b.Cancellation != nil {
		t.Errorf("cancellation should stay empty for confirmations")
	}
}

func TestApply_Cancellation(t *testing.T) {
	tests := []struct {
		name         string
		advancePaid  int64
		refundStatus string
	}{
		{"refund owed", 25000, model.RefundPending},
		{"nothing paid", 0, model.RefundNotRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBooking(model.StatusConfirmed)
			b.Pricing.AdvancePaid = tt.advancePaid
			now := time.Now().UTC()

			Apply(b, customer, model.StatusCancelled, "change of plans", now)

			c := b.Cancellation
			if c == nil {
				t.Fatal("cancellation not populated")
			}
			if c.Reason != "change of plans" || c.CancelledBy != customer.ID || !c.CancelledAt.Equal(now) {
				t.Errorf("unexpected cancellation %+v", c)
			}
			if c.RefundAmount != tt.advancePaid || c.RefundStatus != tt.refundStatus {
				t.Errorf("refund = %d/%s, want %d/%s", c.RefundAmount, c.RefundStatus, tt.advancePaid, tt.refundStatus)
			}
		})
	}
}
