package notifications

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"eventhub/pkg/model"
)

var ErrUnknownEvent = errors.New("no template for event")

const brand = "EventHub"

const templates = `
{{define "details"}}
<h3>Booking Details:</h3>
<ul>
  <li><strong>Venue:</strong> {{.Booking.Venue}}</li>
  <li><strong>Event:</strong> {{.Booking.EventDetails.Title}}</li>
  <li><strong>Date:</strong> {{date .Booking.Schedule.EventDate}}</li>
  <li><strong>Time:</strong> {{.Booking.Schedule.StartTime}} - {{.Booking.Schedule.EndTime}}</li>
  <li><strong>Guests:</strong> {{.Booking.EventDetails.ExpectedGuests}}</li>
  <li><strong>Total Amount:</strong> {{inr .Booking.Pricing.TotalAmount}}</li>
</ul>
{{end}}

{{define "booking.created/customer"}}
<h2>Booking Request Submitted Successfully!</h2>
<p>Dear {{.Name}},</p>
<p>Your booking request has been submitted and is waiting for organizer approval.</p>
{{template "details" .}}
<p><strong>Status:</strong> Waiting for Approval</p>
<p>You will receive a confirmation email once the organizer approves your booking.</p>
{{end}}

{{define "booking.created/organizer"}}
<h2>New Booking Request Received!</h2>
<p>Dear {{.Name}},</p>
<p>You have received a new booking request from {{.Booking.CustomerDetails.Name}} ({{.Booking.CustomerDetails.Email}}).</p>
{{template "details" .}}
<p>Please log in to your dashboard to approve or reject this booking.</p>
{{end}}

{{define "status"}}
<h2>Your booking has been {{.Status}}.</h2>
<p>Dear {{.Name}},</p>
<p>The booking for <strong>{{.Booking.EventDetails.Title}}</strong> is now <strong>{{.Status}}</strong>.</p>
{{with .Event.Message}}<p><strong>Message:</strong> {{.}}</p>{{end}}
{{template "details" .}}
{{if eq .Status "confirmed"}}<p>Please proceed with the payment to secure your booking.</p>{{end}}
{{end}}

{{define "payment.recorded"}}
<h2>Payment Update</h2>
<p>Dear {{.Name}},</p>
<p>A payment was recorded against <strong>{{.Booking.EventDetails.Title}}</strong>.</p>
<ul>
  <li><strong>Paid so far:</strong> {{inr .Booking.Pricing.AdvancePaid}}</li>
  <li><strong>Remaining:</strong> {{inr .Booking.Pricing.RemainingAmount}}</li>
  <li><strong>Payment status:</strong> {{.Booking.PaymentStatus}}</li>
</ul>
{{end}}

{{define "refund.processed"}}
<h2>Refund Processed</h2>
<p>Dear {{.Name}},</p>
<p>Your payments for <strong>{{.Booking.EventDetails.Title}}</strong> have been refunded.</p>
{{end}}

{{define "review.attached"}}
<h2>New Review</h2>
<p>Dear {{.Name}},</p>
{{with .Booking.Review}}<p>{{$.Booking.CustomerDetails.Name}} rated <strong>{{$.Booking.EventDetails.Title}}</strong> {{.Rating}}/5.</p>
{{with .Comment}}<blockquote>{{.}}</blockquote>{{end}}{{end}}
{{end}}

{{define "message.posted"}}
<h2>New Message</h2>
<p>Dear {{.Name}},</p>
<p>There is a new message on <strong>{{.Booking.EventDetails.Title}}</strong>:</p>
<blockquote>{{.Event.Message}}</blockquote>
{{end}}
`

type view struct {
	Event   model.BookingEvent
	Booking *model.Booking
	Name    string
	Status  model.BookingStatus
}

// Renderer turns booking events into mail. User-supplied text is HTML escaped.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() *Renderer {
	funcs := template.FuncMap{
		"date": func(t time.Time) string { return t.Format("02 Jan 2006") },
		"inr":  formatRupees,
	}
	return &Renderer{tmpl: template.Must(template.New("mail").Funcs(funcs).Parse(templates))}
}

// Render builds the mail for one event addressed to one person.
func (r *Renderer) Render(event model.BookingEvent, to, name string) (Mail, error) {
	subject, body, ok := route(event)
	if !ok {
		return Mail{}, fmt.Errorf("%w: %s", ErrUnknownEvent, event.Kind)
	}

	var buf bytes.Buffer
	err := r.tmpl.ExecuteTemplate(&buf, body, view{
		Event:   event,
		Booking: event.Booking,
		Name:    name,
		Status:  event.Booking.Status,
	})
	if err != nil {
		return Mail{}, fmt.Errorf("render %s: %w", body, err)
	}
	return Mail{To: to, Subject: subject + " - " + brand, HTML: strings.TrimSpace(buf.String())}, nil
}

func route(event model.BookingEvent) (subject, body string, ok bool) {
	switch event.Kind {
	case model.EventBookingCreated:
		if event.RecipientRole == model.RecipientOrganizer {
			return "New Booking Request", "booking.created/organizer", true
		}
		return "Booking Request Submitted", "booking.created/customer", true
	case model.EventBookingConfirmed, model.EventBookingRejected,
		model.EventBookingCancelled, model.EventBookingCompleted:
		status := strings.TrimPrefix(string(event.Kind), "booking.")
		return "Booking " + strings.ToUpper(status[:1]) + status[1:], "status", true
	case model.EventPaymentRecorded:
		return "Payment Update", string(event.Kind), true
	case model.EventRefundProcessed:
		return "Refund Processed", string(event.Kind), true
	case model.EventReviewAttached:
		return "New Review", string(event.Kind), true
	case model.EventMessagePosted:
		return "New Message", string(event.Kind), true
	}
	return "", "", false
}

// formatRupees groups digits in the Indian style, e.g. 1250000 -> ₹12,50,000.
func formatRupees(amount int64) string {
	sign := ""
	if amount < 0 {
		sign, amount = "-", -amount
	}
	digits := fmt.Sprintf("%d", amount)
	if len(digits) <= 3 {
		return sign + "₹" + digits
	}

	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	groups = append([]string{head}, groups...)
	return sign + "₹" + strings.Join(groups, ",") + "," + tail
}
