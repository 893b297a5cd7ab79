package notifications

import (
	"context"
	"errors"
	"fmt"

	venueserrors "eventhub/internal/venues/errors"
	venues "eventhub/internal/venues/service"
	"eventhub/pkg/kafka"
	"eventhub/pkg/logger"
	"eventhub/pkg/model"
)

var (
	ErrMissingSnapshot = errors.New("event carries no booking snapshot")

	ErrNoRecipient = errors.New("recipient has no email address")
)

// Handler consumes booking events and mails the recipient named by each one.
type Handler struct {
	venues   venues.Directory
	mailer   Mailer
	renderer *Renderer
	log      *logger.Logger
}

func NewHandler(directory venues.Directory, mailer Mailer, log *logger.Logger) *Handler {
	return &Handler{
		venues:   directory,
		mailer:   mailer,
		renderer: NewRenderer(),
		log:      log,
	}
}

// Handle is a kafka.MessageHandler. Bad payloads and unknown recipients are
// permanent; venue lookups and mail delivery are retried.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	var event model.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return err
	}
	if event.Booking == nil {
		return kafka.NewPermanentError("invalid booking event", ErrMissingSnapshot)
	}

	to, name, err := h.recipient(ctx, event)
	if err != nil {
		return err
	}

	mail, err := h.renderer.Render(event, to, name)
	if err != nil {
		return kafka.NewPermanentError("render mail", err)
	}
	if err := h.mailer.Send(ctx, mail); err != nil {
		return kafka.NewTransientError("deliver mail", err)
	}

	h.log.Info("Booking notification sent",
		"event_id", event.ID,
		"kind", event.Kind,
		"booking_id", event.BookingID,
		"recipient_role", event.RecipientRole,
	)
	return nil
}

func (h *Handler) recipient(ctx context.Context, event model.BookingEvent) (string, string, error) {
	b := event.Booking
	if event.RecipientRole != model.RecipientOrganizer {
		if b.CustomerDetails.Email == "" {
			return "", "", kafka.NewPermanentError("resolve customer", ErrNoRecipient)
		}
		return b.CustomerDetails.Email, b.CustomerDetails.Name, nil
	}

	venue, err := h.venues.GetVenue(ctx, b.Venue)
	if err != nil {
		if errors.Is(err, venueserrors.ErrNotFound) || errors.Is(err, venueserrors.ErrInvalidID) {
			return "", "", kafka.NewPermanentError("resolve organizer", err)
		}
		return "", "", kafka.NewTransientError("resolve organizer", err)
	}
	if venue.Contact.Email == "" {
		return "", "", kafka.NewPermanentError("resolve organizer", fmt.Errorf("%w: venue %s", ErrNoRecipient, venue.ID))
	}

	name := venue.Contact.Name
	if name == "" {
		name = "Organizer"
	}
	return venue.Contact.Email, name, nil
}
