package service

import (
	"eventhub/pkg/auth"
	"eventhub/pkg/model"

	"github.com/google/uuid"
)

// counterparty is whoever should hear about an action taken by p: the
// organizer when the customer acted, otherwise the customer.
func counterparty(b *model.Booking, p auth.Principal) string {
	if p.ID == b.Customer && p.ID != b.Organizer {
		return model.RecipientOrganizer
	}
	return model.RecipientCustomer
}

func (s *bookingService) notify(b *model.Booking, kind model.EventKind, actor, message string, roles ...string) {
	if s.notifier == nil {
		return
	}

	snapshot := b.Clone()
	events := make([]model.BookingEvent, 0, len(roles))
	for _, role := range roles {
		recipient := b.Customer
		if role == model.RecipientOrganizer {
			recipient = b.Organizer
		}
		events = append(events, model.BookingEvent{
			ID:            uuid.NewString(),
			Kind:          kind,
			Recipient:     recipient,
			RecipientRole: role,
			Actor:         actor,
			Message:       message,
			BookingID:     b.ID,
			Booking:       snapshot,
			OccurredAt:    s.now(),
		})
	}
	s.notifier.Dispatch(events...)
}
