package notifier

import (
	"context"
	"fmt"

	"eventhub/pkg/kafka"
	"eventhub/pkg/logger"
	"eventhub/pkg/model"
)

const eventSource = "bookings"

// KafkaSink publishes events to the notifications topic keyed by booking id,
// so every event of one booking lands on the same partition in order.
type KafkaSink struct {
	publisher kafka.Publisher
}

func NewKafkaSink(publisher kafka.Publisher) *KafkaSink {
	return &KafkaSink{publisher: publisher}
}

func (s *KafkaSink) Send(ctx context.Context, event model.BookingEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(event.BookingID).
		WithValue(event).
		WithEventID(event.ID).
		WithEventType(string(event.Kind)).
		WithSource(eventSource).
		WithTimestamp(event.OccurredAt).
		Build()
	if err != nil {
		return fmt.Errorf("build notification message: %w", err)
	}
	return s.publisher.Publish(ctx, msg)
}

// LogSink writes events to the log. Used when no broker is configured.
type LogSink struct {
	log *logger.Logger
}

func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Send(_ context.Context, event model.BookingEvent) error {
	s.log.Info("Notification",
		"event_id", event.ID,
		"kind", event.Kind,
		"booking_id", event.BookingID,
		"recipient", event.Recipient,
		"recipient_role", event.RecipientRole,
	)
	return nil
}
